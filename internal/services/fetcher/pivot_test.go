package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/traceline/internal/models"
)

func testCatalog() []models.Action {
	return []models.Action{
		{ID: 1, Name: "Torque", IsRanged: true},
		{ID: 2, Name: "Leak Test", IsRanged: false},
	}
}

func testRecord(id int64, processID *int64) models.RawRecord {
	return models.RawRecord{
		ID:        id,
		CreatedAt: "2024-03-05T10:00:00",
		ProcessID: processID,
		Number:    "A-100",
		Status:    "132",
		HousingNo: "H-1",
		PcbNo:     "P-1",
		ArmNo:     "R-1",
	}
}

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"132", "OK"},
		{"13", "OK"},
		{"142", "NOK"},
		{"31", "NOK"}, // only the second character counts
		{"3", "NOK"},
		{"", "NOK"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, deriveStatus(tt.code), "code %q", tt.code)
	}
}

func TestFlatten_RangedAction(t *testing.T) {
	processID := int64(11)
	measurements := []models.Measurement{
		{Action: "Torque", Min: 2.0, Max: 8.0, Value: "5"},
	}

	row := flatten(testRecord(1, &processID), measurements, testCatalog())

	assert.Equal(t, []string{
		"id", "created_at", "number", "status", "housing no", "pcb no", "arm no",
		"Torque .min", "Torque", "Torque .max",
	}, row.Columns())

	min, _ := row.Get("Torque .min")
	value, _ := row.Get("Torque")
	max, _ := row.Get("Torque .max")
	assert.Equal(t, 2.0, min)
	assert.Equal(t, "5", value)
	assert.Equal(t, 8.0, max)
}

func TestFlatten_ScalarAction(t *testing.T) {
	processID := int64(11)
	measurements := []models.Measurement{
		{Action: "Leak Test", Min: 1.0, Max: 2.0, Value: "OK"},
	}

	row := flatten(testRecord(1, &processID), measurements, testCatalog())

	value, ok := row.Get("Leak Test")
	require.True(t, ok)
	assert.Equal(t, "OK", value)

	// Scalar actions never emit bounds columns even when the source
	// carries values for them
	assert.False(t, row.Has("Leak Test .min"))
	assert.False(t, row.Has("Leak Test .max"))
}

func TestFlatten_NoMeasurements(t *testing.T) {
	row := flatten(testRecord(7, nil), nil, testCatalog())

	assert.Equal(t, []string{"id", "created_at", "number", "status", "housing no", "pcb no", "arm no"}, row.Columns())
	assert.False(t, row.Has("Torque"), "pivoted keys must be absent, not blank")
}

func TestFlatten_ProcessIDNeverEmitted(t *testing.T) {
	processID := int64(11)
	row := flatten(testRecord(1, &processID), nil, testCatalog())

	assert.False(t, row.Has("process_id"))
}

func TestFlatten_DuplicateMeasurementLastWriteWins(t *testing.T) {
	processID := int64(11)
	measurements := []models.Measurement{
		{Action: "Torque", Min: 2.0, Max: 8.0, Value: "5"},
		{Action: "Torque", Min: 3.0, Max: 9.0, Value: "6"},
	}

	row := flatten(testRecord(1, &processID), measurements, testCatalog())

	value, _ := row.Get("Torque")
	min, _ := row.Get("Torque .min")
	max, _ := row.Get("Torque .max")
	assert.Equal(t, "6", value)
	assert.Equal(t, 3.0, min)
	assert.Equal(t, 9.0, max)

	// Overwrite must not duplicate columns
	assert.Equal(t, 10, row.Len())
}

func TestFlatten_ColumnOrderFollowsCatalogNotMeasurements(t *testing.T) {
	processID := int64(11)
	// Measurements arrive in the reverse of catalog order
	measurements := []models.Measurement{
		{Action: "Leak Test", Value: "OK"},
		{Action: "Torque", Min: 2.0, Max: 8.0, Value: "5"},
	}

	row := flatten(testRecord(1, &processID), measurements, testCatalog())

	assert.Equal(t, []string{
		"id", "created_at", "number", "status", "housing no", "pcb no", "arm no",
		"Torque .min", "Torque", "Torque .max", "Leak Test",
	}, row.Columns())
}

func TestFlatten_UnknownActionIgnored(t *testing.T) {
	processID := int64(11)
	measurements := []models.Measurement{
		{Action: "Retired Check", Value: "1"},
	}

	row := flatten(testRecord(1, &processID), measurements, testCatalog())
	assert.False(t, row.Has("Retired Check"))
}
