package fetcher

import (
	"github.com/ternarybob/traceline/internal/models"
)

// Output column names for the record's base fields. The measurement
// columns that follow take their names from the catalog.
const (
	colID        = "id"
	colCreatedAt = "created_at"
	colNumber    = "number"
	colStatus    = "status"
	colHousingNo = "housing no"
	colPcbNo     = "pcb no"
	colArmNo     = "arm no"
)

// flatten builds the pivoted output row for one record. The base
// fields come first; process_id is never emitted. Measurement columns
// follow in catalog order: for each catalog action, every matching
// measurement is assigned in its returned order, so a duplicate
// measurement for the same action overwrites the earlier one (last
// write wins). A record with no measurements still produces a row
// with only its base fields.
func flatten(record models.RawRecord, measurements []models.Measurement, catalog []models.Action) *models.FlatRow {
	row := models.NewFlatRow()
	row.Set(colID, record.ID)
	row.Set(colCreatedAt, record.CreatedAt)
	row.Set(colNumber, record.Number)
	row.Set(colStatus, deriveStatus(record.Status))
	row.Set(colHousingNo, record.HousingNo)
	row.Set(colPcbNo, record.PcbNo)
	row.Set(colArmNo, record.ArmNo)

	for _, action := range catalog {
		for _, m := range measurements {
			if m.Action != action.Name {
				continue
			}
			if action.IsRanged {
				row.Set(m.Action+" .min", m.Min)
				row.Set(m.Action, m.Value)
				row.Set(m.Action+" .max", m.Max)
			} else {
				row.Set(m.Action, m.Value)
			}
		}
	}

	return row
}

// deriveStatus decodes the source system's encoded status code:
// "OK" when the second character of the code's string form is '3',
// otherwise "NOK". The position semantics are a pass-through of the
// source encoding and must not be changed here.
func deriveStatus(code string) string {
	if len(code) >= 2 && code[1] == '3' {
		return "OK"
	}
	return "NOK"
}
