package source

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ternarybob/traceline/internal/models"
)

// The pipeline depends on exactly three query shapes: the action
// catalog, records past the watermark, and measurements for one
// process. Column names here are the contract with the source schema.

// LoadActions returns the action catalog ordered by its sequence
// number. The returned order fixes the pivot's column ordering.
func (s *DB) LoadActions(ctx context.Context) ([]models.Action, error) {
	query := `SELECT id, name, minmax FROM actions ORDER BY action_order`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []models.Action
	for rows.Next() {
		var action models.Action
		var minmax int

		if err := rows.Scan(&action.ID, &action.Name, &minmax); err != nil {
			return nil, fmt.Errorf("failed to scan action row: %w", err)
		}
		action.IsRanged = minmax == 1
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read action rows: %w", err)
	}

	return actions, nil
}

// RecordsAfter returns records with id greater than watermark,
// ascending by id, capped at limit.
func (s *DB) RecordsAfter(ctx context.Context, watermark int64, limit int) ([]models.RawRecord, error) {
	query := `
		SELECT id, created_at, process_id, number, status, housing, pcb, arm
		FROM final_products
		WHERE id > ?
		ORDER BY id ASC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, watermark, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records []models.RawRecord
	for rows.Next() {
		var record models.RawRecord
		var createdAt interface{}
		var processID sql.NullInt64
		var number, status, housing, pcb, arm sql.NullString

		if err := rows.Scan(&record.ID, &createdAt, &processID, &number, &status, &housing, &pcb, &arm); err != nil {
			return nil, fmt.Errorf("failed to scan record row: %w", err)
		}

		record.CreatedAt = createdAt
		if processID.Valid {
			id := processID.Int64
			record.ProcessID = &id
		}
		record.Number = number.String
		record.Status = status.String
		record.HousingNo = housing.String
		record.PcbNo = pcb.String
		record.ArmNo = arm.String

		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read record rows: %w", err)
	}

	return records, nil
}

// MeasurementsByProcess returns all measurements for a process id in
// source return order.
func (s *DB) MeasurementsByProcess(ctx context.Context, processID int64) ([]models.Measurement, error) {
	query := `SELECT action, min, max, value FROM final_results WHERE process_id = ?`

	rows, err := s.db.QueryContext(ctx, query, processID)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var measurements []models.Measurement
	for rows.Next() {
		var m models.Measurement
		if err := rows.Scan(&m.Action, &m.Min, &m.Max, &m.Value); err != nil {
			return nil, fmt.Errorf("failed to scan measurement row: %w", err)
		}
		measurements = append(measurements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read measurement rows: %w", err)
	}

	return measurements, nil
}
