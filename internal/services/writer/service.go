package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/traceline/internal/common"
	"github.com/ternarybob/traceline/internal/models"
)

// Service appends flat rows to CSV files partitioned by the calendar
// month of their created_at value. Files are created lazily with a
// header on first write and never deleted or rotated here. A file's
// header is the union of all columns ever written to it: when a batch
// introduces a column the file has not seen, the file is rewritten
// once with the widened header before the new rows are appended.
type Service struct {
	config *common.CSVConfig
	logger arbor.ILogger
}

// NewService creates a writer service and ensures the output
// directory exists.
func NewService(config *common.CSVConfig, logger arbor.ILogger) (*Service, error) {
	if err := os.MkdirAll(config.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create CSV output directory: %w", err)
	}

	return &Service{
		config: config,
		logger: logger,
	}, nil
}

// Append groups rows by month token, preserving each group's relative
// row order, and appends every group to its partition file. Each
// group is one open/append/close cycle; no file handles are retained
// across calls. There is no rollback of partially written rows on
// failure; the caller must not advance the watermark past a failed
// batch.
func (s *Service) Append(rows []*models.FlatRow) error {
	var tokens []string
	groups := make(map[string][]*models.FlatRow)

	for _, row := range rows {
		created, _ := row.Get("created_at")
		token, err := monthToken(created)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrWriteFailed, err)
		}
		if _, ok := groups[token]; !ok {
			tokens = append(tokens, token)
		}
		groups[token] = append(groups[token], row)
	}

	for _, token := range tokens {
		path := filepath.Join(s.config.Dir, s.config.Prefix+token+".csv")
		if err := s.appendGroup(path, groups[token]); err != nil {
			return fmt.Errorf("%w: %s: %v", models.ErrWriteFailed, path, err)
		}
		s.logger.Debug().
			Str("file", filepath.Base(path)).
			Int("rows", len(groups[token])).
			Msg("Rows appended to partition file")
	}

	return nil
}

// appendGroup writes one month group to its partition file.
func (s *Service) appendGroup(path string, rows []*models.FlatRow) error {
	batchColumns := columnUnion(rows)

	header, exists, err := readHeader(path)
	if err != nil {
		return err
	}

	if !exists {
		return writeNewFile(path, batchColumns, rows)
	}

	if missing := missingColumns(header, batchColumns); len(missing) > 0 {
		header = append(header, missing...)
		if err := widenFile(path, header); err != nil {
			return err
		}
	}

	return appendRows(path, header, rows)
}

// columnUnion collects the union of the rows' column sets, keeping
// first-seen order across the group.
func columnUnion(rows []*models.FlatRow) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, row := range rows {
		for _, col := range row.Columns() {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	return columns
}

// missingColumns returns the batch columns absent from the header,
// in batch order.
func missingColumns(header, batch []string) []string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}
	var missing []string
	for _, col := range batch {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// readHeader reads the header row of an existing partition file.
func readHeader(path string) ([]string, bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open partition file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read partition header: %w", err)
	}

	return header, true, nil
}

// writeNewFile creates a partition file with a header and the first
// rows.
func writeNewFile(path string, header []string, rows []*models.FlatRow) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create partition file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write partition header: %w", err)
	}
	if err := writeRecords(w, header, rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// widenFile rewrites an existing partition file with a widened
// header, padding previously written rows with blanks for the new
// columns. The rewrite goes to a temp file renamed into place so a
// failure never loses already-exported rows.
func widenFile(path string, header []string) error {
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open partition file for widening: %w", err)
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read partition file for widening: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create widening temp file: %w", err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write widened header: %w", err)
	}
	for i, record := range records {
		if i == 0 {
			continue // old header
		}
		padded := make([]string, len(header))
		copy(padded, record)
		if err := w.Write(padded); err != nil {
			tmp.Close()
			os.Remove(tmpPath)
			return fmt.Errorf("failed to rewrite partition row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to flush widened file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close widening temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace partition file: %w", err)
	}

	return nil
}

// appendRows appends rows to an existing partition file using its
// current header.
func appendRows(path string, header []string, rows []*models.FlatRow) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open partition file for append: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := writeRecords(w, header, rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// writeRecords emits one CSV record per row, a value per header
// column, blank where the row lacks the key.
func writeRecords(w *csv.Writer, header []string, rows []*models.FlatRow) error {
	for _, row := range rows {
		record := make([]string, len(header))
		for i, col := range header {
			if value, ok := row.Get(col); ok {
				record[i] = formatValue(value)
			}
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write partition row: %w", err)
		}
	}
	return nil
}
