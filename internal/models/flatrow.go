package models

// FlatRow is the pivoted output unit: a column-name to value mapping
// that remembers first-insertion order. Order matters because a CSV
// header derives from it, and a column absent from a row is a gap
// (blank cell), not an empty value.
type FlatRow struct {
	columns []string
	values  map[string]interface{}
}

// NewFlatRow creates an empty flat row.
func NewFlatRow() *FlatRow {
	return &FlatRow{
		values: make(map[string]interface{}),
	}
}

// Set assigns a value to a column. The first assignment fixes the
// column's position; a later assignment to the same column overwrites
// the value in place (last write wins).
func (r *FlatRow) Set(column string, value interface{}) {
	if _, ok := r.values[column]; !ok {
		r.columns = append(r.columns, column)
	}
	r.values[column] = value
}

// Get returns the value for a column and whether the column is present.
func (r *FlatRow) Get(column string) (interface{}, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Has reports whether the row has a value for the column.
func (r *FlatRow) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Columns returns the column names in insertion order.
func (r *FlatRow) Columns() []string {
	cols := make([]string, len(r.columns))
	copy(cols, r.columns)
	return cols
}

// Len returns the number of columns present in the row.
func (r *FlatRow) Len() int {
	return len(r.columns)
}
