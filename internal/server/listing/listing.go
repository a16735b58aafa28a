// Package listing shapes records into a table view for the HTML layer.
package listing

// Column is one table column: the record field it reads and its header.
type Column struct {
	Name  string
	Label string
}

// Schema is the ordered set of columns of a table.
type Schema []Column

// ApartmentColumns is the fixed layout of the apartments table.
var ApartmentColumns = Schema{
	{Name: "title", Label: "Title"},
	{Name: "url", Label: "URL"},
	{Name: "address", Label: "Address"},
	{Name: "neighborhood", Label: "Neighborhood"},
	{Name: "warm_rent", Label: "Warm Rent"},
	{Name: "warm_rent_notes", Label: "Notes"},
	{Name: "cold_rent", Label: "Cold Rent"},
}

// Record is anything that can report a text value per column name.
type Record interface {
	Value(column string) string
}

// Cell is a single rendered value together with the column it belongs to.
type Cell struct {
	Column string
	Value  string
}

// Row holds the cells of one record in schema order.
type Row []Cell

// TableView is the render-ready form of a list of records.
type TableView struct {
	Columns Schema
	Rows    []Row
	Classes []string
}

// Format builds a TableView with one row per record, keeping record order.
// classes are passed through to the view untouched.
func Format[R Record](schema Schema, records []R, classes ...string) TableView {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row := make(Row, 0, len(schema))
		for _, col := range schema {
			row = append(row, Cell{Column: col.Name, Value: rec.Value(col.Name)})
		}
		rows = append(rows, row)
	}

	return TableView{
		Columns: schema,
		Rows:    rows,
		Classes: classes,
	}
}

// SortURL is the header click target for column. Rows are always shown in
// the order they were formatted, so there is no sort link.
func (t TableView) SortURL(column string, reverse bool) string {
	return ""
}
