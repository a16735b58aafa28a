package models

// Apartment is a rental listing. Rents are stored as text and are only
// interpreted as numbers when listings are ordered.
type Apartment struct {
	ID            int64  `db:"id"`
	Title         string `db:"title"`
	URL           string `db:"url"`
	Address       string `db:"address"`
	Neighborhood  string `db:"neighborhood"`
	WarmRent      string `db:"warm_rent"`
	WarmRentNotes string `db:"warm_rent_notes"`
	ColdRent      string `db:"cold_rent"`
}

// Value returns the text stored under the given column name, or "" for
// unknown columns.
func (a Apartment) Value(column string) string {
	switch column {
	case "title":
		return a.Title
	case "url":
		return a.URL
	case "address":
		return a.Address
	case "neighborhood":
		return a.Neighborhood
	case "warm_rent":
		return a.WarmRent
	case "warm_rent_notes":
		return a.WarmRentNotes
	case "cold_rent":
		return a.ColdRent
	}
	return ""
}
