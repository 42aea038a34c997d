// internal/schema/record.go
package schema

// VariableSummary holds the fields visible in the dataset listing table,
// one row per variable.
type VariableSummary struct {
	Name        string
	Description string
	Type        string
}

// VariableDetails holds the fields extracted from a variable's detail view.
// Fields the portal does not render for a given variable stay empty.
type VariableDetails struct {
	Label       string
	TypeLength  string
	AvailableIn string
	Format      string
	Value       string
	Links       string
}

// VariableRecord is the unit of output: one fully scraped variable, combining
// the listing row with the detail view. Records are created once, appended to
// the output table in traversal order and never mutated afterwards.
type VariableRecord struct {
	Name        string
	Description string
	Type        string
	Details     VariableDetails
}

// Columns returns the CSV header in output order. The order is part of the
// tool's contract; downstream consumers key on these names.
func Columns() []string {
	return []string{
		"variable_name",
		"main_description",
		"main_type",
		"label",
		"type_length",
		"available_in",
		"format",
		"value",
		"links",
	}
}

// Row returns the record's fields aligned with Columns.
func (r VariableRecord) Row() []string {
	return []string{
		r.Name,
		r.Description,
		r.Type,
		r.Details.Label,
		r.Details.TypeLength,
		r.Details.AvailableIn,
		r.Details.Format,
		r.Details.Value,
		r.Details.Links,
	}
}
