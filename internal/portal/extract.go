// internal/portal/extract.go
package portal

import (
	"strings"

	"github.com/icesdict/dictscraper/internal/schema"
)

// listingRow is the wire shape produced by collectVariablesJS.
type listingRow struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// labelValue is the wire shape produced by detailRowsJS.
type labelValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// summarize flattens a listing row's HTML cells into a VariableSummary.
func summarize(row listingRow) schema.VariableSummary {
	return schema.VariableSummary{
		Name:        FlattenHTML(row.Name),
		Description: FlattenHTML(row.Description),
		Type:        FlattenHTML(row.Type),
	}
}

// mapDetailRows folds the label/value rows of a detail view into a
// VariableDetails. Labels are matched by containment and the first match in
// the chain wins, mirroring how the portal titles its rows ("Label",
// "Type Length", "Available In", "Format", "Value", "Links"). Unrecognized
// rows are ignored; rows the page lacks leave their field empty.
func mapDetailRows(rows []labelValue) schema.VariableDetails {
	var d schema.VariableDetails
	for _, row := range rows {
		value := FlattenHTML(row.Value)
		switch {
		case strings.Contains(row.Label, "Label"):
			d.Label = value
		case strings.Contains(row.Label, "Type Length"):
			d.TypeLength = value
		case strings.Contains(row.Label, "Available In"):
			d.AvailableIn = value
		case strings.Contains(row.Label, "Format"):
			d.Format = value
		case strings.Contains(row.Label, "Value"):
			d.Value = value
		case strings.Contains(row.Label, "Links"):
			d.Links = value
		}
	}
	return d
}
