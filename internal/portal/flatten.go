// internal/portal/flatten.go
package portal

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// brMarker is substituted for <br> elements before the fragment is reduced
// to text, so line breaks the portal renders survive while literal newlines
// in the markup do not. The marker never appears in portal content.
const brMarker = "__BR_TAG__"

var (
	newlineRun = regexp.MustCompile(`[\r\n]+`)
	tagPattern = regexp.MustCompile(`<[^>]+>`)
)

// FlattenHTML reduces an HTML fragment to plain text. <br> tags become
// newlines, every other tag is dropped, literal newlines collapse to a
// single space, and each resulting line is trimmed with empty lines removed.
// The portal uses <br> to separate code/value pairs inside a single cell;
// flattening this way keeps them as distinct lines in the CSV field.
func FlattenHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		// Degraded path: strip tags textually and collapse whitespace.
		text := tagPattern.ReplaceAllString(fragment, "")
		return strings.TrimSpace(newlineRun.ReplaceAllString(text, " "))
	}

	doc.Find("br").ReplaceWithHtml(brMarker)

	text := doc.Text()
	text = newlineRun.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, brMarker, "\n")

	lines := make([]string, 0, strings.Count(text, "\n")+1)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
