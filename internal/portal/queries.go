// internal/portal/queries.go
//
// Every DOM dependency the scraper has on the portal's layout lives in this
// file: the JavaScript evaluated in the page and the XPath used for
// exact-text link matching. When the portal's markup drifts, this is the
// file to fix.
package portal

import "strings"

// collectVariablesJS lists the data rows of the variables table on a dataset
// page. The table is identified by its "Variable Name" header text; header
// rows and rows without a variable link are skipped. Cell contents are
// returned as innerHTML so <br>-aware flattening can happen in Go.
const collectVariablesJS = `
(() => {
	const tables = Array.from(document.querySelectorAll('table'));
	const table = tables.find(t => (t.textContent || '').includes('Variable Name'));
	if (!table) {
		return JSON.stringify(null);
	}
	const rows = [];
	for (const tr of table.querySelectorAll('tbody tr')) {
		if (tr.querySelector('th')) continue;
		const link = tr.querySelector('td a');
		if (!link) continue;
		const cells = tr.querySelectorAll('td');
		rows.push({
			name: link.innerHTML,
			description: cells.length > 1 ? cells[1].innerHTML : '',
			type: cells.length > 2 ? cells[2].innerHTML : '',
		});
	}
	return JSON.stringify(rows);
})()
`

// detailRowsJS captures the two-cell label/value rows of a variable's detail
// view. Labels are plain text; values keep their innerHTML for flattening.
const detailRowsJS = `
(() => {
	const out = [];
	for (const tr of document.querySelectorAll('table tr')) {
		const cells = tr.querySelectorAll('td');
		if (cells.length < 2) continue;
		out.push({
			label: (cells[0].textContent || '').trim(),
			value: cells[1].innerHTML,
		});
	}
	return JSON.stringify(out);
})()
`

// expandMoreJS clicks every visible "more" expander on the detail view and
// returns how many were clicked. The portal truncates long Value and Links
// fields behind these.
const expandMoreJS = `
(() => {
	const visible = (el) => !!(el.offsetWidth || el.offsetHeight || el.getClientRects().length);
	let clicked = 0;
	for (const el of document.querySelectorAll('a, button')) {
		if (!visible(el)) continue;
		if (!(el.textContent || '').trim().toLowerCase().includes('more')) continue;
		el.click();
		clicked++;
	}
	for (const el of document.querySelectorAll('input')) {
		if (!visible(el)) continue;
		if (!(el.value || '').toLowerCase().includes('more')) continue;
		el.click();
		clicked++;
	}
	return clicked;
})()
`

// exactLinkXPath builds an XPath matching an anchor whose normalized text
// equals the given string. Library, dataset and variable links are all
// matched exactly; substring matches would be ambiguous on listing pages.
func exactLinkXPath(text string) string {
	return "//a[normalize-space(.)=" + xpathLiteral(text) + "]"
}

// xpathLiteral quotes an arbitrary string for embedding in an XPath
// expression. XPath 1.0 has no escape syntax, so strings containing both
// quote characters are assembled with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	var b strings.Builder
	b.WriteString("concat(")
	for i, part := range strings.Split(s, "'") {
		if i > 0 {
			b.WriteString(`, "'", `)
		}
		b.WriteString("'" + part + "'")
	}
	b.WriteString(")")
	return b.String()
}
