package identity

import "strings"

// labelRewrite is one known source-label quirk and its canonical form.
type labelRewrite struct {
	from string
	to   string
}

// labelRewrites fixes the quirks scraped team labels show up with. Rewrites
// apply in order on the trimmed label; extending this table is the only
// change needed for a new quirk.
var labelRewrites = []labelRewrite{
	{"LA Clippers", "Los Angeles Clippers"},
	{"LA Lakers", "Los Angeles Lakers"},
	{"Phoenix Suns Suns", "Phoenix Suns"},
}

// NormalizeLabel trims a scraped team label and applies the rewrite table.
func NormalizeLabel(raw string) string {
	label := strings.TrimSpace(raw)
	for _, rw := range labelRewrites {
		label = strings.ReplaceAll(label, rw.from, rw.to)
	}
	return label
}
