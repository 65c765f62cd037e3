package espn

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/fortuna/nyx/internal/reconciliation"
)

// Column positions ESPN has used for years, the fallback when a table ships
// without a header row.
const (
	defaultNameCol   = 0
	defaultEstCol    = 2
	defaultStatusCol = 3
)

// ParseInjuries extracts one observation per player row from the injuries
// page. Each team section is a Table__Title plus the table next to it. Team
// labels are kept raw; resolving them is the identity layer's job.
func ParseInjuries(doc *goquery.Document) []reconciliation.Observation {
	var observations []reconciliation.Observation

	doc.Find("div.ResponsiveTable").Each(func(_ int, section *goquery.Selection) {
		team := strings.TrimSpace(section.Find("div.Table__Title").First().Text())
		table := section.Find("table").First()
		if team == "" || table.Length() == 0 {
			return
		}

		idxName, idxEst, idxStatus := columnIndexes(table)

		table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			player := cellText(cells, idxName)
			if player == "" || strings.EqualFold(player, "NAME") {
				return
			}

			observations = append(observations, reconciliation.Observation{
				TeamLabel: team,
				Player:    player,
				Status:    cellText(cells, idxStatus),
				EstReturn: cellText(cells, idxEst),
			})
		})
	})

	return observations
}

// columnIndexes locates the NAME, EST RETURN and STATUS columns by header text
func columnIndexes(table *goquery.Selection) (name, est, status int) {
	name, est, status = defaultNameCol, defaultEstCol, defaultStatusCol

	table.Find("thead th").Each(func(i int, th *goquery.Selection) {
		header := strings.ToUpper(strings.TrimSpace(th.Text()))
		switch {
		case header == "NAME":
			name = i
		case strings.Contains(header, "EST"):
			est = i
		case strings.Contains(header, "STATUS"):
			status = i
		}
	})

	return name, est, status
}

func cellText(cells *goquery.Selection, idx int) string {
	return strings.TrimSpace(cells.Eq(idx).Text())
}
