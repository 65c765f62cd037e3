package espn

import (
	"testing"
)

const injuriesFixture = `<!DOCTYPE html><html><body>
<div class="ResponsiveTable Table__league-injuries">
  <div class="Table__Title">Boston Celtics</div>
  <div class="Table__Scroller">
    <table class="Table">
      <thead><tr>
        <th>NAME</th><th>POS</th><th>EST. RETURN DATE</th><th>STATUS</th><th>COMMENT</th>
      </tr></thead>
      <tbody>
        <tr>
          <td><a href="/nba/player/_/id/1">Jayson Tatum</a></td>
          <td>SF</td><td>Jun 1</td><td><span class="TextStatus--red">Out</span></td>
          <td>Recovering from surgery.</td>
        </tr>
        <tr>
          <td>Al Horford</td><td>C</td><td></td><td>Day-To-Day</td><td>Rest.</td>
        </tr>
      </tbody>
    </table>
  </div>
</div>
<div class="ResponsiveTable Table__league-injuries">
  <div class="Table__Title">LA Clippers</div>
  <div class="Table__Scroller">
    <table class="Table">
      <thead><tr>
        <th>NAME</th><th>POS</th><th>EST. RETURN DATE</th><th>STATUS</th><th>COMMENT</th>
      </tr></thead>
      <tbody>
        <tr><td>Kawhi Leonard</td><td>SF</td><td>Mar 20</td><td>Out</td><td>Knee.</td></tr>
      </tbody>
    </table>
  </div>
</div>
</body></html>`

func TestParseInjuries(t *testing.T) {
	doc, err := ParseHTML(injuriesFixture)
	if err != nil {
		t.Fatalf("ParseHTML returned error: %v", err)
	}

	observations := ParseInjuries(doc)
	if len(observations) != 3 {
		t.Fatalf("parsed %d observations, want 3", len(observations))
	}

	first := observations[0]
	if first.TeamLabel != "Boston Celtics" {
		t.Errorf("TeamLabel = %q, want %q", first.TeamLabel, "Boston Celtics")
	}
	if first.Player != "Jayson Tatum" {
		t.Errorf("Player = %q, want %q", first.Player, "Jayson Tatum")
	}
	if first.Status != "Out" {
		t.Errorf("Status = %q, want %q", first.Status, "Out")
	}
	if first.EstReturn != "Jun 1" {
		t.Errorf("EstReturn = %q, want %q", first.EstReturn, "Jun 1")
	}

	// Blank cells stay blank here; the reconciliation engine owns the
	// Unknown substitution.
	if observations[1].EstReturn != "" {
		t.Errorf("blank EstReturn = %q, want empty", observations[1].EstReturn)
	}

	// Labels are raw: the LA Clippers quirk is the identity layer's problem.
	if observations[2].TeamLabel != "LA Clippers" {
		t.Errorf("TeamLabel = %q, want raw %q", observations[2].TeamLabel, "LA Clippers")
	}
}

func TestParseInjuriesHeaderlessTable(t *testing.T) {
	const fixture = `<html><body>
<div class="ResponsiveTable">
  <div class="Table__Title">Phoenix Suns</div>
  <table>
    <tbody>
      <tr><td>Kevin Durant</td><td>PF</td><td>Apr 2</td><td>Day-To-Day</td><td></td></tr>
    </tbody>
  </table>
</div>
</body></html>`

	doc, err := ParseHTML(fixture)
	if err != nil {
		t.Fatalf("ParseHTML returned error: %v", err)
	}

	observations := ParseInjuries(doc)
	if len(observations) != 1 {
		t.Fatalf("parsed %d observations, want 1", len(observations))
	}

	obs := observations[0]
	if obs.Player != "Kevin Durant" || obs.EstReturn != "Apr 2" || obs.Status != "Day-To-Day" {
		t.Errorf("fallback columns parsed %+v", obs)
	}
}

func TestParseInjuriesSkipsRaggedSections(t *testing.T) {
	const fixture = `<html><body>
<div class="ResponsiveTable">
  <div class="Table__Title">Utah Jazz</div>
</div>
<div class="ResponsiveTable">
  <table><tbody><tr><td>No Title Player</td></tr></tbody></table>
</div>
</body></html>`

	doc, err := ParseHTML(fixture)
	if err != nil {
		t.Fatalf("ParseHTML returned error: %v", err)
	}

	if observations := ParseInjuries(doc); len(observations) != 0 {
		t.Errorf("parsed %d observations from ragged sections, want 0", len(observations))
	}
}

func TestHasInjuryTables(t *testing.T) {
	if !hasInjuryTables(injuriesFixture) {
		t.Error("hasInjuryTables(fixture) = false, want true")
	}
	if hasInjuryTables("<html><body>Access Denied</body></html>") {
		t.Error("hasInjuryTables(block page) = true, want false")
	}
}
