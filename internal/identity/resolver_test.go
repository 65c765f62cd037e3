package identity

import (
	"testing"

	"github.com/fortuna/nyx/internal/store"
)

func testTeams() []*store.Team {
	return []*store.Team{
		{ID: 1, Tricode: "BOS", Name: "Celtics", City: "Boston", ESPNName: "Boston Celtics"},
		{ID: 2, Tricode: "LAC", Name: "Clippers", City: "Los Angeles", ESPNName: "Los Angeles Clippers"},
		{ID: 3, Tricode: "PHX", Name: "Suns", City: "Phoenix", ESPNName: "Phoenix Suns"},
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LA Clippers", "Los Angeles Clippers"},
		{"LA Lakers", "Los Angeles Lakers"},
		{"Phoenix Suns Suns", "Phoenix Suns"},
		{"  Boston Celtics  ", "Boston Celtics"},
		{"Denver Nuggets", "Denver Nuggets"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveExact(t *testing.T) {
	r := NewResolver(testTeams())

	tests := []struct {
		label string
		want  int
	}{
		{"Boston Celtics", 1},
		{"boston celtics", 1},
		{"BOS", 1},
		{"LA Clippers", 2},
		{"Phoenix Suns Suns", 3},
	}

	for _, tt := range tests {
		id, ok := r.Resolve(tt.label)
		if !ok {
			t.Errorf("Resolve(%q) not found, want team %d", tt.label, tt.want)
			continue
		}
		if id != tt.want {
			t.Errorf("Resolve(%q) = %d, want %d", tt.label, id, tt.want)
		}
	}
}

func TestResolveFallbackSubstring(t *testing.T) {
	r := NewResolver(testTeams())

	id, ok := r.Resolve("Angeles Clippers")
	if !ok || id != 2 {
		t.Fatalf("Resolve(%q) = %d, %v, want 2, true", "Angeles Clippers", id, ok)
	}

	// A fallback hit gets promoted so the next batch resolves it exactly.
	if _, promoted := r.lookup["angeles clippers"]; !promoted {
		t.Error("fallback hit was not promoted into the lookup map")
	}
	if id, cached := r.fallback["angeles clippers"]; !cached || id != 2 {
		t.Errorf("fallback cache = %d, %v, want 2, true", id, cached)
	}
}

func TestResolveCachesMisses(t *testing.T) {
	r := NewResolver(testTeams())

	if _, ok := r.Resolve("Baltimore Bullets"); ok {
		t.Fatal("Resolve(unknown label) = true, want false")
	}
	if id, cached := r.fallback["baltimore bullets"]; !cached || id != 0 {
		t.Errorf("miss not cached: fallback[%q] = %d, %v", "baltimore bullets", id, cached)
	}
	if _, ok := r.Resolve("Baltimore Bullets"); ok {
		t.Error("second Resolve(unknown label) = true, want false")
	}
}

func TestResolveBlankLabel(t *testing.T) {
	r := NewResolver(testTeams())
	if _, ok := r.Resolve("   "); ok {
		t.Error("Resolve(blank) = true, want false")
	}
}

func TestNewResolverCollisionLastWins(t *testing.T) {
	teams := []*store.Team{
		{ID: 1, Tricode: "AAA", Name: "Alpha", ESPNName: "Shared Label"},
		{ID: 2, Tricode: "BBB", Name: "Beta", ESPNName: "Shared Label"},
	}

	r := NewResolver(teams)
	id, ok := r.Resolve("Shared Label")
	if !ok || id != 2 {
		t.Errorf("Resolve(colliding alias) = %d, %v, want 2, true", id, ok)
	}
}
