package reconciliation

import (
	"testing"
	"time"
)

// mapResolver resolves exact labels only, standing in for the identity layer.
type mapResolver map[string]int

func (m mapResolver) Resolve(label string) (int, bool) {
	id, ok := m[label]
	return id, ok
}

var testResolver = mapResolver{
	"Boston Celtics":     1,
	"Los Angeles Lakers": 2,
}

func testCheckedAt() time.Time {
	return time.Date(2024, 3, 15, 19, 0, 0, 0, time.UTC)
}

func TestReconcileInsert(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{}

	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Day-To-Day", EstReturn: "Mar 18"},
	}

	res := e.Reconcile(observed, current, testResolver, testCheckedAt())

	if res.Inserted != 1 || res.Updated != 0 || res.Unchanged != 0 || res.SkippedUnresolved != 0 {
		t.Fatalf("counts = %d/%d/%d/%d, want 1/0/0/0",
			res.Inserted, res.Updated, res.Unchanged, res.SkippedUnresolved)
	}
	if len(res.Inserts) != 1 || len(res.History) != 1 {
		t.Fatalf("mutations = %d inserts, %d history, want 1 and 1", len(res.Inserts), len(res.History))
	}

	ins := res.Inserts[0]
	if ins.TeamID != 1 || ins.Player != "Al Horford" || ins.Status != "Day-To-Day" {
		t.Errorf("insert = %+v, want team 1 / Al Horford / Day-To-Day", ins)
	}
	if ins.Source != Source {
		t.Errorf("Source = %q, want %q", ins.Source, Source)
	}

	if st, ok := current[Key{TeamID: 1, Player: "al horford"}]; !ok || st.Status != "Day-To-Day" {
		t.Errorf("snapshot not updated in pass: %+v, %v", st, ok)
	}
}

func TestReconcileUpdate(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{
		{TeamID: 1, Player: "al horford"}: {Status: "Day-To-Day", EstReturn: "Mar 18"},
	}

	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Out", EstReturn: "Mar 25"},
	}

	res := e.Reconcile(observed, current, testResolver, testCheckedAt())

	if res.Updated != 1 || res.Inserted != 0 {
		t.Fatalf("Updated = %d, Inserted = %d, want 1 and 0", res.Updated, res.Inserted)
	}
	if len(res.History) != 1 {
		t.Fatalf("history rows = %d, want 1", len(res.History))
	}

	// The history append carries the new state, not the old one.
	h := res.History[0]
	if h.Status != "Out" || h.EstReturn != "Mar 25" {
		t.Errorf("history = %q/%q, want Out/Mar 25", h.Status, h.EstReturn)
	}
	if !h.CheckDate.Equal(testCheckedAt()) {
		t.Errorf("CheckDate = %v, want %v", h.CheckDate, testCheckedAt())
	}
}

func TestReconcileUnchanged(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{
		{TeamID: 1, Player: "al horford"}: {Status: "Out", EstReturn: "Mar 25"},
	}

	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Out", EstReturn: "Mar 25"},
	}

	res := e.Reconcile(observed, current, testResolver, testCheckedAt())

	if res.Unchanged != 1 {
		t.Errorf("Unchanged = %d, want 1", res.Unchanged)
	}
	if res.HasMutations() {
		t.Errorf("HasMutations() = true for an unchanged pass: %+v", res)
	}
	if len(res.History) != 0 {
		t.Errorf("history rows = %d, want 0 (no transition happened)", len(res.History))
	}
}

func TestReconcileIdempotent(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{}

	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Out", EstReturn: "Mar 25"},
		{TeamLabel: "Los Angeles Lakers", Player: "LeBron James", Status: "Day-To-Day", EstReturn: ""},
	}

	first := e.Reconcile(observed, current, testResolver, testCheckedAt())
	if first.Inserted != 2 {
		t.Fatalf("first pass Inserted = %d, want 2", first.Inserted)
	}

	second := e.Reconcile(observed, current, testResolver, testCheckedAt().Add(2*time.Hour))
	if second.Unchanged != 2 || second.Inserted != 0 || second.Updated != 0 {
		t.Errorf("second pass = %d/%d/%d inserted/updated/unchanged, want 0/0/2",
			second.Inserted, second.Updated, second.Unchanged)
	}
	if second.HasMutations() {
		t.Errorf("second pass produced mutations: %+v", second)
	}
}

func TestReconcileSkipsUnresolved(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{}

	observed := []Observation{
		{TeamLabel: "Seattle SuperSonics", Player: "Shawn Kemp", Status: "Out", EstReturn: ""},
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Out", EstReturn: ""},
	}

	res := e.Reconcile(observed, current, testResolver, testCheckedAt())

	if res.SkippedUnresolved != 1 {
		t.Errorf("SkippedUnresolved = %d, want 1", res.SkippedUnresolved)
	}
	if res.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1 (the resolvable row still lands)", res.Inserted)
	}
	if len(res.History) != 1 {
		t.Errorf("history rows = %d, want 1", len(res.History))
	}
}

func TestReconcileBlankValuesBecomeUnknown(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{}

	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "  ", EstReturn: ""},
	}

	res := e.Reconcile(observed, current, testResolver, testCheckedAt())

	if len(res.Inserts) != 1 {
		t.Fatalf("inserts = %d, want 1", len(res.Inserts))
	}
	ins := res.Inserts[0]
	if ins.Status != UnknownValue || ins.EstReturn != UnknownValue {
		t.Errorf("blank values = %q/%q, want %q for both", ins.Status, ins.EstReturn, UnknownValue)
	}
}

func TestReconcileSameBatchDuplicate(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{}

	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Out", EstReturn: "Mar 25"},
		{TeamLabel: "Boston Celtics", Player: "AL HORFORD", Status: "Out", EstReturn: "Mar 25"},
	}

	res := e.Reconcile(observed, current, testResolver, testCheckedAt())

	if res.Inserted != 1 || res.Unchanged != 1 {
		t.Errorf("Inserted = %d, Unchanged = %d, want 1 and 1 (duplicate dedupes in-pass)",
			res.Inserted, res.Unchanged)
	}
	if len(res.History) != 1 {
		t.Errorf("history rows = %d, want 1", len(res.History))
	}
}

func TestReconcilePruneRecovered(t *testing.T) {
	e := NewEngine(Options{PruneRecovered: true})
	current := map[Key]State{
		{TeamID: 1, Player: "al horford"}:    {Status: "Out", EstReturn: "Mar 25"},
		{TeamID: 1, Player: "derrick white"}: {Status: "Day-To-Day", EstReturn: "Unknown"},
		{TeamID: 2, Player: "lebron james"}:  {Status: "Out", EstReturn: "Unknown"},
	}

	// Only the Celtics section shows up, and only Horford is still on it.
	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Out", EstReturn: "Mar 25"},
	}

	res := e.Reconcile(observed, current, testResolver, testCheckedAt())

	if res.Pruned != 1 || len(res.Removed) != 1 {
		t.Fatalf("Pruned = %d, Removed = %d, want 1 and 1", res.Pruned, len(res.Removed))
	}
	if res.Removed[0] != (Key{TeamID: 1, Player: "derrick white"}) {
		t.Errorf("Removed[0] = %+v, want team 1 / derrick white", res.Removed[0])
	}

	// The Lakers never appeared this pass, so their row is left alone.
	if _, ok := current[Key{TeamID: 2, Player: "lebron james"}]; !ok {
		t.Error("row for an unobserved team was pruned")
	}
	if _, ok := current[Key{TeamID: 1, Player: "derrick white"}]; ok {
		t.Error("pruned row still present in snapshot")
	}
}

func TestReconcileMetricsAccumulate(t *testing.T) {
	e := NewEngine(Options{})
	current := map[Key]State{}

	observed := []Observation{
		{TeamLabel: "Boston Celtics", Player: "Al Horford", Status: "Out", EstReturn: ""},
	}

	e.Reconcile(observed, current, testResolver, testCheckedAt())
	e.Reconcile(observed, current, testResolver, testCheckedAt().Add(2*time.Hour))

	m := e.Metrics()
	if m.TotalPasses != 2 {
		t.Errorf("TotalPasses = %d, want 2", m.TotalPasses)
	}
	if m.Inserted != 1 || m.Unchanged != 1 {
		t.Errorf("Inserted = %d, Unchanged = %d, want 1 and 1", m.Inserted, m.Unchanged)
	}
	if !m.LastPass.Equal(testCheckedAt().Add(2 * time.Hour)) {
		t.Errorf("LastPass = %v, want the second pass time", m.LastPass)
	}
}
