package reconciliation

import (
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/nyx/internal/store"
)

// Source is the tag recorded on every row this engine produces.
const Source = "ESPN"

// UnknownValue fills blank statuses and return estimates so comparisons and
// persisted rows never carry empty strings.
const UnknownValue = "Unknown"

// Observation is one scraped injury-report row, team label still raw.
type Observation struct {
	TeamLabel string `json:"team_label"`
	Player    string `json:"player"`
	Status    string `json:"status"`
	EstReturn string `json:"est_return"`
}

// Key identifies one current-state row. Player is lower-cased so the
// (team, player) identity is case-insensitive.
type Key struct {
	TeamID int
	Player string
}

// State is the compared portion of a current-state row.
type State struct {
	Status    string
	EstReturn string
}

// TeamResolver maps raw scraped team labels to team IDs.
type TeamResolver interface {
	Resolve(label string) (int, bool)
}

// Result carries the counters and ordered mutations of one pass. The storage
// layer applies Inserts, Updates, History and Removed in a single transaction;
// the engine itself never touches the database.
type Result struct {
	CheckedAt time.Time

	Inserted          int
	Updated           int
	Unchanged         int
	SkippedUnresolved int
	Pruned            int

	Inserts []store.CurrentInjury
	Updates []store.CurrentInjury
	History []store.InjuryEvent
	Removed []Key
}

// HasMutations reports whether the pass produced any writes.
func (r *Result) HasMutations() bool {
	return len(r.Inserts) > 0 || len(r.Updates) > 0 || len(r.Removed) > 0
}

// Options tunes engine behavior.
type Options struct {
	// PruneRecovered removes current rows for players missing from their
	// team's section of the report. Off by default: a vanished row usually
	// means recovery, but a ragged scrape would also clear rows.
	PruneRecovered bool
}

// Metrics accumulates pass statistics across the engine's lifetime.
type Metrics struct {
	TotalPasses       int       `json:"total_passes"`
	Inserted          int       `json:"inserted"`
	Updated           int       `json:"updated"`
	Unchanged         int       `json:"unchanged"`
	SkippedUnresolved int       `json:"skipped_unresolved"`
	Pruned            int       `json:"pruned"`
	LastPass          time.Time `json:"last_pass"`
}

// Engine classifies observed injury batches against persisted current state.
// The engine is long-lived and accumulates metrics; the resolver is handed in
// per pass since its caches belong to the pass that built it.
type Engine struct {
	opts Options

	mu      sync.Mutex
	metrics Metrics
}

// NewEngine creates a reconciliation engine.
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Reconcile runs one pass: every observation is resolved and compared with
// the current snapshot, producing inserts for first sightings, updates plus
// history appends for changed state, and nothing for unchanged rows. The
// snapshot is updated in place as rows are classified, so a duplicate within
// the same batch lands as unchanged instead of a second transition.
//
// Re-running the same batch over the resulting state yields all-unchanged
// and no mutations.
func (e *Engine) Reconcile(observed []Observation, current map[Key]State, resolver TeamResolver, checkedAt time.Time) *Result {
	res := &Result{CheckedAt: checkedAt}

	observedTeams := make(map[int]bool)
	observedKeys := make(map[Key]bool)

	for _, obs := range observed {
		teamID, ok := resolver.Resolve(obs.TeamLabel)
		if !ok {
			log.Printf("  ⚠️ [reconcile] skip unmapped team %q (player %q)", obs.TeamLabel, obs.Player)
			res.SkippedUnresolved++
			continue
		}

		player := strings.TrimSpace(obs.Player)
		status := orUnknown(obs.Status)
		estReturn := orUnknown(obs.EstReturn)

		key := Key{TeamID: teamID, Player: strings.ToLower(player)}
		observedTeams[teamID] = true
		observedKeys[key] = true

		prev, known := current[key]
		switch {
		case !known:
			res.Inserts = append(res.Inserts, store.CurrentInjury{
				TeamID: teamID, Player: player, Status: status, EstReturn: estReturn, Source: Source,
			})
			res.History = append(res.History, store.InjuryEvent{
				CheckDate: checkedAt, TeamID: teamID, Player: player, Status: status, EstReturn: estReturn, Source: Source,
			})
			res.Inserted++
			current[key] = State{Status: status, EstReturn: estReturn}

		case prev.Status != status || prev.EstReturn != estReturn:
			res.History = append(res.History, store.InjuryEvent{
				CheckDate: checkedAt, TeamID: teamID, Player: player, Status: status, EstReturn: estReturn, Source: Source,
			})
			res.Updates = append(res.Updates, store.CurrentInjury{
				TeamID: teamID, Player: player, Status: status, EstReturn: estReturn, Source: Source,
			})
			res.Updated++
			current[key] = State{Status: status, EstReturn: estReturn}

		default:
			res.Unchanged++
		}
	}

	if e.opts.PruneRecovered && len(observed) > 0 {
		// Only rows whose team still has a section are pruned. A team that
		// dropped off the report entirely is indistinguishable from a scrape
		// gap, so its rows stay.
		for key := range current {
			if observedTeams[key.TeamID] && !observedKeys[key] {
				res.Removed = append(res.Removed, key)
				res.Pruned++
			}
		}
		sort.Slice(res.Removed, func(i, j int) bool {
			a, b := res.Removed[i], res.Removed[j]
			if a.TeamID != b.TeamID {
				return a.TeamID < b.TeamID
			}
			return a.Player < b.Player
		})
		for _, key := range res.Removed {
			delete(current, key)
		}
	}

	e.recordPass(res)

	log.Printf("[reconcile] inserted=%d updated=%d unchanged=%d skipped=%d pruned=%d",
		res.Inserted, res.Updated, res.Unchanged, res.SkippedUnresolved, res.Pruned)

	return res
}

func (e *Engine) recordPass(res *Result) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.metrics.TotalPasses++
	e.metrics.Inserted += res.Inserted
	e.metrics.Updated += res.Updated
	e.metrics.Unchanged += res.Unchanged
	e.metrics.SkippedUnresolved += res.SkippedUnresolved
	e.metrics.Pruned += res.Pruned
	e.metrics.LastPass = res.CheckedAt
}

// Metrics returns a copy of the cumulative pass statistics.
func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metrics
}

// ResetMetrics clears the cumulative statistics.
func (e *Engine) ResetMetrics() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics = Metrics{}
}

// orUnknown substitutes the Unknown sentinel for blank values.
func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownValue
	}
	return s
}
