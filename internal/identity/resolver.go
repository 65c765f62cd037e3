package identity

import (
	"log"
	"strings"

	"github.com/fortuna/nyx/internal/store"
)

// Resolver maps scraped team labels to team IDs. It owns its lookup and
// fallback caches explicitly; build one per reconciliation pass or guard it
// externally, Resolve mutates the caches and is not synchronized.
type Resolver struct {
	teams    []*store.Team
	lookup   map[string]int
	fallback map[string]int // normalized label -> team ID, 0 records a known miss
}

// NewResolver builds a resolver from team alias data. Every alias (name,
// espn_name, tricode) is normalized and lower-cased into the lookup map;
// on a collision the last team wins, with a warning.
func NewResolver(teams []*store.Team) *Resolver {
	r := &Resolver{
		teams:    teams,
		lookup:   make(map[string]int),
		fallback: make(map[string]int),
	}

	for _, team := range teams {
		for _, alias := range []string{team.Name, team.ESPNName, team.Tricode} {
			key := lookupKey(alias)
			if key == "" {
				continue
			}
			if prev, ok := r.lookup[key]; ok && prev != team.ID {
				log.Printf("⚠️ [identity] alias %q maps to teams %d and %d, keeping %d", key, prev, team.ID, team.ID)
			}
			r.lookup[key] = team.ID
		}
	}

	return r
}

// Resolve maps a raw scraped label to a team ID. Exact lookup first, then the
// fallback cache, then a tolerant substring scan over the alias data. Fallback
// outcomes are cached hit or miss, and a hit is promoted into the lookup so
// the next batch resolves it exactly.
func (r *Resolver) Resolve(raw string) (int, bool) {
	key := lookupKey(raw)
	if key == "" {
		return 0, false
	}

	if id, ok := r.lookup[key]; ok {
		return id, true
	}

	if id, ok := r.fallback[key]; ok {
		return id, id != 0
	}

	id := r.scanAliases(key)
	r.fallback[key] = id
	if id == 0 {
		return 0, false
	}
	r.lookup[key] = id
	return id, true
}

// scanAliases is the tolerant tier: first team whose alias contains the
// scraped label, case-insensitively.
func (r *Resolver) scanAliases(key string) int {
	for _, team := range r.teams {
		for _, alias := range []string{team.Name, team.ESPNName, team.Tricode} {
			a := lookupKey(alias)
			if a == "" {
				continue
			}
			if strings.Contains(a, key) {
				return team.ID
			}
		}
	}
	return 0
}

// lookupKey normalizes an alias or label into its lookup form.
func lookupKey(alias string) string {
	return strings.ToLower(NormalizeLabel(alias))
}
