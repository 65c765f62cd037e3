package espn

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/nyx/internal/identity"
	"github.com/fortuna/nyx/internal/reconciliation"
	"github.com/fortuna/nyx/internal/store"
	"github.com/fortuna/nyx/internal/store/repository"
)

// Ingester runs the full injury sync: scrape, resolve, reconcile, persist.
type Ingester struct {
	client     *Client
	engine     *reconciliation.Engine
	teamRepo   *repository.TeamRepository
	injuryRepo *repository.InjuryRepository
}

// NewIngester creates a new injury ingester
func NewIngester(client *Client, engine *reconciliation.Engine, db *store.Database) *Ingester {
	return &Ingester{
		client:     client,
		engine:     engine,
		teamRepo:   repository.NewTeamRepository(db),
		injuryRepo: repository.NewInjuryRepository(db),
	}
}

// SyncOnce runs one pass and persists the outcome atomically. An empty scrape
// is reported, not applied, so a ragged page never wipes state. The resolver
// and its caches are rebuilt from team alias data each pass.
func (i *Ingester) SyncOnce(ctx context.Context) (*reconciliation.Result, error) {
	html, err := i.client.FetchInjuriesHTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching injuries page: %w", err)
	}

	doc, err := ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("parsing injuries page: %w", err)
	}

	observed := ParseInjuries(doc)
	if len(observed) == 0 {
		log.Println("⚠️ [espn] no injury rows parsed, skipping pass")
		return &reconciliation.Result{CheckedAt: time.Now().UTC()}, nil
	}

	teams, err := i.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading teams: %w", err)
	}
	resolver := identity.NewResolver(teams)

	current, err := i.injuryRepo.LoadCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading current injuries: %w", err)
	}

	res := i.engine.Reconcile(observed, current, resolver, time.Now().UTC())

	if err := i.injuryRepo.Apply(ctx, res); err != nil {
		return nil, fmt.Errorf("applying reconciliation: %w", err)
	}

	if res.HasMutations() {
		log.Printf("✓ [espn] injuries sync committed (%d transitions)", len(res.History))
	}

	return res, nil
}
