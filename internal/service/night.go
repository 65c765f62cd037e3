package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/fortuna/nyx/internal/store"
	"github.com/fortuna/nyx/internal/store/repository"
	"github.com/fortuna/nyx/internal/window"
)

// NightService composes the window-scoped reads: which teams play tonight
// and what their injury reports look like.
type NightService struct {
	gameRepo   *repository.GameRepository
	teamRepo   *repository.TeamRepository
	injuryRepo *repository.InjuryRepository
}

// NewNightService creates a new night service
func NewNightService(db *store.Database) *NightService {
	return &NightService{
		gameRepo:   repository.NewGameRepository(db),
		teamRepo:   repository.NewTeamRepository(db),
		injuryRepo: repository.NewInjuryRepository(db),
	}
}

// Snapshot is the composed read model for one night window.
type Snapshot struct {
	Date     string             `json:"date"`
	Window   window.Window      `json:"window"`
	Games    []*store.GameRow   `json:"games"`
	Teams    []string           `json:"teams"`
	Injuries []*store.InjuryRow `json:"injuries"`
}

// TeamsPlayingIn returns the IDs of every team with a tipoff inside w.
func (s *NightService) TeamsPlayingIn(ctx context.Context, w window.Window) ([]int, error) {
	teamIDs, err := s.gameRepo.TeamsPlayingBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetching playing teams: %w", err)
	}
	return teamIDs, nil
}

// InjuriesFor returns current injuries for a team set in display order.
func (s *NightService) InjuriesFor(ctx context.Context, teamIDs []int) ([]*store.InjuryRow, error) {
	injuries, err := s.injuryRepo.ForTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("fetching injuries: %w", err)
	}
	return injuries, nil
}

// GamesIn returns the slate inside w with Paris-local tipoff strings filled.
func (s *NightService) GamesIn(ctx context.Context, w window.Window) ([]*store.GameRow, error) {
	games, err := s.gameRepo.ListBetween(ctx, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("fetching games: %w", err)
	}

	paris := window.Location()
	for _, g := range games {
		g.TipParis = g.TipoffUTC.In(paris).Format("15:04")
	}

	return games, nil
}

// SnapshotFor builds the full night payload for a calendar date.
func (s *NightService) SnapshotFor(ctx context.Context, date string) (*Snapshot, error) {
	w, err := window.Compute(date)
	if err != nil {
		return nil, err
	}

	games, err := s.GamesIn(ctx, w)
	if err != nil {
		return nil, err
	}

	teamIDs, err := s.TeamsPlayingIn(ctx, w)
	if err != nil {
		return nil, err
	}

	injuries, err := s.InjuriesFor(ctx, teamIDs)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Date:     date,
		Window:   w,
		Games:    games,
		Teams:    playingTricodes(games),
		Injuries: injuries,
	}, nil
}

// playingTricodes collects the team codes appearing on the slate, sorted.
func playingTricodes(games []*store.GameRow) []string {
	seen := make(map[string]bool)
	for _, g := range games {
		seen[g.Home] = true
		seen[g.Away] = true
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
