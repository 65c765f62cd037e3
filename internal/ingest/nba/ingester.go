package nba

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fortuna/nyx/internal/store"
	"github.com/fortuna/nyx/internal/store/repository"
)

// fallbackSeason is recorded when neither the game code nor the tipoff
// reveals a season.
const fallbackSeason = 1970

// Ingester imports the league schedule into the teams and games tables.
type Ingester struct {
	client   *Client
	teamRepo *repository.TeamRepository
	gameRepo *repository.GameRepository
}

// NewIngester creates a new schedule ingester
func NewIngester(client *Client, db *store.Database) *Ingester {
	return &Ingester{
		client:   client,
		teamRepo: repository.NewTeamRepository(db),
		gameRepo: repository.NewGameRepository(db),
	}
}

// ImportSummary counts the outcome of one schedule import.
type ImportSummary struct {
	TeamsUpserted int `json:"teams_upserted"`
	GamesUpserted int `json:"games_upserted"`
	GamesSkipped  int `json:"games_skipped"`
}

// ImportSchedule downloads the schedule feed and upserts every team it
// mentions, then every game with a usable tipoff and two known teams.
// Defective rows are skipped and counted, never fatal.
func (i *Ingester) ImportSchedule(ctx context.Context) (*ImportSummary, error) {
	log.Println("→ [nba] importing league schedule...")

	dates, err := i.client.FetchSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	summary := &ImportSummary{}

	// Teams first so game rows can reference them.
	teamIDs := make(map[string]int)
	for _, team := range harvestTeams(dates) {
		if err := i.teamRepo.Upsert(ctx, team); err != nil {
			return nil, fmt.Errorf("upserting team %s: %w", team.Tricode, err)
		}
		teamIDs[team.Tricode] = team.ID
		summary.TeamsUpserted++
	}

	for _, day := range dates {
		for _, g := range day.Games {
			game, ok := buildGame(g, teamIDs)
			if !ok {
				summary.GamesSkipped++
				continue
			}
			if err := i.gameRepo.Upsert(ctx, game); err != nil {
				log.Printf("  ⚠️ [nba] failed to upsert game %s: %v", g.GameID, err)
				summary.GamesSkipped++
				continue
			}
			summary.GamesUpserted++
		}
	}

	log.Printf("✓ [nba] schedule import: teams=%d games=%d skipped=%d",
		summary.TeamsUpserted, summary.GamesUpserted, summary.GamesSkipped)

	return summary, nil
}

// harvestTeams collects every team mentioned on either side of a scheduled
// game, keyed by tricode, sorted for deterministic upsert order. The espn_name
// alias is "City Name", the label the injury report uses.
func harvestTeams(dates []GameDate) []*store.Team {
	byTricode := make(map[string]*store.Team)

	for _, day := range dates {
		for _, g := range day.Games {
			for _, side := range []ScheduleTeam{g.HomeTeam, g.AwayTeam} {
				tricode := strings.TrimSpace(side.TeamTricode)
				name := strings.TrimSpace(side.TeamName)
				city := strings.TrimSpace(side.TeamCity)
				if tricode == "" || name == "" || side.TeamID == 0 {
					continue
				}

				espnName := name
				if city != "" {
					espnName = city + " " + name
				}

				byTricode[tricode] = &store.Team{
					Tricode:   tricode,
					NBATeamID: int(side.TeamID),
					Name:      name,
					City:      city,
					ESPNName:  espnName,
				}
			}
		}
	}

	tricodes := make([]string, 0, len(byTricode))
	for tricode := range byTricode {
		tricodes = append(tricodes, tricode)
	}
	sort.Strings(tricodes)

	teams := make([]*store.Team, 0, len(byTricode))
	for _, tricode := range tricodes {
		teams = append(teams, byTricode[tricode])
	}
	return teams
}

// buildGame converts a feed entry into a store row. Entries missing a tipoff,
// a tricode, or a known team are rejected.
func buildGame(g ScheduledGame, teamIDs map[string]int) (*store.Game, bool) {
	if g.GameDateTimeUTC == "" {
		return nil, false
	}
	tipoff, err := time.Parse(time.RFC3339, g.GameDateTimeUTC)
	if err != nil {
		return nil, false
	}

	homeTri := strings.TrimSpace(g.HomeTeam.TeamTricode)
	awayTri := strings.TrimSpace(g.AwayTeam.TeamTricode)
	if homeTri == "" || awayTri == "" {
		return nil, false
	}

	homeID, homeOK := teamIDs[homeTri]
	awayID, awayOK := teamIDs[awayTri]
	if !homeOK || !awayOK {
		return nil, false
	}

	return &store.Game{
		GameID:         g.GameID,
		Season:         inferSeason(g),
		TipoffUTC:      tipoff.UTC(),
		HomeTeamID:     homeID,
		AwayTeamID:     awayID,
		ArenaName:      nullString(g.ArenaName),
		ArenaCity:      nullString(g.ArenaCity),
		ArenaState:     nullString(g.ArenaState),
		GameStatus:     sql.NullInt32{Int32: int32(g.GameStatus), Valid: g.GameStatus != 0},
		GameStatusText: nullString(g.GameStatusText),
		Postponed:      g.PostponedStatus == "Y",
	}, true
}

// inferSeason reads the season off the game code's leading year, falling back
// to the tipoff year, then to the sentinel.
func inferSeason(g ScheduledGame) int {
	if len(g.GameCode) >= 4 {
		if year, err := strconv.Atoi(g.GameCode[:4]); err == nil && year > 0 {
			return year
		}
	}
	if g.GameDateTimeUTC != "" {
		if tipoff, err := time.Parse(time.RFC3339, g.GameDateTimeUTC); err == nil {
			return tipoff.Year()
		}
	}
	return fallbackSeason
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
