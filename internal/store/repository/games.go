package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fortuna/nyx/internal/store"
)

// GameRepository handles game data access
type GameRepository struct {
	db *store.Database
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *store.Database) *GameRepository {
	return &GameRepository{db: db}
}

// Upsert inserts or updates a game keyed on its NBA game_id
func (r *GameRepository) Upsert(ctx context.Context, game *store.Game) error {
	query := `
		INSERT INTO games (game_id, season, tipoff_utc, home_team_id, away_team_id,
			arena_name, arena_city, arena_state, game_status, game_status_text, postponed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (game_id) DO UPDATE SET
			season = EXCLUDED.season,
			tipoff_utc = EXCLUDED.tipoff_utc,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			arena_name = EXCLUDED.arena_name,
			arena_city = EXCLUDED.arena_city,
			arena_state = EXCLUDED.arena_state,
			game_status = EXCLUDED.game_status,
			game_status_text = EXCLUDED.game_status_text,
			postponed = EXCLUDED.postponed,
			updated_at = NOW()
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		game.GameID, game.Season, game.TipoffUTC, game.HomeTeamID, game.AwayTeamID,
		game.ArenaName, game.ArenaCity, game.ArenaState, game.GameStatus,
		game.GameStatusText, game.Postponed,
	).Scan(&game.ID)

	if err != nil {
		return fmt.Errorf("upserting game %s: %w", game.GameID, err)
	}

	return nil
}

// TeamsPlayingBetween returns the distinct IDs of every team with a tipoff
// inside the half-open interval [start, end)
func (r *GameRepository) TeamsPlayingBetween(ctx context.Context, start, end time.Time) ([]int, error) {
	query := `
		SELECT home_team_id AS team_id FROM games
			WHERE tipoff_utc >= $1 AND tipoff_utc < $2
		UNION
		SELECT away_team_id AS team_id FROM games
			WHERE tipoff_utc >= $1 AND tipoff_utc < $2
		ORDER BY team_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying playing teams: %w", err)
	}
	defer rows.Close()

	var teamIDs []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning team id: %w", err)
		}
		teamIDs = append(teamIDs, id)
	}

	return teamIDs, rows.Err()
}

// ListBetween returns the slate of games tipping off inside [start, end) with
// team codes resolved, ordered by tipoff. TipParis is left for the caller.
func (r *GameRepository) ListBetween(ctx context.Context, start, end time.Time) ([]*store.GameRow, error) {
	query := `
		SELECT g.game_id, g.tipoff_utc, h.tricode, a.tricode,
			COALESCE(g.arena_name, ''), COALESCE(g.arena_city, ''), g.postponed
		FROM games g
		JOIN teams h ON h.id = g.home_team_id
		JOIN teams a ON a.id = g.away_team_id
		WHERE g.tipoff_utc >= $1 AND g.tipoff_utc < $2
		ORDER BY g.tipoff_utc, g.game_id
	`

	rows, err := r.db.DB().QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying games: %w", err)
	}
	defer rows.Close()

	var games []*store.GameRow
	for rows.Next() {
		row := &store.GameRow{}
		var arenaName, arenaCity string
		err := rows.Scan(
			&row.GameID, &row.TipoffUTC, &row.Home, &row.Away,
			&arenaName, &arenaCity, &row.Postponed,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning game: %w", err)
		}
		row.Arena = formatArena(arenaName, arenaCity)
		games = append(games, row)
	}

	return games, rows.Err()
}

// CountBetween returns how many games tip off inside [start, end)
func (r *GameRepository) CountBetween(ctx context.Context, start, end time.Time) (int, error) {
	var count int
	err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM games WHERE tipoff_utc >= $1 AND tipoff_utc < $2`,
		start, end,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting games: %w", err)
	}
	return count, nil
}

// formatArena joins the arena name and city for display
func formatArena(name, city string) string {
	name = strings.TrimSpace(name)
	city = strings.TrimSpace(city)
	switch {
	case name == "":
		return city
	case city == "":
		return name
	default:
		return name + ", " + city
	}
}
