package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/nyx/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	db *store.Database
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *store.Database) *TeamRepository {
	return &TeamRepository{db: db}
}

// GetAll returns all teams with their alias labels, ordered by tricode
func (r *TeamRepository) GetAll(ctx context.Context) ([]*store.Team, error) {
	query := `
		SELECT id, tricode, nba_team_id, name, city, espn_name, updated_at
		FROM teams
		ORDER BY tricode
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		team := &store.Team{}
		err := rows.Scan(
			&team.ID, &team.Tricode, &team.NBATeamID, &team.Name,
			&team.City, &team.ESPNName, &team.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// GetByTricode finds a team by its three-letter code (e.g. "BOS", "LAL")
func (r *TeamRepository) GetByTricode(ctx context.Context, tricode string) (*store.Team, error) {
	query := `
		SELECT id, tricode, nba_team_id, name, city, espn_name, updated_at
		FROM teams
		WHERE tricode = $1
	`

	team := &store.Team{}
	err := r.db.DB().QueryRowContext(ctx, query, tricode).Scan(
		&team.ID, &team.Tricode, &team.NBATeamID, &team.Name,
		&team.City, &team.ESPNName, &team.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team not found: %s", tricode)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}

	return team, nil
}

// Upsert inserts or updates a team keyed on tricode and fills in its ID
func (r *TeamRepository) Upsert(ctx context.Context, team *store.Team) error {
	query := `
		INSERT INTO teams (tricode, nba_team_id, name, city, espn_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tricode) DO UPDATE SET
			nba_team_id = EXCLUDED.nba_team_id,
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			espn_name = EXCLUDED.espn_name,
			updated_at = NOW()
		RETURNING id
	`

	err := r.db.DB().QueryRowContext(ctx, query,
		team.Tricode, team.NBATeamID, team.Name, team.City, team.ESPNName,
	).Scan(&team.ID)

	if err != nil {
		return fmt.Errorf("upserting team %s: %w", team.Tricode, err)
	}

	return nil
}
