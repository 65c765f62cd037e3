package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/fortuna/nyx/internal/reconciliation"
	"github.com/fortuna/nyx/internal/store"
)

// InjuryRepository handles current-state and history injury data access
type InjuryRepository struct {
	db *store.Database
}

// NewInjuryRepository creates a new injury repository
func NewInjuryRepository(db *store.Database) *InjuryRepository {
	return &InjuryRepository{db: db}
}

// LoadCurrent returns the full current-state snapshot keyed the way the
// reconciliation engine compares rows (player lower-cased)
func (r *InjuryRepository) LoadCurrent(ctx context.Context) (map[reconciliation.Key]reconciliation.State, error) {
	query := `
		SELECT team_id, player, status, est_return
		FROM injuries_current
	`

	rows, err := r.db.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying current injuries: %w", err)
	}
	defer rows.Close()

	current := make(map[reconciliation.Key]reconciliation.State)
	for rows.Next() {
		var teamID int
		var player, status, estReturn string
		if err := rows.Scan(&teamID, &player, &status, &estReturn); err != nil {
			return nil, fmt.Errorf("scanning current injury: %w", err)
		}
		key := reconciliation.Key{TeamID: teamID, Player: strings.ToLower(player)}
		current[key] = reconciliation.State{Status: status, EstReturn: estReturn}
	}

	return current, rows.Err()
}

// Apply persists one reconciliation pass in a single transaction: history
// appends first, then current-state inserts, updates and prunes. Any failure
// rolls back the whole pass.
func (r *InjuryRepository) Apply(ctx context.Context, res *reconciliation.Result) error {
	if !res.HasMutations() {
		return nil
	}

	tx, err := r.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning injury transaction: %w", err)
	}
	defer tx.Rollback()

	historyStmt := `
		INSERT INTO injuries_history (check_date, team_id, player, status, est_return, source)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, ev := range res.History {
		if _, err := tx.ExecContext(ctx, historyStmt,
			ev.CheckDate, ev.TeamID, ev.Player, ev.Status, ev.EstReturn, ev.Source,
		); err != nil {
			return fmt.Errorf("appending history for %s: %w", ev.Player, err)
		}
	}

	insertStmt := `
		INSERT INTO injuries_current (team_id, player, status, est_return, source)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (team_id, LOWER(player)) DO NOTHING
	`
	for _, row := range res.Inserts {
		if _, err := tx.ExecContext(ctx, insertStmt,
			row.TeamID, row.Player, row.Status, row.EstReturn, row.Source,
		); err != nil {
			return fmt.Errorf("inserting current injury for %s: %w", row.Player, err)
		}
	}

	updateStmt := `
		UPDATE injuries_current
		SET status = $3, est_return = $4, updated_at = NOW()
		WHERE team_id = $1 AND LOWER(player) = LOWER($2)
	`
	for _, row := range res.Updates {
		if _, err := tx.ExecContext(ctx, updateStmt,
			row.TeamID, row.Player, row.Status, row.EstReturn,
		); err != nil {
			return fmt.Errorf("updating current injury for %s: %w", row.Player, err)
		}
	}

	deleteStmt := `
		DELETE FROM injuries_current
		WHERE team_id = $1 AND LOWER(player) = $2
	`
	for _, key := range res.Removed {
		if _, err := tx.ExecContext(ctx, deleteStmt, key.TeamID, key.Player); err != nil {
			return fmt.Errorf("pruning current injury for %s: %w", key.Player, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing injury transaction: %w", err)
	}

	return nil
}

// ForTeams returns current injuries for a set of teams joined with their
// codes, ordered by (tricode, status, player) for display
func (r *InjuryRepository) ForTeams(ctx context.Context, teamIDs []int) ([]*store.InjuryRow, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}

	query := `
		SELECT t.tricode, ic.player, ic.status, ic.est_return
		FROM injuries_current ic
		JOIN teams t ON t.id = ic.team_id
		WHERE ic.team_id = ANY($1)
		ORDER BY t.tricode, ic.status, ic.player
	`

	rows, err := r.db.DB().QueryContext(ctx, query, pq.Array(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("querying injuries: %w", err)
	}
	defer rows.Close()

	var injuries []*store.InjuryRow
	for rows.Next() {
		row := &store.InjuryRow{}
		if err := rows.Scan(&row.Team, &row.Player, &row.Status, &row.EstReturn); err != nil {
			return nil, fmt.Errorf("scanning injury: %w", err)
		}
		injuries = append(injuries, row)
	}

	return injuries, rows.Err()
}

// HistoryForTeam returns the most recent transitions for one team, newest first
func (r *InjuryRepository) HistoryForTeam(ctx context.Context, teamID, limit int) ([]*store.InjuryEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, check_date, team_id, player, status, est_return, source
		FROM injuries_history
		WHERE team_id = $1
		ORDER BY check_date DESC, id DESC
		LIMIT $2
	`

	rows, err := r.db.DB().QueryContext(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying injury history: %w", err)
	}
	defer rows.Close()

	var events []*store.InjuryEvent
	for rows.Next() {
		ev := &store.InjuryEvent{}
		err := rows.Scan(&ev.ID, &ev.CheckDate, &ev.TeamID, &ev.Player,
			&ev.Status, &ev.EstReturn, &ev.Source)
		if err != nil {
			return nil, fmt.Errorf("scanning injury event: %w", err)
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}
