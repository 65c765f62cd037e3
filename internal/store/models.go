package store

import (
	"database/sql"
	"time"
)

// Team represents an NBA franchise along with the alias labels
// (name, espn_name, tricode) used to resolve scraped team names.
type Team struct {
	ID        int       `json:"id" db:"id"`
	Tricode   string    `json:"tricode" db:"tricode"`
	NBATeamID int       `json:"nba_team_id" db:"nba_team_id"`
	Name      string    `json:"name" db:"name"`
	City      string    `json:"city" db:"city"`
	ESPNName  string    `json:"espn_name" db:"espn_name"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Game represents one scheduled NBA game with its UTC tipoff.
type Game struct {
	ID             int            `json:"id" db:"id"`
	GameID         string         `json:"game_id" db:"game_id"`
	Season         int            `json:"season" db:"season"`
	TipoffUTC      time.Time      `json:"tipoff_utc" db:"tipoff_utc"`
	HomeTeamID     int            `json:"home_team_id" db:"home_team_id"`
	AwayTeamID     int            `json:"away_team_id" db:"away_team_id"`
	ArenaName      sql.NullString `json:"arena_name,omitempty" db:"arena_name"`
	ArenaCity      sql.NullString `json:"arena_city,omitempty" db:"arena_city"`
	ArenaState     sql.NullString `json:"arena_state,omitempty" db:"arena_state"`
	GameStatus     sql.NullInt32  `json:"game_status,omitempty" db:"game_status"`
	GameStatusText sql.NullString `json:"game_status_text,omitempty" db:"game_status_text"`
	Postponed      bool           `json:"postponed" db:"postponed"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// CurrentInjury is one row of injuries_current: the latest observed state
// for a (team, player) pair.
type CurrentInjury struct {
	TeamID    int       `json:"team_id" db:"team_id"`
	Player    string    `json:"player" db:"player"`
	Status    string    `json:"status" db:"status"`
	EstReturn string    `json:"est_return" db:"est_return"`
	Source    string    `json:"source" db:"source"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// InjuryEvent is one append-only injuries_history row recording a transition
// (first sighting or a changed status/return), never an unchanged confirmation.
type InjuryEvent struct {
	ID        int       `json:"id" db:"id"`
	CheckDate time.Time `json:"check_date" db:"check_date"`
	TeamID    int       `json:"team_id" db:"team_id"`
	Player    string    `json:"player" db:"player"`
	Status    string    `json:"status" db:"status"`
	EstReturn string    `json:"est_return" db:"est_return"`
	Source    string    `json:"source" db:"source"`
}

// InjuryRow is a read-side injury joined with its team code, in display order.
type InjuryRow struct {
	Team      string `json:"team"`
	Player    string `json:"player"`
	Status    string `json:"status"`
	EstReturn string `json:"est_return"`
}

// GameRow is a read-side night-slate game with resolved team codes and a
// Paris-local tipoff string for display.
type GameRow struct {
	GameID    string    `json:"game_id"`
	TipoffUTC time.Time `json:"tipoff_utc"`
	TipParis  string    `json:"tip_paris"`
	Home      string    `json:"home"`
	Away      string    `json:"away"`
	Arena     string    `json:"arena,omitempty"`
	Postponed bool      `json:"postponed"`
}
