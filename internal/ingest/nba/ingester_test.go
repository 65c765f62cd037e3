package nba

import (
	"encoding/json"
	"testing"
)

func TestInferSeason(t *testing.T) {
	tests := []struct {
		name string
		game ScheduledGame
		want int
	}{
		{
			name: "from game code",
			game: ScheduledGame{GameCode: "20241022/LALBOS", GameDateTimeUTC: "2025-01-05T00:30:00Z"},
			want: 2024,
		},
		{
			name: "from tipoff when code is malformed",
			game: ScheduledGame{GameCode: "abcd/LALBOS", GameDateTimeUTC: "2024-10-22T23:30:00Z"},
			want: 2024,
		},
		{
			name: "from tipoff when code is missing",
			game: ScheduledGame{GameDateTimeUTC: "2023-04-09T19:00:00Z"},
			want: 2023,
		},
		{
			name: "sentinel when nothing is usable",
			game: ScheduledGame{GameCode: "xx", GameDateTimeUTC: "not-a-time"},
			want: fallbackSeason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := inferSeason(tt.game); got != tt.want {
				t.Errorf("inferSeason = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGameDatesVariants(t *testing.T) {
	nested := []byte(`{"leagueSchedule":{"seasonYear":"2024-25","gameDates":[{"gameDate":"10/22/2024","games":[]}]}}`)
	flat := []byte(`{"gameDates":[{"gameDate":"10/22/2024","games":[]},{"gameDate":"10/23/2024","games":[]}]}`)
	empty := []byte(`{}`)

	var p scheduleResponse
	if err := json.Unmarshal(nested, &p); err != nil {
		t.Fatalf("unmarshal nested: %v", err)
	}
	if got := len(p.gameDates()); got != 1 {
		t.Errorf("nested variant gameDates = %d, want 1", got)
	}

	p = scheduleResponse{}
	if err := json.Unmarshal(flat, &p); err != nil {
		t.Fatalf("unmarshal flat: %v", err)
	}
	if got := len(p.gameDates()); got != 2 {
		t.Errorf("flat variant gameDates = %d, want 2", got)
	}

	p = scheduleResponse{}
	if err := json.Unmarshal(empty, &p); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if got := len(p.gameDates()); got != 0 {
		t.Errorf("empty payload gameDates = %d, want 0", got)
	}
}

func TestHarvestTeams(t *testing.T) {
	dates := []GameDate{
		{
			Games: []ScheduledGame{
				{
					HomeTeam: ScheduleTeam{TeamID: 1610612738, TeamTricode: "BOS", TeamCity: "Boston", TeamName: "Celtics"},
					AwayTeam: ScheduleTeam{TeamID: 1610612747, TeamTricode: "LAL", TeamCity: "Los Angeles", TeamName: "Lakers"},
				},
				{
					// Duplicate side keeps the latest values, no double entry.
					HomeTeam: ScheduleTeam{TeamID: 1610612738, TeamTricode: "BOS", TeamCity: "Boston", TeamName: "Celtics"},
					// All-blank side gets dropped.
					AwayTeam: ScheduleTeam{},
				},
			},
		},
	}

	teams := harvestTeams(dates)
	if len(teams) != 2 {
		t.Fatalf("harvested %d teams, want 2", len(teams))
	}

	// Sorted by tricode: BOS before LAL.
	if teams[0].Tricode != "BOS" || teams[1].Tricode != "LAL" {
		t.Errorf("tricodes = %s, %s, want BOS, LAL", teams[0].Tricode, teams[1].Tricode)
	}
	if teams[0].ESPNName != "Boston Celtics" {
		t.Errorf("ESPNName = %q, want %q", teams[0].ESPNName, "Boston Celtics")
	}
	if teams[1].NBATeamID != 1610612747 {
		t.Errorf("NBATeamID = %d, want 1610612747", teams[1].NBATeamID)
	}
}

func TestBuildGameRejectsDefectiveRows(t *testing.T) {
	teamIDs := map[string]int{"BOS": 1, "LAL": 2}

	good := ScheduledGame{
		GameID:          "0022400001",
		GameCode:        "20241022/LALBOS",
		GameDateTimeUTC: "2024-10-22T23:30:00Z",
		ArenaName:       "TD Garden",
		ArenaCity:       "Boston",
		PostponedStatus: "N",
		HomeTeam:        ScheduleTeam{TeamTricode: "BOS"},
		AwayTeam:        ScheduleTeam{TeamTricode: "LAL"},
	}

	game, ok := buildGame(good, teamIDs)
	if !ok {
		t.Fatal("buildGame rejected a valid row")
	}
	if game.HomeTeamID != 1 || game.AwayTeamID != 2 {
		t.Errorf("team IDs = %d/%d, want 1/2", game.HomeTeamID, game.AwayTeamID)
	}
	if game.Season != 2024 {
		t.Errorf("Season = %d, want 2024", game.Season)
	}
	if game.Postponed {
		t.Error("Postponed = true for status N")
	}

	noTipoff := good
	noTipoff.GameDateTimeUTC = ""
	if _, ok := buildGame(noTipoff, teamIDs); ok {
		t.Error("buildGame accepted a row without a tipoff")
	}

	unknownTeam := good
	unknownTeam.AwayTeam.TeamTricode = "SEA"
	if _, ok := buildGame(unknownTeam, teamIDs); ok {
		t.Error("buildGame accepted a row with an unmapped team")
	}

	postponed := good
	postponed.PostponedStatus = "Y"
	if game, ok := buildGame(postponed, teamIDs); !ok || !game.Postponed {
		t.Error("postponed flag not carried through")
	}
}
