package nba

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultScheduleURL is the league's static full-season schedule feed.
const DefaultScheduleURL = "https://cdn.nba.com/static/json/staticData/scheduleLeagueV2.json"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// scheduleResponse covers both shapes the feed has shipped with: gameDates
// nested under leagueSchedule, or at the top level.
type scheduleResponse struct {
	LeagueSchedule *leagueSchedule `json:"leagueSchedule"`
	GameDates      []GameDate      `json:"gameDates"`
}

type leagueSchedule struct {
	SeasonYear string     `json:"seasonYear"`
	GameDates  []GameDate `json:"gameDates"`
}

func (p *scheduleResponse) gameDates() []GameDate {
	if p.LeagueSchedule != nil && len(p.LeagueSchedule.GameDates) > 0 {
		return p.LeagueSchedule.GameDates
	}
	return p.GameDates
}

// GameDate is one calendar day of scheduled games.
type GameDate struct {
	GameDate string          `json:"gameDate"`
	Games    []ScheduledGame `json:"games"`
}

// ScheduledGame is one game entry in the schedule feed.
type ScheduledGame struct {
	GameID          string       `json:"gameId"`
	GameCode        string       `json:"gameCode"`
	GameStatus      int          `json:"gameStatus"`
	GameStatusText  string       `json:"gameStatusText"`
	GameDateTimeUTC string       `json:"gameDateTimeUTC"`
	ArenaName       string       `json:"arenaName"`
	ArenaCity       string       `json:"arenaCity"`
	ArenaState      string       `json:"arenaState"`
	PostponedStatus string       `json:"postponedStatus"`
	HomeTeam        ScheduleTeam `json:"homeTeam"`
	AwayTeam        ScheduleTeam `json:"awayTeam"`
}

// ScheduleTeam is one side of a scheduled game.
type ScheduleTeam struct {
	TeamID      int64  `json:"teamId"`
	TeamTricode string `json:"teamTricode"`
	TeamCity    string `json:"teamCity"`
	TeamName    string `json:"teamName"`
}

// Client fetches the NBA schedule feed
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates a new schedule client. An empty url selects the default feed.
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultScheduleURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
	}
}

// FetchSchedule downloads and decodes the full-season schedule
func (c *Client) FetchSchedule(ctx context.Context) ([]GameDate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating schedule request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule feed returned status %d", resp.StatusCode)
	}

	var payload scheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding schedule feed: %w", err)
	}

	dates := payload.gameDates()
	if len(dates) == 0 {
		return nil, fmt.Errorf("no gameDates found in schedule feed")
	}

	return dates, nil
}
