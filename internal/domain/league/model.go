package league

import (
	"sort"
	"strings"
	"time"
)

// Position is the roster slot group of a player.
type Position string

const (
	PositionForward Position = "F"
	PositionDefense Position = "D"
)

const (
	// BuyoutLockDuration is how long a freshly signed player cannot be bought out.
	BuyoutLockDuration = 14 * 24 * time.Hour

	LogTypeFreeAgentSigned = "faSigned"
	SettingFrozen          = "frozen"
)

// ParsePosition maps free-form input to a roster position, defaulting to forward.
func ParsePosition(v string) Position {
	if strings.EqualFold(strings.TrimSpace(v), string(PositionDefense)) {
		return PositionDefense
	}
	return PositionForward
}

// State is the whole league document. It is loaded and saved as one unit.
type State struct {
	Teams                     []Team     `json:"teams"`
	FreeAgents                []Bid      `json:"freeAgents"`
	LeagueLog                 []LogEntry `json:"leagueLog"`
	TradeProposals            any        `json:"tradeProposals"`
	TradeBlock                any        `json:"tradeBlock"`
	Settings                  Settings   `json:"settings"`
	NextAuctionDeadline       any        `json:"nextAuctionDeadline"`
	LastAutoWeeklySnapshotID  *string    `json:"lastAutoWeeklySnapshotId"`
	LastAutoAuctionRolloverID *string    `json:"lastAutoAuctionRolloverId"`
}

// Settings is free-form league configuration.
type Settings map[string]any

func (s Settings) Frozen() bool {
	v, _ := s[SettingFrozen].(bool)
	return v
}

// Team is keyed by Name; lookups are by exact name.
type Team struct {
	Name    string        `json:"name"`
	Roster  []RosterEntry `json:"roster"`
	Buyouts any           `json:"buyouts"`
}

type RosterEntry struct {
	Name              string   `json:"name"`
	Salary            float64  `json:"salary"`
	Position          Position `json:"position"`
	BuyoutLockedUntil int64    `json:"buyoutLockedUntil"`
}

// Bid is a sealed free-agent bid. Timestamp is the submission instant in unix milliseconds.
type Bid struct {
	ID         string   `json:"id"`
	Player     string   `json:"player"`
	Team       string   `json:"team"`
	Amount     float64  `json:"amount"`
	Position   Position `json:"position"`
	Timestamp  int64    `json:"timestamp"`
	Resolved   bool     `json:"resolved"`
	AuctionKey string   `json:"auctionKey,omitempty"`
}

// GroupKey is the auction a bid competes in.
func (b Bid) GroupKey() string {
	if key := strings.TrimSpace(b.AuctionKey); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(b.Player))
}

// LogEntry is one league audit record. Fields not modelled here are kept in
// Extra so entries written by other tools survive a load/save cycle.
type LogEntry struct {
	Type      string
	ID        string
	Team      string
	Player    string
	Amount    float64
	Position  Position
	Timestamp int64
	Extra     map[string]any
}

// SnapshotInfo describes one archived snapshot.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmptyState is the document used when nothing has been persisted yet.
func EmptyState() State {
	return State{
		Teams:          []Team{},
		FreeAgents:     []Bid{},
		LeagueLog:      []LogEntry{},
		TradeProposals: []any{},
		TradeBlock:     []any{},
		Settings:       Settings{SettingFrozen: false},
	}
}

// FindTeam returns the index of the first team with the exact name, or -1.
func (s State) FindTeam(name string) int {
	for i := range s.Teams {
		if s.Teams[i].Name == name {
			return i
		}
	}
	return -1
}

// SortRoster orders forwards before defense, then salary descending, then name ascending.
func SortRoster(entries []RosterEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		left, right := entries[i], entries[j]
		if left.Position != right.Position {
			return left.Position == PositionForward
		}
		if left.Salary != right.Salary {
			return left.Salary > right.Salary
		}
		return left.Name < right.Name
	})
}

func stringPtr(v string) *string {
	return &v
}

// WithMarkersFrom returns s carrying the scheduler markers of prev.
func (s State) WithMarkersFrom(prev State) State {
	s.LastAutoWeeklySnapshotID = cloneMarker(prev.LastAutoWeeklySnapshotID)
	s.LastAutoAuctionRolloverID = cloneMarker(prev.LastAutoAuctionRolloverID)
	return s
}

func cloneMarker(v *string) *string {
	if v == nil {
		return nil
	}
	return stringPtr(*v)
}
