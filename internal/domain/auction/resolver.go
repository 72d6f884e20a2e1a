package auction

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/league-vault/internal/domain/league"
)

// Result is the outcome of one rollover. Teams, FreeAgents and LeagueLog are
// the next values for the document; the input state is never modified.
type Result struct {
	Teams         []league.Team
	FreeAgents    []league.Bid
	LeagueLog     []league.LogEntry
	NewLogEntries []league.LogEntry
	// Auctions counts resolved groups, including ones whose winner had no team.
	Auctions    int
	ClearedBids int
}

// Changed reports whether applying the result would alter the document.
func (r Result) Changed() bool {
	return r.ClearedBids > 0
}

// Apply writes the result into state.
func (r Result) Apply(state *league.State) {
	if !r.Changed() {
		return
	}
	state.Teams = r.Teams
	state.FreeAgents = r.FreeAgents
	state.LeagueLog = r.LeagueLog
}

type group struct {
	key  string
	bids []league.Bid
}

// Resolve settles every pending auction at now. Bids are grouped by auction
// key, the highest amount wins and an exact tie goes to the earliest
// timestamp, then to pool order. Every bid of a resolved group leaves the pool.
func Resolve(state league.State, now time.Time) Result {
	groups := pendingGroups(state.FreeAgents)
	if len(groups) == 0 {
		return Result{
			Teams:      state.Teams,
			FreeAgents: state.FreeAgents,
			LeagueLog:  state.LeagueLog,
		}
	}

	nowMillis := now.UnixMilli()
	teams := make([]league.Team, len(state.Teams))
	copy(teams, state.Teams)
	touched := make(map[int]bool)

	cleared := make(map[string]struct{})
	clearedCount := 0
	newEntries := make([]league.LogEntry, 0, len(groups))

	for _, g := range groups {
		for _, bid := range g.bids {
			cleared[bid.ID] = struct{}{}
		}
		clearedCount += len(g.bids)

		winner := pickWinner(g.bids)
		teamIdx := findTeam(teams, winner.Team)
		if teamIdx < 0 {
			continue
		}

		if !touched[teamIdx] {
			roster := make([]league.RosterEntry, len(teams[teamIdx].Roster), len(teams[teamIdx].Roster)+1)
			copy(roster, teams[teamIdx].Roster)
			teams[teamIdx].Roster = roster
			touched[teamIdx] = true
		}

		player := strings.TrimSpace(winner.Player)
		position := league.ParsePosition(string(winner.Position))
		teams[teamIdx].Roster = append(teams[teamIdx].Roster, league.RosterEntry{
			Name:              player,
			Salary:            winner.Amount,
			Position:          position,
			BuyoutLockedUntil: nowMillis + league.BuyoutLockDuration.Milliseconds(),
		})
		league.SortRoster(teams[teamIdx].Roster)

		newEntries = append(newEntries, league.LogEntry{
			Type:      league.LogTypeFreeAgentSigned,
			ID:        signedLogID(nowMillis, len(newEntries), winner.ID),
			Team:      teams[teamIdx].Name,
			Player:    player,
			Amount:    winner.Amount,
			Position:  position,
			Timestamp: nowMillis,
		})
	}

	freeAgents := make([]league.Bid, 0, len(state.FreeAgents))
	for _, bid := range state.FreeAgents {
		if _, gone := cleared[bid.ID]; gone {
			continue
		}
		freeAgents = append(freeAgents, bid)
	}

	leagueLog := make([]league.LogEntry, 0, len(newEntries)+len(state.LeagueLog))
	leagueLog = append(leagueLog, newEntries...)
	leagueLog = append(leagueLog, state.LeagueLog...)

	return Result{
		Teams:         teams,
		FreeAgents:    freeAgents,
		LeagueLog:     leagueLog,
		NewLogEntries: newEntries,
		Auctions:      len(groups),
		ClearedBids:   clearedCount,
	}
}

// pendingGroups buckets unresolved bids in order of first appearance.
func pendingGroups(bids []league.Bid) []group {
	index := make(map[string]int)
	var out []group
	for _, bid := range bids {
		if bid.Resolved {
			continue
		}
		key := bid.GroupKey()
		idx, ok := index[key]
		if !ok {
			idx = len(out)
			index[key] = idx
			out = append(out, group{key: key})
		}
		out[idx].bids = append(out[idx].bids, bid)
	}
	return out
}

func findTeam(teams []league.Team, name string) int {
	for i := range teams {
		if teams[i].Name == name {
			return i
		}
	}
	return -1
}

func pickWinner(bids []league.Bid) league.Bid {
	winner := bids[0]
	for _, bid := range bids[1:] {
		if bid.Amount > winner.Amount {
			winner = bid
			continue
		}
		if bid.Amount == winner.Amount && bid.Timestamp < winner.Timestamp {
			winner = bid
		}
	}
	return winner
}

// signedLogID is deterministic for a given rollover instant and unique within it.
func signedLogID(nowMillis int64, seq int, bidID string) string {
	return fmt.Sprintf("%s-%d-%d-%s", league.LogTypeFreeAgentSigned, nowMillis, seq, bidID)
}
