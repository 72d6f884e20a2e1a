package league

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
)

// Decode parses a league document leniently. Only invalid JSON is an error;
// malformed fields are coerced to their zero value so one bad record never
// poisons the whole document.
func Decode(data []byte) (State, error) {
	var raw map[string]any
	if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
		return State{}, fmt.Errorf("decode league document: %w", err)
	}
	return Normalize(raw), nil
}

// Encode renders the document deterministically (sorted map keys, indented).
func Encode(state State) ([]byte, error) {
	out, err := sonic.ConfigStd.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode league document: %w", err)
	}
	return out, nil
}

// Normalize builds a typed State from a loosely typed document.
func Normalize(raw map[string]any) State {
	state := EmptyState()
	if raw == nil {
		return state
	}

	for _, item := range asSlice(raw["teams"]) {
		if fields, ok := item.(map[string]any); ok {
			state.Teams = append(state.Teams, teamFromMap(fields))
		}
	}
	state.FreeAgents = bidsFromAny(raw["freeAgents"])
	for _, item := range asSlice(raw["leagueLog"]) {
		if fields, ok := item.(map[string]any); ok {
			state.LeagueLog = append(state.LeagueLog, logEntryFromMap(fields))
		}
	}

	if v, ok := raw["tradeProposals"]; ok && v != nil {
		state.TradeProposals = v
	}
	if v, ok := raw["tradeBlock"]; ok && v != nil {
		state.TradeBlock = v
	}
	if settings, ok := raw["settings"].(map[string]any); ok {
		state.Settings = Settings(settings)
		state.Settings[SettingFrozen] = asBool(settings[SettingFrozen])
	}
	state.NextAuctionDeadline = raw["nextAuctionDeadline"]
	state.LastAutoWeeklySnapshotID = asMarker(raw["lastAutoWeeklySnapshotId"])
	state.LastAutoAuctionRolloverID = asMarker(raw["lastAutoAuctionRolloverId"])

	return state
}

func teamFromMap(fields map[string]any) Team {
	out := Team{
		Name:    strings.TrimSpace(asString(fields["name"])),
		Roster:  []RosterEntry{},
		Buyouts: fields["buyouts"],
	}
	if out.Buyouts == nil {
		out.Buyouts = []any{}
	}
	for _, item := range asSlice(fields["roster"]) {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out.Roster = append(out.Roster, RosterEntry{
			Name:              asString(entry["name"]),
			Salary:            asAmount(entry["salary"]),
			Position:          ParsePosition(asString(entry["position"])),
			BuyoutLockedUntil: asMillis(entry["buyoutLockedUntil"]),
		})
	}
	return out
}

// bidsFromAny accepts either an array of bids or an object keyed by bid id.
func bidsFromAny(v any) []Bid {
	out := []Bid{}
	switch typed := v.(type) {
	case []any:
		for _, item := range typed {
			if fields, ok := item.(map[string]any); ok {
				out = append(out, bidFromMap(fields, ""))
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if fields, ok := typed[key].(map[string]any); ok {
				out = append(out, bidFromMap(fields, key))
			}
		}
	}
	return out
}

func bidFromMap(fields map[string]any, fallbackID string) Bid {
	id := asString(fields["id"])
	if id == "" {
		id = fallbackID
	}
	return Bid{
		ID:         id,
		Player:     asString(fields["player"]),
		Team:       strings.TrimSpace(asString(fields["team"])),
		Amount:     asAmount(fields["amount"]),
		Position:   ParsePosition(asString(fields["position"])),
		Timestamp:  asMillis(fields["timestamp"]),
		Resolved:   asBool(fields["resolved"]),
		AuctionKey: asString(fields["auctionKey"]),
	}
}

var logEntryKnownKeys = map[string]struct{}{
	"type": {}, "id": {}, "team": {}, "player": {}, "amount": {}, "position": {}, "timestamp": {},
}

func logEntryFromMap(fields map[string]any) LogEntry {
	out := LogEntry{
		Type:      asString(fields["type"]),
		ID:        asString(fields["id"]),
		Team:      asString(fields["team"]),
		Player:    asString(fields["player"]),
		Amount:    asAmount(fields["amount"]),
		Position:  Position(asString(fields["position"])),
		Timestamp: asMillis(fields["timestamp"]),
	}
	for key, value := range fields {
		if _, known := logEntryKnownKeys[key]; known {
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]any)
		}
		out.Extra[key] = value
	}
	return out
}

func (e LogEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Extra)+len(logEntryKnownKeys))
	for key, value := range e.Extra {
		out[key] = value
	}
	out["type"] = e.Type
	out["id"] = e.ID
	out["timestamp"] = e.Timestamp
	if e.Team != "" {
		out["team"] = e.Team
	}
	if e.Player != "" {
		out["player"] = e.Player
	}
	if e.Position != "" {
		out["position"] = e.Position
	}
	if e.Amount != 0 || e.Type == LogTypeFreeAgentSigned {
		out["amount"] = e.Amount
	}
	return sonic.ConfigStd.Marshal(out)
}

func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := sonic.ConfigStd.Unmarshal(data, &fields); err != nil {
		return err
	}
	*e = logEntryFromMap(fields)
	return nil
}

func asSlice(v any) []any {
	out, _ := v.([]any)
	return out
}

func asString(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	default:
		return ""
	}
}

func asBool(v any) bool {
	switch typed := v.(type) {
	case bool:
		return typed
	case string:
		out, _ := strconv.ParseBool(strings.TrimSpace(typed))
		return out
	case float64:
		return typed != 0
	default:
		return false
	}
}

func asFloat(v any) float64 {
	var out float64
	switch typed := v.(type) {
	case float64:
		out = typed
	case int:
		out = float64(typed)
	case int64:
		out = float64(typed)
	case json.Number:
		out, _ = typed.Float64()
	case string:
		out, _ = strconv.ParseFloat(strings.TrimSpace(typed), 64)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0
	}
	return out
}

// asAmount is asFloat clamped to non-negative values.
func asAmount(v any) float64 {
	out := asFloat(v)
	if out < 0 {
		return 0
	}
	return out
}

// asMillis reads a unix-millisecond instant; RFC 3339 strings are accepted too.
func asMillis(v any) int64 {
	if text, ok := v.(string); ok {
		text = strings.TrimSpace(text)
		if at, err := time.Parse(time.RFC3339Nano, text); err == nil {
			return at.UnixMilli()
		}
	}
	out := asFloat(v)
	if out > math.MaxInt64 || out < math.MinInt64 {
		return 0
	}
	return int64(out)
}

func asMarker(v any) *string {
	text := strings.TrimSpace(asString(v))
	if text == "" {
		return nil
	}
	return stringPtr(text)
}
