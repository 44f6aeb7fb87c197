// Package protocol defines the JSON message surface spoken over the
// per-connection websocket: one envelope for everything a client sends,
// and one struct per server event.
package protocol

import "encoding/json"

// Client -> server event names.
const (
	CJoinMatchmaking   = "joinMatchmaking"
	CCancelMatchmaking = "cancelMatchmaking"
	CPlayerJoin        = "playerJoin"
	CPlayerMove        = "playerMove"
	CPlayerShoot       = "playerShoot"
	CPlayerHit         = "playerHit"
)

// Server -> client event names.
const (
	SMatchmakingStatus = "matchmakingStatus"
	SGameMatched       = "gameMatched"
	SGameStart         = "gameStart"
	SPlayerInitialized = "playerInitialized"
	SCurrentPlayers    = "currentPlayers"
	SPlayerJoined      = "playerJoined"
	SPlayerMoved       = "playerMoved"
	SPlayerShoot       = "playerShoot"
	SHealthUpdate      = "healthUpdate"
	SPlayerDeath       = "playerDeath"
	SPlayerLeft        = "playerLeft"
	SGameEnded         = "gameEnded"
)

// ClientMessage is the single inbound envelope. Only the fields relevant
// to Type are populated; everything else stays at its zero value.
type ClientMessage struct {
	Type      string     `json:"type"`
	Position  [3]float64 `json:"position"`
	Rotation  float64    `json:"rotation"`
	Direction [3]float64 `json:"direction"`
	Velocity  float64    `json:"velocity"`
	TargetID  string     `json:"targetId"`
	Damage    int        `json:"damage"`
}

// PlayerState is the last state a connection reported, as other clients
// see it in currentPlayers / playerJoined.
type PlayerState struct {
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Rotation float64    `json:"rotation"`
	Health   int        `json:"health"`
	Team     string     `json:"team"`
}

// MatchedPlayer is the id+team pair announced in gameMatched.
type MatchedPlayer struct {
	ID   string `json:"id"`
	Team string `json:"team"`
}

type MatchmakingStatus struct {
	Type           string `json:"type"`
	Position       int    `json:"position"`
	PlayersWaiting int    `json:"playersWaiting"`
}

type GameMatched struct {
	Type      string          `json:"type"`
	GameID    string          `json:"gameId"`
	Countdown int             `json:"countdown"`
	Players   []MatchedPlayer `json:"players"`
}

type GameStart struct {
	Type string `json:"type"`
}

type PlayerInitialized struct {
	Type     string     `json:"type"`
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Rotation float64    `json:"rotation"`
	Health   int        `json:"health"`
	Team     string     `json:"team"`
}

type CurrentPlayers struct {
	Type    string                 `json:"type"`
	Players map[string]PlayerState `json:"players"`
}

type PlayerJoined struct {
	Type     string     `json:"type"`
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Rotation float64    `json:"rotation"`
	Health   int        `json:"health"`
	Team     string     `json:"team"`
}

type PlayerMoved struct {
	Type     string     `json:"type"`
	ID       string     `json:"id"`
	Position [3]float64 `json:"position"`
	Rotation float64    `json:"rotation"`
}

type PlayerShot struct {
	Type      string     `json:"type"`
	ID        string     `json:"id"`
	Position  [3]float64 `json:"position"`
	Direction [3]float64 `json:"direction"`
	Velocity  float64    `json:"velocity"`
}

type HealthUpdate struct {
	Type   string `json:"type"`
	ID     string `json:"id"`
	Health int    `json:"health"`
}

type PlayerDeath struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	KillerID string `json:"killerId"`
}

type PlayerLeft struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type GameEnded struct {
	Type     string `json:"type"`
	Reason   string `json:"reason"`
	WinnerID string `json:"winnerId"`
}

// ReasonOpponentLeft is the only teardown reason a client currently sees.
const ReasonOpponentLeft = "opponent_left"

// Encode marshals an outbound event. The structs above cannot fail to
// marshal, so the error is discarded the same way the write path discards
// send errors.
func Encode(v any) []byte {
	data, _ := json.Marshal(v)
	return data
}

// EventType peeks at the type field of an encoded message without
// decoding the rest. Returns "" for malformed input.
func EventType(data []byte) string {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Type
}
