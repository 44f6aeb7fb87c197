// Package game holds the server-side view of a match: connection records,
// the matchmaking queue, and two-player sessions. It is pure state — no
// transport, no timers — so the hub can drive it from a single goroutine.
package game

import "errors"

var ErrAlreadyQueued = errors.New("connection already waiting")
var ErrAlreadyInSession = errors.New("connection already in a session")
var ErrNoSession = errors.New("connection not in a session")
var ErrUnknownTarget = errors.New("unknown target")
var ErrUnknownConnection = errors.New("unknown connection")

type Team string

const (
	TeamA Team = "A"
	TeamB Team = "B"
)

// MaxHealth is what every player (re)spawns with on playerJoin.
const MaxHealth = 100

type SessionState string

const (
	SessionStarting SessionState = "starting"
	SessionActive   SessionState = "active"
	SessionEnded    SessionState = "ended"
)

// Player is the mutable state associated with one live connection.
// Position and rotation are client-reported and never validated; health
// is only ever changed server-side.
type Player struct {
	ID       string
	Position [3]float64
	Rotation float64
	Health   int
	Team     Team
	GameID   string
	// Joined flips once the client has sent its initial state for the
	// current session. Players that haven't are excluded from the
	// currentPlayers snapshot sent to a joining opponent.
	Joined bool
}

// Session is a paired two-player match. Players holds connection ids in
// dequeue order and only shrinks; the session is removed outright when it
// drops below two members.
type Session struct {
	ID      string
	State   SessionState
	Players []string
}

func (s *Session) has(id string) bool {
	for _, p := range s.Players {
		if p == id {
			return true
		}
	}
	return false
}
