package game

import (
	"slices"

	"github.com/google/uuid"
)

// Store owns every piece of matchmaking/session state in the process:
// the connection registry, the FIFO waiting queue, and the session map.
// It is created once at startup and handed to the hub — never a global.
// Not safe for concurrent use; the hub serializes all access.
type Store struct {
	players  map[string]*Player
	queue    []string
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{
		players:  make(map[string]*Player),
		sessions: make(map[string]*Session),
	}
}

// Register creates the record for a freshly accepted connection.
func (st *Store) Register(id string) *Player {
	p := &Player{ID: id}
	st.players[id] = p
	return p
}

// Unregister drops the connection record. The caller is expected to have
// already pulled the connection out of the queue and its session.
func (st *Store) Unregister(id string) {
	delete(st.players, id)
}

func (st *Store) Player(id string) (*Player, bool) {
	p, ok := st.players[id]
	return p, ok
}

// Enqueue appends a connection to the waiting queue and assigns its
// provisional team from the queue-length parity at this moment (even slot
// A, odd slot B). The label sticks: it is what gameMatched later confirms.
// Returns the 1-based queue position and the waiting count.
func (st *Store) Enqueue(id string) (position, waiting int, err error) {
	p, ok := st.players[id]
	if !ok {
		return 0, 0, ErrUnknownConnection
	}
	if p.GameID != "" {
		return 0, 0, ErrAlreadyInSession
	}
	if slices.Contains(st.queue, id) {
		return 0, 0, ErrAlreadyQueued
	}

	if len(st.queue)%2 == 0 {
		p.Team = TeamA
	} else {
		p.Team = TeamB
	}
	st.queue = append(st.queue, id)
	return len(st.queue), len(st.queue), nil
}

// Cancel removes a connection from the queue, keeping the order of
// everyone else. Idempotent: unknown or unqueued ids are a no-op.
func (st *Store) Cancel(id string) {
	for i, q := range st.queue {
		if q == id {
			st.queue = append(st.queue[:i], st.queue[i+1:]...)
			return
		}
	}
}

// Queued reports whether the connection is currently waiting.
func (st *Store) Queued(id string) bool {
	return slices.Contains(st.queue, id)
}

// Waiting returns the current queue length.
func (st *Store) Waiting() int { return len(st.queue) }

// TryPair dequeues the two longest-waiting connections into a new session,
// strict FIFO. At most one session per call; the hub calls it once per
// enqueue, which keeps the queue draining two at a time. Returns nil when
// fewer than two connections are waiting.
func (st *Store) TryPair() *Session {
	if len(st.queue) < 2 {
		return nil
	}
	a, b := st.queue[0], st.queue[1]
	st.queue = st.queue[2:]

	sess := &Session{
		ID:      uuid.NewString(),
		State:   SessionStarting,
		Players: []string{a, b},
	}
	st.sessions[sess.ID] = sess
	st.players[a].GameID = sess.ID
	st.players[b].GameID = sess.ID
	st.players[a].Joined = false
	st.players[b].Joined = false
	return sess
}

func (st *Store) Session(id string) (*Session, bool) {
	s, ok := st.sessions[id]
	return s, ok
}

// SessionOf resolves the session a connection currently belongs to.
func (st *Store) SessionOf(connID string) (*Session, bool) {
	p, ok := st.players[connID]
	if !ok || p.GameID == "" {
		return nil, false
	}
	s, ok := st.sessions[p.GameID]
	return s, ok
}

// Activate moves a session from starting to active. Returns false if the
// session is gone or no longer starting — the stale-countdown case, which
// the caller skips silently.
func (st *Store) Activate(gameID string) bool {
	s, ok := st.sessions[gameID]
	if !ok || s.State != SessionStarting {
		return false
	}
	s.State = SessionActive
	return true
}

// RecordJoin stores a connection's initial reported state and resets its
// health. This is what makes the player visible in snapshots to others.
func (st *Store) RecordJoin(id string, pos [3]float64, rot float64) (*Player, error) {
	p, ok := st.players[id]
	if !ok {
		return nil, ErrUnknownConnection
	}
	if _, ok := st.SessionOf(id); !ok {
		return nil, ErrNoSession
	}
	p.Position = pos
	p.Rotation = rot
	p.Health = MaxHealth
	p.Joined = true
	return p, nil
}

// RecordMove overwrites a connection's reported position and rotation.
// Pure trust-and-relay: no plausibility checks.
func (st *Store) RecordMove(id string, pos [3]float64, rot float64) {
	if p, ok := st.players[id]; ok {
		p.Position = pos
		p.Rotation = rot
	}
}

// OthersJoined lists the session members other than exceptID that have
// already reported their initial state.
func (st *Store) OthersJoined(sess *Session, exceptID string) []*Player {
	var out []*Player
	for _, id := range sess.Players {
		if id == exceptID {
			continue
		}
		if p, ok := st.players[id]; ok && p.Joined {
			out = append(out, p)
		}
	}
	return out
}

// HitResult is the outcome of one damage application.
type HitResult struct {
	Target *Player
	Health int
	// Died is set only on the >0 -> 0 crossing. Further hits on a dead
	// target keep reporting health 0 without it.
	Died bool
}

// ApplyHit resolves a playerHit from sender against targetID. The target
// must be in the sender's session; anything else is ErrUnknownTarget and
// the event is dropped upstream. Health is clamped at 0.
func (st *Store) ApplyHit(senderID, targetID string, damage int) (HitResult, error) {
	sess, ok := st.SessionOf(senderID)
	if !ok {
		return HitResult{}, ErrNoSession
	}
	target, ok := st.players[targetID]
	if !ok || !sess.has(targetID) {
		return HitResult{}, ErrUnknownTarget
	}

	wasAlive := target.Health > 0
	target.Health -= damage
	if target.Health < 0 {
		target.Health = 0
	}
	return HitResult{
		Target: target,
		Health: target.Health,
		Died:   wasAlive && target.Health == 0,
	}, nil
}

// RemoveFromSession pulls a connection out of its session and tears the
// session down: sessions never continue below two members. Returns the
// session and the ids that were left in it (whom the hub still has to
// notify). ok is false when the connection wasn't in a session.
func (st *Store) RemoveFromSession(id string) (sess *Session, remaining []string, ok bool) {
	sess, ok = st.SessionOf(id)
	if !ok {
		return nil, nil, false
	}
	for i, p := range sess.Players {
		if p == id {
			sess.Players = append(sess.Players[:i], sess.Players[i+1:]...)
			break
		}
	}
	if p, ok := st.players[id]; ok {
		p.GameID = ""
		p.Joined = false
	}

	sess.State = SessionEnded
	delete(st.sessions, sess.ID)
	for _, rid := range sess.Players {
		remaining = append(remaining, rid)
		if rp, ok := st.players[rid]; ok {
			rp.GameID = ""
			rp.Joined = false
		}
	}
	return sess, remaining, true
}

// Sessions returns the number of live sessions. Test and logging helper.
func (st *Store) Sessions() int { return len(st.sessions) }
