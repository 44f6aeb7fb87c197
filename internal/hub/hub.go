// Package hub runs the one event loop of the relay server. Every inbound
// client event, every disconnect, and every countdown firing arrives as a
// message on the inbox and runs to completion before the next one, so the
// store needs no locks.
package hub

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/All-About-AI-YouTube/fps-game/internal/game"
	"github.com/All-About-AI-YouTube/fps-game/internal/protocol"
)

type HubMsg interface{ isHubMsg() }

// Register announces a freshly accepted connection and the channel the
// transport drains for its outbound frames.
type Register struct {
	ID     string
	Outbox chan []byte
}

// Unregister is the implicit disconnect event: queue removal, session
// teardown and registry cleanup all hang off it.
type Unregister struct {
	ID string
}

// FromClient carries one decoded client event into the loop.
type FromClient struct {
	ID  string
	Msg protocol.ClientMessage
}

// GetState reflects loop-internal counters without data races. Test-only.
type GetState struct {
	Reply chan View
}

type Shutdown struct{}

// countdownFired is posted back into the inbox by a session's start timer.
type countdownFired struct {
	GameID string
}

func (Register) isHubMsg()       {}
func (Unregister) isHubMsg()     {}
func (FromClient) isHubMsg()     {}
func (GetState) isHubMsg()       {}
func (Shutdown) isHubMsg()       {}
func (countdownFired) isHubMsg() {}

type View struct {
	NumClients  int
	NumWaiting  int
	NumSessions int
}

type Hub struct {
	inbox     chan HubMsg
	store     *game.Store
	outboxes  map[string]chan []byte
	timers    map[string]*time.Timer
	countdown time.Duration
	log       *zap.SugaredLogger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewHub starts the loop. countdown is the starting->active delay
// announced to clients in gameMatched.
func NewHub(parent context.Context, countdown time.Duration, log *zap.SugaredLogger) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:     make(chan HubMsg, 64),
		store:     game.NewStore(),
		outboxes:  make(map[string]chan []byte),
		timers:    make(map[string]*time.Timer),
		countdown: countdown,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case Register:
				h.store.Register(msg.ID)
				h.outboxes[msg.ID] = msg.Outbox
				h.log.Infow("connection open", "id", msg.ID)

			case Unregister:
				h.handleDisconnect(msg.ID)

			case FromClient:
				h.dispatch(msg.ID, msg.Msg)

			case countdownFired:
				h.handleCountdown(msg.GameID)

			case GetState:
				msg.Reply <- View{
					NumClients:  len(h.outboxes),
					NumWaiting:  h.store.Waiting(),
					NumSessions: h.store.Sessions(),
				}

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

// dispatch routes one client event. Events that need a session are
// dropped silently when the sender has none; a misbehaving connection
// must never affect anyone else.
func (h *Hub) dispatch(id string, msg protocol.ClientMessage) {
	switch msg.Type {
	case protocol.CJoinMatchmaking:
		h.handleJoinMatchmaking(id)

	case protocol.CCancelMatchmaking:
		h.store.Cancel(id)

	case protocol.CPlayerJoin:
		h.handlePlayerJoin(id, msg)

	case protocol.CPlayerMove:
		sess, ok := h.store.SessionOf(id)
		if !ok {
			return
		}
		h.store.RecordMove(id, msg.Position, msg.Rotation)
		h.sendToOthers(sess, id, protocol.Encode(protocol.PlayerMoved{
			Type:     protocol.SPlayerMoved,
			ID:       id,
			Position: msg.Position,
			Rotation: msg.Rotation,
		}))

	case protocol.CPlayerShoot:
		sess, ok := h.store.SessionOf(id)
		if !ok {
			return
		}
		h.sendToOthers(sess, id, protocol.Encode(protocol.PlayerShot{
			Type:      protocol.SPlayerShoot,
			ID:        id,
			Position:  msg.Position,
			Direction: msg.Direction,
			Velocity:  msg.Velocity,
		}))

	case protocol.CPlayerHit:
		h.handlePlayerHit(id, msg)

	default:
		h.log.Debugw("unknown event", "id", id, "type", msg.Type)
	}
}

func (h *Hub) handleJoinMatchmaking(id string) {
	pos, waiting, err := h.store.Enqueue(id)
	if err != nil {
		h.log.Debugw("enqueue refused", "id", id, "err", err)
		return
	}
	h.sendTo(id, protocol.Encode(protocol.MatchmakingStatus{
		Type:           protocol.SMatchmakingStatus,
		Position:       pos,
		PlayersWaiting: waiting,
	}))

	sess := h.store.TryPair()
	if sess == nil {
		return
	}

	players := make([]protocol.MatchedPlayer, 0, len(sess.Players))
	for _, pid := range sess.Players {
		p, _ := h.store.Player(pid)
		players = append(players, protocol.MatchedPlayer{ID: pid, Team: string(p.Team)})
	}
	matched := protocol.Encode(protocol.GameMatched{
		Type:      protocol.SGameMatched,
		GameID:    sess.ID,
		Countdown: int(h.countdown / time.Second),
		Players:   players,
	})
	h.sendToSession(sess, matched)
	h.log.Infow("match created", "game", sess.ID, "players", sess.Players)

	// The timer only posts a message; the handler re-checks that the
	// session still exists, so a fire after teardown is a no-op.
	gameID := sess.ID
	h.timers[gameID] = time.AfterFunc(h.countdown, func() {
		select {
		case h.inbox <- countdownFired{GameID: gameID}:
		case <-h.ctx.Done():
		}
	})
}

func (h *Hub) handleCountdown(gameID string) {
	delete(h.timers, gameID)
	if !h.store.Activate(gameID) {
		// Torn down during the countdown.
		return
	}
	sess, _ := h.store.Session(gameID)
	h.sendToSession(sess, protocol.Encode(protocol.GameStart{Type: protocol.SGameStart}))
	h.log.Infow("session active", "game", gameID)
}

func (h *Hub) handlePlayerJoin(id string, msg protocol.ClientMessage) {
	sess, ok := h.store.SessionOf(id)
	if !ok {
		return
	}
	p, err := h.store.RecordJoin(id, msg.Position, msg.Rotation)
	if err != nil {
		return
	}

	h.sendTo(id, protocol.Encode(protocol.PlayerInitialized{
		Type:     protocol.SPlayerInitialized,
		ID:       id,
		Position: p.Position,
		Rotation: p.Rotation,
		Health:   p.Health,
		Team:     string(p.Team),
	}))

	current := make(map[string]protocol.PlayerState)
	for _, other := range h.store.OthersJoined(sess, id) {
		current[other.ID] = protocol.PlayerState{
			ID:       other.ID,
			Position: other.Position,
			Rotation: other.Rotation,
			Health:   other.Health,
			Team:     string(other.Team),
		}
	}
	h.sendTo(id, protocol.Encode(protocol.CurrentPlayers{
		Type:    protocol.SCurrentPlayers,
		Players: current,
	}))

	h.sendToOthers(sess, id, protocol.Encode(protocol.PlayerJoined{
		Type:     protocol.SPlayerJoined,
		ID:       id,
		Position: p.Position,
		Rotation: p.Rotation,
		Health:   p.Health,
		Team:     string(p.Team),
	}))
}

func (h *Hub) handlePlayerHit(id string, msg protocol.ClientMessage) {
	res, err := h.store.ApplyHit(id, msg.TargetID, msg.Damage)
	if err != nil {
		// Unknown target, foreign session, no session: best-effort
		// relay drops it without telling the sender.
		return
	}
	sess, _ := h.store.SessionOf(id)
	h.sendToSession(sess, protocol.Encode(protocol.HealthUpdate{
		Type:   protocol.SHealthUpdate,
		ID:     res.Target.ID,
		Health: res.Health,
	}))
	if res.Died {
		h.sendToSession(sess, protocol.Encode(protocol.PlayerDeath{
			Type:     protocol.SPlayerDeath,
			ID:       res.Target.ID,
			KillerID: id,
		}))
		h.log.Infow("player death", "game", sess.ID, "target", res.Target.ID, "killer", id)
	}
}

func (h *Hub) handleDisconnect(id string) {
	h.store.Cancel(id)

	if sess, ok := h.store.SessionOf(id); ok {
		h.sendToOthers(sess, id, protocol.Encode(protocol.PlayerLeft{
			Type: protocol.SPlayerLeft,
			ID:   id,
		}))
		_, remaining, _ := h.store.RemoveFromSession(id)
		if t, ok := h.timers[sess.ID]; ok {
			t.Stop()
			delete(h.timers, sess.ID)
		}
		if len(remaining) == 1 {
			h.sendTo(remaining[0], protocol.Encode(protocol.GameEnded{
				Type:     protocol.SGameEnded,
				Reason:   protocol.ReasonOpponentLeft,
				WinnerID: remaining[0],
			}))
		}
		h.log.Infow("session ended", "game", sess.ID, "left", id)
	}

	h.store.Unregister(id)
	if ch, ok := h.outboxes[id]; ok {
		close(ch)
		delete(h.outboxes, id)
	}
	h.log.Infow("connection closed", "id", id)
}

// sendTo delivers one frame, fire-and-forget. A full outbox means the
// consumer stopped draining; closing it makes the transport tear the
// connection down, which comes back to us as a normal Unregister.
func (h *Hub) sendTo(id string, data []byte) {
	ch, ok := h.outboxes[id]
	if !ok {
		return
	}
	select {
	case ch <- data:
	default:
		close(ch)
		delete(h.outboxes, id)
		h.log.Warnw("dropping slow connection", "id", id)
	}
}

func (h *Hub) sendToSession(sess *game.Session, data []byte) {
	for _, id := range sess.Players {
		h.sendTo(id, data)
	}
}

func (h *Hub) sendToOthers(sess *game.Session, exceptID string, data []byte) {
	for _, id := range sess.Players {
		if id != exceptID {
			h.sendTo(id, data)
		}
	}
}

func (h *Hub) shutdown() {
	for id, t := range h.timers {
		t.Stop()
		delete(h.timers, id)
	}
	for id, ch := range h.outboxes {
		close(ch)
		delete(h.outboxes, id)
	}
	h.cancel()
}
