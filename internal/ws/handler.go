package ws

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/All-About-AI-YouTube/fps-game/internal/hub"
	"github.com/All-About-AI-YouTube/fps-game/internal/protocol"
)

// Handler upgrades the request and bridges the socket to the hub: a
// writer goroutine drains the outbox the hub fans out on, and the read
// loop feeds decoded events into the hub's inbox. Any read error —
// including a clean close — is the disconnect signal.
func Handler(h *hub.Hub, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// The demo client is served from the same origin; loosen
			// this for local dev with OriginPatterns if needed.
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		out := make(chan []byte, 16)
		clientID := randID(8)

		h.Inbox() <- hub.Register{ID: clientID, Outbox: out}
		defer func() { h.Inbox() <- hub.Unregister{ID: clientID} }()

		// Writer goroutine. Exits when the hub closes the outbox.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for data := range out {
				ctx, cancel := context.WithTimeout(writeCtx, 3*time.Second)
				_ = conn.Write(ctx, websocket.MessageText, data)
				cancel()
			}
			// Hub dropped us (slow consumer or shutdown); close so the
			// read loop below unblocks.
			_ = conn.Close(websocket.StatusPolicyViolation, "dropped")
		}()

		// Reader loop. No per-read deadline: an idle connection sitting
		// in the queue stays alive as long as the transport allows.
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				return
			}

			var cm protocol.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				// Best-effort relay: malformed frames are dropped, not
				// answered.
				log.Debugw("bad frame", "id", clientID, "err", err)
				continue
			}
			h.Inbox() <- hub.FromClient{ID: clientID, Msg: cm}
		}
	}
}

func randID(length int) string {
	// Short opaque ids are enough here: they only have to be unique among
	// the connections of one process.
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
