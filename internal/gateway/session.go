package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from the gateway
	maxMessageSize = 1 << 20

	// Backoff between reconnect attempts
	reconnectDelay    = 5 * time.Second
	maxReconnectDelay = 2 * time.Minute
)

// Session is the bot's outbound gateway connection. It reads event
// envelopes, decodes them, and hands each one to the handler on its own
// goroutine. The connection reconnects with backoff until the context is
// cancelled.
type Session struct {
	id      uuid.UUID
	url     string
	token   string
	handler EventHandler
}

func NewSession(gatewayURL, token string, handler EventHandler) *Session {
	return &Session{
		id:      uuid.New(),
		url:     gatewayURL,
		token:   token,
		handler: handler,
	}
}

func (s *Session) Run(ctx context.Context) error {
	delay := reconnectDelay

	for {
		err := s.connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			log.Error().Err(err).Str("sessionId", s.id.String()).Msg("Gateway connection lost")
		}

		log.Info().Dur("delay", delay).Msg("Reconnecting to gateway")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

func (s *Session) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	identify := struct {
		Op    string `json:"op"`
		Token string `json:"token"`
	}{Op: "identify", Token: s.token}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(identify); err != nil {
		return err
	}

	log.Info().Str("sessionId", s.id.String()).Msg("Connected to gateway")

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(ctx, conn, done)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("sessionId", s.id.String()).Msg("Gateway read error")
			}
			return err
		}

		s.dispatch(ctx, message)
	}
}

func (s *Session) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, []byte{})
			conn.Close()
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// dispatch decodes one envelope and fans the payload out to the handler.
// A malformed payload is logged and dropped; it never tears the session down.
func (s *Session) dispatch(ctx context.Context, message []byte) {
	var ev Event
	if err := json.Unmarshal(message, &ev); err != nil {
		log.Warn().Err(err).Msg("Failed to decode gateway envelope")
		return
	}

	switch ev.Type {
	case EventMessageCreate:
		var payload MessagePosted
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			log.Warn().Err(err).Str("type", ev.Type).Msg("Failed to decode event payload")
			return
		}
		go s.handler.OnMessagePosted(ctx, payload)

	case EventReactionAdd:
		var payload ReactionAdded
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			log.Warn().Err(err).Str("type", ev.Type).Msg("Failed to decode event payload")
			return
		}
		go s.handler.OnReactionAdded(ctx, payload)

	case EventReactionRemove:
		var payload ReactionRemoved
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			log.Warn().Err(err).Str("type", ev.Type).Msg("Failed to decode event payload")
			return
		}
		go s.handler.OnReactionRemoved(ctx, payload)

	case EventInteraction:
		var payload InteractionCreated
		if err := json.Unmarshal(ev.Data, &payload); err != nil {
			log.Warn().Err(err).Str("type", ev.Type).Msg("Failed to decode event payload")
			return
		}
		go s.handler.OnInteractionCreated(ctx, payload)

	case EventReady:
		log.Info().Str("sessionId", s.id.String()).Msg("Gateway session ready")
	}
}
