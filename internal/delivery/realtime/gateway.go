package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (string, error)
}

// Relay fans frames and evictions out to every gateway instance. Run hands
// whatever any instance published to the local handler.
type Relay interface {
	Publish(ctx context.Context, userID string, frame Frame) error
	Evict(ctx context.Context, userID, connID string) error
	Run(ctx context.Context, h RelayHandler) error
}

// RelayHandler receives relayed traffic. Evict asks the instance to close
// any connection of userID opened before connID.
type RelayHandler interface {
	Deliver(userID string, frame Frame)
	Evict(userID, connID string)
}

// Presence records which users hold a live connection on any instance.
type Presence interface {
	Set(ctx context.Context, userID, connID string) error
	Clear(ctx context.Context, userID, connID string) error
	IsOnline(ctx context.Context, userID string) (bool, error)
}

type Config struct {
	PingInterval time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

const (
	maxInboundFrame = 4096
	redisTimeout    = 2 * time.Second
)

type Gateway struct {
	verifier TokenVerifier
	registry *Registry
	relay    Relay
	presence Presence
	cfg      Config
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

type Option func(*Gateway)

func WithRelay(r Relay) Option {
	return func(g *Gateway) { g.relay = r }
}

func WithPresence(p Presence) Option {
	return func(g *Gateway) { g.presence = p }
}

func WithRegistry(r *Registry) Option {
	return func(g *Gateway) { g.registry = r }
}

func NewGateway(verifier TokenVerifier, cfg Config, log logrus.FieldLogger, opts ...Option) *Gateway {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	g := &Gateway{
		verifier: verifier,
		registry: NewRegistry(),
		cfg:      cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are native apps; the token is the only gate.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log: log.WithField("component", "realtime"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Registry() *Registry {
	return g.registry
}

func tokenFromRequest(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

// ServeHTTP upgrades the request, authenticates it and registers the
// connection. A missing or bad token is answered with close code 4001.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Debug("websocket upgrade failed")
		return
	}

	userID, err := g.verifier.VerifyToken(r.Context(), tokenFromRequest(r))
	if err != nil {
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(CloseAuthFailed, "authentication required"),
			time.Now().Add(g.cfg.WriteTimeout))
		_ = ws.Close()
		return
	}

	c := newConn(userID, ws, g.cfg.SendBuffer)
	if old := g.registry.Register(c); old != nil {
		old.closeWith(CloseReplaced, "replaced by new connection", g.cfg.WriteTimeout)
	}
	g.evictRemote(c)
	g.markPresent(c)

	log := g.log.WithField("user_id", userID)
	log.Info("client connected")

	if data, err := json.Marshal(ConnectedFrame(userID)); err == nil {
		c.enqueue(data)
	}

	go g.writePump(c)
	go g.readPump(c, log)
}

func (g *Gateway) readPump(c *Conn, log logrus.FieldLogger) {
	defer func() {
		g.disconnect(c)
		log.Info("client disconnected")
	}()

	c.ws.SetReadLimit(maxInboundFrame)
	c.ws.SetPongHandler(func(string) error {
		c.alive.Store(true)
		g.markPresent(c)
		return nil
	})

	// Clients talk to us over HTTP; inbound frames are only drained so that
	// control frames get processed.
	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (g *Gateway) writePump(c *Conn) {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(g.cfg.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.terminate()
				return
			}
		}
	}
}

func (g *Gateway) disconnect(c *Conn) {
	if g.registry.Unregister(c) && g.presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
		defer cancel()
		if err := g.presence.Clear(ctx, c.userID, c.id); err != nil {
			g.log.WithError(err).WithField("user_id", c.userID).Warn("failed to clear presence")
		}
	}
	c.terminate()
}

// evictRemote tells the other instances to drop their connections for the
// same user.
func (g *Gateway) evictRemote(c *Conn) {
	if g.relay == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := g.relay.Evict(ctx, c.userID, c.id); err != nil {
		g.log.WithError(err).WithField("user_id", c.userID).Warn("failed to publish eviction")
	}
}

func (g *Gateway) markPresent(c *Conn) {
	if g.presence == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()
	if err := g.presence.Set(ctx, c.userID, c.id); err != nil {
		g.log.WithError(err).WithField("user_id", c.userID).Warn("failed to set presence")
	}
}

// Run drives the heartbeat and, when configured, the relay subscriber until
// ctx is cancelled. Open connections are closed on the way out.
func (g *Gateway) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		ticker := time.NewTicker(g.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				g.sweep()
			}
		}
	})

	if g.relay != nil {
		group.Go(func() error {
			return g.relay.Run(ctx, relayHandler{g})
		})
	}

	err := group.Wait()
	g.registry.Each(func(c *Conn) {
		c.closeWith(websocket.CloseGoingAway, "server shutting down", g.cfg.WriteTimeout)
	})
	return err
}

// sweep terminates connections that missed the previous ping and pings the
// rest.
func (g *Gateway) sweep() {
	g.registry.Each(func(c *Conn) {
		if !c.alive.Swap(false) {
			g.log.WithField("user_id", c.userID).Info("heartbeat missed, terminating")
			c.terminate()
			return
		}
		if err := c.ping(g.cfg.WriteTimeout); err != nil {
			c.terminate()
		}
	})
}

// SendToUser delivers frame to the user's live connection if there is one.
// Nothing is queued for offline users.
func (g *Gateway) SendToUser(ctx context.Context, userID string, frame Frame) {
	if g.relay != nil {
		err := g.relay.Publish(ctx, userID, frame)
		if err == nil {
			return
		}
		g.log.WithError(err).WithField("user_id", userID).Warn("relay publish failed, delivering locally")
	}
	g.deliverLocal(userID, frame)
}

func (g *Gateway) deliverLocal(userID string, frame Frame) bool {
	c, ok := g.registry.Get(userID)
	if !ok || c.closed() {
		return false
	}
	data, err := json.Marshal(frame)
	if err != nil {
		g.log.WithError(err).Error("failed to encode frame")
		return false
	}
	if !c.enqueue(data) {
		// A client this far behind gets dropped; it pages on reconnect.
		g.log.WithField("user_id", userID).Warn("send queue full, terminating")
		c.terminate()
		return false
	}
	return true
}

// evictLocal closes the user's connection here if a newer one was opened on
// another instance.
func (g *Gateway) evictLocal(userID, connID string) bool {
	c, ok := g.registry.Get(userID)
	if !ok || !c.supersededBy(connID) {
		return false
	}
	g.log.WithField("user_id", userID).Info("connection replaced on another instance")
	c.closeWith(CloseReplaced, "replaced by new connection", g.cfg.WriteTimeout)
	return true
}

type relayHandler struct {
	g *Gateway
}

func (h relayHandler) Deliver(userID string, frame Frame) {
	h.g.deliverLocal(userID, frame)
}

func (h relayHandler) Evict(userID, connID string) {
	h.g.evictLocal(userID, connID)
}

func (g *Gateway) NotifyMessage(ctx context.Context, userID string, msg *domain.Message) {
	g.SendToUser(ctx, userID, MessageFrame(msg))
}

func (g *Gateway) NotifyMatch(ctx context.Context, userID string, notice domain.MatchNotice) {
	g.SendToUser(ctx, userID, MatchFrame(notice))
}

// IsOnline consults shared presence when available and the local registry
// otherwise.
func (g *Gateway) IsOnline(ctx context.Context, userID string) bool {
	if g.presence != nil {
		online, err := g.presence.IsOnline(ctx, userID)
		if err == nil {
			return online
		}
		g.log.WithError(err).Warn("presence lookup failed")
	}
	_, ok := g.registry.Get(userID)
	return ok
}
