// Package gateway pushes live fragments and auth-state changes to browsers
// over socket.io. The public page connects to /web and the dashboard to
// /office; office sockets need a live session cookie.
package gateway

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"

	"github.com/ummachristians-netizen/umma-christians/internal/modules/auth/gate"
	sessionpkg "github.com/ummachristians-netizen/umma-christians/internal/pkg/session"
)

const (
	NamespaceWeb    = "/web"
	NamespaceOffice = "/office"

	EventConnect   = "GATEWAY_CONNECT"
	EventFragment  = "FRAGMENT"
	EventAuthState = "AUTH_STATE"
)

// Message is the envelope queued for delivery.
type Message struct {
	Event     string
	Payload   interface{}
	Code      *int
	Namespace string
	// Room limits delivery to one browser session; empty means everyone.
	Room string
}

type gatewayPayload struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	Code *int        `json:"code,omitempty"`
}

// Fragment replaces the inner HTML of the element with id Target.
type Fragment struct {
	Target string `json:"target"`
	HTML   string `json:"html"`
}

type authStatePayload struct {
	State gate.State `json:"state"`
}

// SessionResolver finds the office session behind a handshake's Cookie
// header.
type SessionResolver interface {
	ResolveCookieHeader(ctx context.Context, header string) (*sessionpkg.Session, error)
}

type clientMeta struct {
	sid string
	ns  string
}

// Hub owns the socket.io server and remembers the latest fragment per
// target so late joiners start from current data.
type Hub struct {
	mu sync.RWMutex

	sidNS     map[string]string
	nsCount   map[string]int
	fragments map[string]map[string]Fragment

	broadcast  chan Message
	register   chan clientMeta
	unregister chan clientMeta

	sessions SessionResolver
	logger   *zap.Logger
	sio      *socketio.Server
}

func NewHub(sessions SessionResolver, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		sidNS:      make(map[string]string),
		nsCount:    make(map[string]int),
		fragments:  make(map[string]map[string]Fragment),
		broadcast:  make(chan Message, 256),
		register:   make(chan clientMeta, 256),
		unregister: make(chan clientMeta, 256),
		sessions:   sessions,
		logger:     logger,
		sio:        socketio.NewServer(nil, nil),
	}
	h.registerNamespaces()
	return h
}

// SessionRoom is the room every socket of one browser session joins.
func SessionRoom(sessionID string) socketio.Room {
	return socketio.Room("session:" + sessionID)
}

func (h *Hub) registerNamespaces() {
	webNS := h.sio.Of(NamespaceWeb, nil)
	_ = webNS.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		if sess := h.resolve(client); sess != nil {
			client.Join(SessionRoom(sess.ID))
		}
		h.accept(client, NamespaceWeb)
	})

	officeNS := h.sio.Of(NamespaceOffice, nil)
	_ = officeNS.On("connection", func(args ...any) {
		client, ok := args[0].(*socketio.Socket)
		if !ok {
			return
		}
		sess := h.resolve(client)
		if sess == nil {
			_ = client.Emit("message", gatewayMessageFormat(EventAuthState, authStatePayload{State: gate.SignedOut}, nil))
			client.Disconnect(true)
			return
		}
		client.Join(SessionRoom(sess.ID))
		h.accept(client, NamespaceOffice)
	})
}

func (h *Hub) accept(client *socketio.Socket, ns string) {
	sid := string(client.Id())
	h.register <- clientMeta{sid: sid, ns: ns}
	_ = client.Emit("message", gatewayMessageFormat(EventConnect, "WebSocket connected", nil))
	for _, f := range h.Latest(ns) {
		_ = client.Emit("message", gatewayMessageFormat(EventFragment, f, nil))
	}

	_ = client.On("disconnect", func(_ ...any) {
		h.unregister <- clientMeta{sid: sid, ns: ns}
	})
}

func (h *Hub) resolve(client *socketio.Socket) *sessionpkg.Session {
	if h.sessions == nil {
		return nil
	}
	handshake := client.Handshake()
	if handshake == nil {
		return nil
	}
	sess, err := h.sessions.ResolveCookieHeader(context.Background(), firstValueFromMultiMap(handshake.Headers, "cookie"))
	if err != nil {
		h.logger.Warn("gateway session lookup failed", zap.Error(err))
		return nil
	}
	return sess
}

func firstValueFromMultiMap(values map[string][]string, key string) string {
	if len(values) == 0 {
		return ""
	}
	for k, list := range values {
		if !strings.EqualFold(strings.TrimSpace(k), key) || len(list) == 0 {
			continue
		}
		v := strings.TrimSpace(list[0])
		if v != "" {
			return v
		}
	}
	return ""
}

// Run delivers queued messages until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) registerClient(c clientMeta) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.sidNS[c.sid]; ok {
		return
	}
	h.sidNS[c.sid] = c.ns
	h.nsCount[c.ns]++
}

func (h *Hub) unregisterClient(c clientMeta) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ns, ok := h.sidNS[c.sid]
	if !ok {
		return
	}
	delete(h.sidNS, c.sid)
	if h.nsCount[ns] > 0 {
		h.nsCount[ns]--
	}
}

func gatewayMessageFormat(event string, payload interface{}, code *int) gatewayPayload {
	return gatewayPayload{
		Type: event,
		Data: payload,
		Code: code,
	}
}

func (h *Hub) deliver(msg Message) {
	if f, ok := msg.Payload.(Fragment); ok && msg.Event == EventFragment && msg.Room == "" {
		h.remember(msg.Namespace, f)
	}
	nsp := h.sio.Of(msg.Namespace, nil)
	payload := gatewayMessageFormat(msg.Event, msg.Payload, msg.Code)
	if msg.Room != "" {
		_ = nsp.To(socketio.Room(msg.Room)).Emit("message", payload)
		return
	}
	_ = nsp.Emit("message", payload)
}

func (h *Hub) remember(ns string, f Fragment) {
	h.mu.Lock()
	defer h.mu.Unlock()
	byTarget, ok := h.fragments[ns]
	if !ok {
		byTarget = make(map[string]Fragment)
		h.fragments[ns] = byTarget
	}
	byTarget[f.Target] = f
}

// Latest returns the remembered fragment of every target in ns.
func (h *Hub) Latest(ns string) []Fragment {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Fragment, 0, len(h.fragments[ns]))
	for _, f := range h.fragments[ns] {
		out = append(out, f)
	}
	return out
}

// Broadcast queues msg for delivery.
func (h *Hub) Broadcast(msg Message) {
	h.broadcast <- msg
}

// PushFragment sends f to every socket in ns.
func (h *Hub) PushFragment(ns string, f Fragment) {
	h.Broadcast(Message{Event: EventFragment, Payload: f, Namespace: ns})
}

// PushSessionFragment sends f to the sockets of one browser session in ns.
// Session fragments are never replayed to other sockets.
func (h *Hub) PushSessionFragment(ns, sessionID string, f Fragment) {
	h.Broadcast(Message{Event: EventFragment, Payload: f, Namespace: ns, Room: string(SessionRoom(sessionID))})
}

// PushAuthState tells every socket of one browser session that it signed
// in or out.
func (h *Hub) PushAuthState(sessionID string, state gate.State) {
	room := string(SessionRoom(sessionID))
	payload := authStatePayload{State: state}
	h.Broadcast(Message{Event: EventAuthState, Payload: payload, Namespace: NamespaceOffice, Room: room})
	h.Broadcast(Message{Event: EventAuthState, Payload: payload, Namespace: NamespaceWeb, Room: room})
}

// ClientCount returns the number of connected clients in ns, or in all
// namespaces when ns is empty.
func (h *Hub) ClientCount(ns string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if ns == "" {
		return len(h.sidNS)
	}
	return h.nsCount[ns]
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}

// RegisterRoutes mounts socket.io.
func RegisterRoutes(r gin.IRouter, hub *Hub) {
	handler := gin.WrapH(hub.Handler())
	r.Any("/socket.io", handler)
	r.Any("/socket.io/*any", handler)
}
