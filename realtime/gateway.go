package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/fixitnow/fixitnow/auth"
	"github.com/fixitnow/fixitnow/errs"
	"github.com/fixitnow/fixitnow/metrics"
	"github.com/fixitnow/fixitnow/presence"
	"github.com/fixitnow/fixitnow/types"
)

const (
	keepaliveInterval = time.Second * 30
	sendsPerMinute    = 60
)

// MessageSender is the slice of the service the gateway drives.
type MessageSender interface {
	SendMessage(ctx context.Context, in types.SendMessage) (types.Message, error)
}

// Subscriber hands out per-user queue subscriptions.
type Subscriber interface {
	SubscribeMessages(userID string, fn func(types.Message)) (func() error, error)
	SubscribeNotifications(userID string, fn func(types.Notification)) (func() error, error)
}

// Gateway upgrades HTTP requests to live-channel sessions and bridges
// broker deliveries onto them.
type Gateway struct {
	Sender      MessageSender
	Subscriber  Subscriber
	Presence    *presence.Tracker
	Interceptor *Interceptor
	Logger      *slog.Logger
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.Logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sess := newSession(conn, sendsPerMinute)
	defer g.teardown(sess)

	go g.keepalive(ctx, cancel, conn)

	for {
		var f Frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return
		}
		g.handleFrame(ctx, sess, f)
	}
}

func (g *Gateway) keepalive(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	t := time.NewTicker(keepaliveInterval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				cancel()
				return
			}
		}
	}
}

func (g *Gateway) teardown(sess *session) {
	for _, err := range sess.unsubscribeAll() {
		g.Logger.Warn("live channel unsubscribe failed", "error", err)
	}

	if usr, ok := sess.principal(); ok {
		g.Presence.Disconnect(usr.ID)
		metrics.OnlineUsers.Dec()
	}
}

func (g *Gateway) handleFrame(ctx context.Context, sess *session, f Frame) {
	switch f.Type {
	case FrameConnect:
		g.handleConnect(ctx, sess, f)
	case FrameSubscribe:
		g.handleSubscribe(ctx, sess, f)
	case FrameSend:
		g.handleSend(ctx, sess, f)
	default:
		g.writeError(ctx, sess, "unsupported frame type")
	}
}

// handleConnect attaches a principal when the frame authenticates.
// Credential problems do not reject the connection; an unauthenticated
// session simply cannot subscribe or send.
func (g *Gateway) handleConnect(ctx context.Context, sess *session, f Frame) {
	g.authenticate(ctx, sess, f)

	if err := sess.writeFrame(ctx, Frame{Type: FrameConnected}); err != nil {
		g.Logger.Warn("live channel write failed", "frame", FrameConnected, "error", err)
	}
}

func (g *Gateway) handleSubscribe(ctx context.Context, sess *session, f Frame) {
	usr, ok := g.authenticate(ctx, sess, f)
	if !ok {
		g.writeError(ctx, sess, "authentication required to subscribe")
		return
	}

	var unsub func() error
	var err error
	switch f.Destination {
	case DestQueueMessages:
		unsub, err = g.Subscriber.SubscribeMessages(usr.ID, func(msg types.Message) {
			g.deliver(sess, FrameMessage, DestQueueMessages, msg)
		})
	case DestQueueNotifications:
		unsub, err = g.Subscriber.SubscribeNotifications(usr.ID, func(n types.Notification) {
			g.deliver(sess, FrameNotification, DestQueueNotifications, n)
		})
	default:
		g.writeError(ctx, sess, "unknown destination")
		return
	}
	if err != nil {
		g.Logger.Error("live channel subscribe failed", "destination", f.Destination, "error", err)
		g.writeError(ctx, sess, "subscription failed")
		return
	}

	if !sess.addSubscription(f.Destination, unsub) {
		// Already subscribed; drop the duplicate.
		if err := unsub(); err != nil {
			g.Logger.Warn("live channel unsubscribe failed", "error", err)
		}
	}
}

func (g *Gateway) handleSend(ctx context.Context, sess *session, f Frame) {
	usr, ok := g.authenticate(ctx, sess, f)
	if !ok {
		g.writeError(ctx, sess, "authentication required to send")
		return
	}

	if f.Destination != DestSendMessage {
		g.writeError(ctx, sess, "unknown destination")
		return
	}

	if !sess.limiter.Allow() {
		g.writeError(ctx, sess, "sending too fast, slow down")
		return
	}

	var body struct {
		ReceiverID string `json:"receiverId"`
		Content    string `json:"content"`
	}
	if err := json.Unmarshal(f.Body, &body); err != nil {
		g.writeError(ctx, sess, "malformed send body")
		return
	}

	_, err := g.Sender.SendMessage(auth.ContextWithUser(ctx, usr), types.SendMessage{
		ReceiverID: body.ReceiverID,
		Content:    body.Content,
	})
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			g.writeError(ctx, sess, e.Message)
			return
		}
		g.Logger.Error("live channel send failed", "error", err)
		g.writeError(ctx, sess, "could not send message")
	}
}

// authenticate resolves the session principal, preferring the one
// already attached and falling back to the frame's own credential.
// Presence and the online gauge track the principal, not the connect
// frame: a session counts exactly once, on whichever frame first
// authenticates it, and teardown undoes exactly that.
func (g *Gateway) authenticate(ctx context.Context, sess *session, f Frame) (types.User, bool) {
	if usr, ok := sess.principal(); ok {
		return usr, true
	}

	usr, ok := g.Interceptor.Principal(ctx, f)
	if !ok {
		return types.User{}, false
	}

	if sess.setPrincipal(usr) {
		g.Presence.Connect(usr.ID)
		metrics.OnlineUsers.Inc()
	}
	return usr, true
}

// deliver pushes a broker payload down the websocket. Callbacks run on
// broker goroutines, so the write uses its own deadline rather than
// the read loop's context.
func (g *Gateway) deliver(sess *session, typ FrameType, destination string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		g.Logger.Error("live channel payload marshal failed", "frame", typ, "error", err)
		return
	}

	f := Frame{Type: typ, Destination: destination, Body: body}
	if err := sess.writeFrame(context.Background(), f); err != nil {
		g.Logger.Warn("live channel write failed", "frame", typ, "error", err)
	}
}

func (g *Gateway) writeError(ctx context.Context, sess *session, message string) {
	if err := sess.writeFrame(ctx, errorFrame(message)); err != nil {
		g.Logger.Warn("live channel write failed", "frame", FrameError, "error", err)
	}
}
