// Package realtime implements the live channel: a websocket gateway
// speaking a small JSON frame protocol with per-frame bearer
// authentication and per-user queue subscriptions.
package realtime

import (
	"encoding/json"
	"strings"
)

type FrameType string

const (
	// Client to server.
	FrameConnect   FrameType = "connect"
	FrameSubscribe FrameType = "subscribe"
	FrameSend      FrameType = "send"

	// Server to client.
	FrameConnected    FrameType = "connected"
	FrameMessage      FrameType = "message"
	FrameNotification FrameType = "notification"
	FrameError        FrameType = "error"
)

// Destinations a session can subscribe to or send at.
const (
	DestQueueMessages      = "/queue/messages"
	DestQueueNotifications = "/queue/notifications"
	DestSendMessage        = "chat.sendMessage"
)

// Frame is the unit of the live-channel protocol. Headers carry frame
// metadata such as the Authorization credential; Body is
// destination-specific JSON.
type Frame struct {
	Type        FrameType         `json:"type"`
	Headers     map[string]string `json:"headers,omitempty"`
	Destination string            `json:"destination,omitempty"`
	Body        json.RawMessage   `json:"body,omitempty"`
}

// BearerToken extracts the bearer credential from the frame's
// Authorization header, if any.
func (f Frame) BearerToken() (string, bool) {
	raw, ok := f.Headers["Authorization"]
	if !ok {
		return "", false
	}

	const prefix = "Bearer "
	if len(raw) <= len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(raw[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}

func errorFrame(message string) Frame {
	body, _ := json.Marshal(map[string]string{"message": message})
	return Frame{Type: FrameError, Body: body}
}
