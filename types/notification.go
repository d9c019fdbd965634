package types

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/validator"
)

// NotificationDedupWindow collapses duplicate notification writes:
// two attempts for the same (sender, receiver, content) whose sentAt
// are within this window of each other yield a single record.
const NotificationDedupWindow = 5 * time.Second

type Notification struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId" db:"sender_id"`
	ReceiverID string    `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sentAt" db:"sent_at"`
	IsRead     bool      `json:"isRead" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`

	Sender *User `json:"sender,omitempty" db:"sender,omitempty"`
}

type CreateNotification struct {
	SenderID   string
	ReceiverID string
	Content    string
	SentAt     time.Time
}

func (in *CreateNotification) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	if !id.Valid(in.SenderID) {
		v.AddError("SenderID", "Sender ID is invalid")
	}
	if !id.Valid(in.ReceiverID) {
		v.AddError("ReceiverID", "Receiver ID is invalid")
	}
	if in.Content == "" {
		v.AddError("Content", "Content is required")
	}
	if utf8.RuneCountInString(in.Content) > 1000 {
		v.AddError("Content", "Content must be at most 1000 characters")
	}
	if in.SentAt.IsZero() {
		v.AddError("SentAt", "SentAt is required")
	}

	return v.AsError()
}

type ListNotifications struct {
	UnreadOnly bool

	receiverID string
}

func (in *ListNotifications) SetReceiverID(userID string) {
	in.receiverID = userID
}

func (in ListNotifications) ReceiverID() string {
	return in.receiverID
}

type ReadNotification struct {
	NotificationID string

	requesterID string
}

func (in *ReadNotification) SetRequesterID(userID string) {
	in.requesterID = userID
}

func (in ReadNotification) RequesterID() string {
	return in.requesterID
}

func (in *ReadNotification) Validate() error {
	v := validator.New()

	if in.NotificationID == "" {
		v.AddError("NotificationID", "Notification ID is required")
	} else if !id.Valid(in.NotificationID) {
		v.AddError("NotificationID", "Notification ID is invalid")
	}

	return v.AsError()
}

type ReadNotificationsFromSender struct {
	SenderID string

	receiverID string
}

func (in *ReadNotificationsFromSender) SetReceiverID(userID string) {
	in.receiverID = userID
}

func (in ReadNotificationsFromSender) ReceiverID() string {
	return in.receiverID
}

func (in *ReadNotificationsFromSender) Validate() error {
	v := validator.New()

	if in.SenderID == "" {
		v.AddError("SenderID", "Sender ID is required")
	} else if !id.Valid(in.SenderID) {
		v.AddError("SenderID", "Sender ID is invalid")
	}

	return v.AsError()
}
