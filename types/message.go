package types

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fixitnow/fixitnow/id"
	"github.com/fixitnow/fixitnow/validator"
)

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId" db:"sender_id"`
	ReceiverID string    `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sentAt" db:"sent_at"`

	Sender   *User `json:"sender,omitempty" db:"sender,omitempty"`
	Receiver *User `json:"receiver,omitempty" db:"receiver,omitempty"`
}

type SendMessage struct {
	ReceiverID string
	Content    string

	senderID string
}

func (in *SendMessage) SetSenderID(userID string) {
	in.senderID = userID
}

func (in SendMessage) SenderID() string {
	return in.senderID
}

func (in *SendMessage) Validate() error {
	v := validator.New()

	in.Content = strings.TrimSpace(in.Content)

	if in.ReceiverID == "" {
		v.AddError("ReceiverID", "Receiver ID is required")
	} else if !id.Valid(in.ReceiverID) {
		v.AddError("ReceiverID", "Receiver ID is invalid")
	}

	if in.Content == "" {
		v.AddError("Content", "Content is required")
	}
	if utf8.RuneCountInString(in.Content) > 1000 {
		v.AddError("Content", "Content must be at most 1000 characters")
	}

	return v.AsError()
}

type ListMessages struct {
	OtherUserID string

	requesterID string
}

func (in *ListMessages) SetRequesterID(userID string) {
	in.requesterID = userID
}

func (in ListMessages) RequesterID() string {
	return in.requesterID
}

func (in *ListMessages) Validate() error {
	v := validator.New()

	if in.OtherUserID == "" {
		v.AddError("OtherUserID", "Other user ID is required")
	} else if !id.Valid(in.OtherUserID) {
		v.AddError("OtherUserID", "Other user ID is invalid")
	}

	return v.AsError()
}
