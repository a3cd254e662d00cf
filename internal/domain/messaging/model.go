package messaging

import (
	"time"

	"github.com/google/uuid"
)

// Message is a note from a patient to the assistant doctor on their latest
// admission. The recipient is resolved server-side at send time.
type Message struct {
	ID              uuid.UUID  `json:"id"`
	SenderUserID    uuid.UUID  `json:"sender_user_id"`
	RecipientUserID uuid.UUID  `json:"recipient_user_id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	Subject         string     `json:"subject"`
	Body            string     `json:"body"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Read reports whether the recipient has opened the message.
func (m *Message) Read() bool {
	return m.ReadAt != nil
}

// InboxGroup is one sender's messages in a recipient's inbox, newest first.
type InboxGroup struct {
	SenderUserID    uuid.UUID  `json:"sender_user_id"`
	PatientID       uuid.UUID  `json:"patient_id"`
	PatientName     string     `json:"patient_name"`
	Messages        []*Message `json:"messages"`
	UnreadCount     int        `json:"unread_count"`
	LatestMessageAt time.Time  `json:"latest_message_at"`
}
