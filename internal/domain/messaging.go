package domain

import (
	"strings"
	"time"
)

// Notification targets a user id or the MasterTarget sentinel.
type Notification struct {
	ID        string    `json:"id"`
	TargetID  string    `json:"targetId"`
	GymID     string    `json:"gymId"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Announcement is a tenant-wide broadcast.
type Announcement struct {
	ID        string    `json:"id"`
	GymID     string    `json:"gymId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ChatMessage is stored once per conversation, under ConversationKey.
type ChatMessage struct {
	ID          string     `json:"id"`
	GymID       string     `json:"gymId"`
	SenderID    string     `json:"senderId"`
	RecipientID string     `json:"recipientId"`
	Text        string     `json:"text"`
	Timestamp   time.Time  `json:"timestamp"`
	EditedAt    *time.Time `json:"editedAt,omitempty"`
}

const conversationSep = "|"

// ConversationKey is the canonical, order-independent key for a pair of users.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + conversationSep + b
}

// ConversationParticipants splits a key built by ConversationKey.
func ConversationParticipants(key string) (string, string, bool) {
	a, b, ok := strings.Cut(key, conversationSep)
	if !ok || a == "" || b == "" {
		return "", "", false
	}
	return a, b, true
}
