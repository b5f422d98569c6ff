package entity

import "time"

type MessageType string

const (
	MessageTypeText   MessageType = "TEXT"
	MessageTypeFile   MessageType = "FILE"
	MessageTypeSystem MessageType = "SYSTEM"
)

func MessageTypes() []string {
	return []string{"TEXT", "FILE", "SYSTEM"}
}

const DeletedMessagePlaceholder = "This message was deleted"

type Message struct {
	ID            string
	PartnershipID string
	SenderID      string
	ReceiverID    string
	Content       string
	MessageType   MessageType
	IsRead        bool
	ReadAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Conversation summarises an accepted partnership from one participant's view.
type Conversation struct {
	PartnershipID        string     `json:"partnershipId"`
	CounterpartID        string     `json:"counterpartId"`
	CounterpartName      string     `json:"counterpartName"`
	CounterpartProjectID string     `json:"counterpartProjectId"`
	CounterpartProject   string     `json:"counterpartProject"`
	LastMessage          string     `json:"lastMessage,omitempty"`
	LastMessageAt        *time.Time `json:"lastMessageAt,omitempty"`
	UnreadCount          int        `json:"unreadCount"`
}

type MessageStats struct {
	Sent     int `json:"sent"`
	Received int `json:"received"`
	Unread   int `json:"unread"`
}
