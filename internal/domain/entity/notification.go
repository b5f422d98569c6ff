package entity

import "time"

type NotificationType string

const (
	NotificationPartnershipRequest   NotificationType = "PARTNERSHIP_REQUEST"
	NotificationPartnershipAccepted  NotificationType = "PARTNERSHIP_ACCEPTED"
	NotificationPartnershipRejected  NotificationType = "PARTNERSHIP_REJECTED"
	NotificationPartnershipCancelled NotificationType = "PARTNERSHIP_CANCELLED"
	NotificationNewMessage           NotificationType = "NEW_MESSAGE"
	NotificationSystem               NotificationType = "SYSTEM"
)

type Notification struct {
	ID        string
	UserID    string
	Type      NotificationType
	Title     string
	Message   string
	Data      map[string]any
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
