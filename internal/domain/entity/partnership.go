package entity

import "time"

type PartnershipStatus string

const (
	PartnershipPending   PartnershipStatus = "PENDING"
	PartnershipAccepted  PartnershipStatus = "ACCEPTED"
	PartnershipRejected  PartnershipStatus = "REJECTED"
	PartnershipCancelled PartnershipStatus = "CANCELLED"
)

func PartnershipStatuses() []string {
	return []string{"PENDING", "ACCEPTED", "REJECTED", "CANCELLED"}
}

// IsActive reports whether the status blocks a new request between the same projects.
func (s PartnershipStatus) IsActive() bool {
	return s == PartnershipPending || s == PartnershipAccepted
}

// IsTerminal reports whether no further transition is allowed.
func (s PartnershipStatus) IsTerminal() bool {
	return s != PartnershipPending
}

type PartnershipType string

func PartnershipTypes() []string {
	return []string{"INVESTMENT", "TECHNICAL_INTEGRATION", "MARKETING", "ADVISORY", "STRATEGIC", "LIQUIDITY", "OTHER"}
}

// Partnership is a directional request from a requester project to a receiver project.
type Partnership struct {
	ID                 string
	RequesterID        string
	RequesterProjectID string
	ReceiverID         string
	ReceiverProjectID  string
	PartnershipType    PartnershipType
	Title              string
	Description        string
	ProposedTerms      string
	ResponseMessage    string
	Status             PartnershipStatus
	RespondedAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// Populated by list queries.
	RequesterProjectName string
	ReceiverProjectName  string
}

// IsParticipant reports whether userID is either side of the partnership.
func (p *Partnership) IsParticipant(userID string) bool {
	return p.RequesterID == userID || p.ReceiverID == userID
}

// Counterpart returns the other party's user id.
func (p *Partnership) Counterpart(userID string) string {
	if p.RequesterID == userID {
		return p.ReceiverID
	}
	return p.RequesterID
}

type PartnershipStats struct {
	TotalSent     int `json:"totalSent"`
	TotalReceived int `json:"totalReceived"`
	Pending       int `json:"pending"`
	Accepted      int `json:"accepted"`
	Rejected      int `json:"rejected"`
	Cancelled     int `json:"cancelled"`
}
