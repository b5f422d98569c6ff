package entity

import (
	"strings"
	"time"
)

type UserType string

const (
	UserTypeStartup         UserType = "STARTUP"
	UserTypeInvestor        UserType = "INVESTOR"
	UserTypeEcosystemPlayer UserType = "ECOSYSTEM_PLAYER"
	UserTypeIndividual      UserType = "INDIVIDUAL"
)

func UserTypes() []string {
	return []string{string(UserTypeStartup), string(UserTypeInvestor), string(UserTypeEcosystemPlayer), string(UserTypeIndividual)}
}

type SubscriptionTier string

const (
	SubscriptionFree    SubscriptionTier = "FREE"
	SubscriptionPremium SubscriptionTier = "PREMIUM"
)

// User is the aggregate root for identity and profile.
// Passwords are stored as bcrypt hashes in Password field.
type User struct {
	ID               string
	Email            string
	Password         string
	FirstName        string
	LastName         string
	Bio              string
	AvatarURL        string
	WalletAddress    *string
	Location         string
	Website          string
	LinkedInURL      string
	TwitterHandle    string
	UserType         UserType
	SubscriptionTier SubscriptionTier
	IsVerified       bool

	FailedLoginAttempts int
	LockedUntil         *time.Time
	LastLoginAt         *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsLocked reports whether the lockout window is still open at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// UserSession is the revocable auth state behind a JWT.
type UserSession struct {
	ID         string
	UserID     string
	Token      string
	IPAddress  string
	UserAgent  string
	IsActive   bool
	ExpiresAt  time.Time
	CreatedAt  time.Time
	LastUsedAt time.Time
}

// Valid reports whether the session may authenticate requests at now.
func (s *UserSession) Valid(now time.Time) bool {
	return s.IsActive && now.Before(s.ExpiresAt)
}
