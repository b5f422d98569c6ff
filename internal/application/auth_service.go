package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/internal/domain/entity"
	repo "github.com/synqit/synqit-backend/internal/domain/repository"
	"github.com/synqit/synqit-backend/pkg/apperror"
	"github.com/synqit/synqit-backend/pkg/helpers"
	"github.com/synqit/synqit-backend/pkg/mailer"
	mailtpl "github.com/synqit/synqit-backend/pkg/mailer/templates"
	"github.com/synqit/synqit-backend/pkg/validation"
)

// AuthPolicy holds the tunables of the auth flow.
type AuthPolicy struct {
	MaxFailedAttempts int
	LockoutDuration   time.Duration
	SessionCacheTTL   time.Duration
	VerifyCodeTTL     time.Duration
	ResetTokenTTL     time.Duration
}

func DefaultAuthPolicy() AuthPolicy {
	return AuthPolicy{
		MaxFailedAttempts: 5,
		LockoutDuration:   30 * time.Minute,
		SessionCacheTTL:   5 * time.Minute,
		VerifyCodeTTL:     24 * time.Hour,
		ResetTokenTTL:     30 * time.Minute,
	}
}

type AuthService struct {
	Users    repo.UserRepository
	Sessions repo.SessionRepository
	JWT      *helpers.JWTManager
	Cache    Cache
	Mail     JobPublisher
	Logger   *logrus.Logger
	Policy   AuthPolicy
	Branding mailtpl.Branding
	// ResetPasswordURL receives ?token=<t> in reset emails.
	ResetPasswordURL string
	Now              func() time.Time
}

func NewAuthService(users repo.UserRepository, sessions repo.SessionRepository, jwt *helpers.JWTManager, cache Cache, mail JobPublisher, logger *logrus.Logger, policy AuthPolicy) *AuthService {
	if logger == nil {
		logger = helpers.NewDiscardLogger()
	}
	return &AuthService{
		Users:    users,
		Sessions: sessions,
		JWT:      jwt,
		Cache:    cache,
		Mail:     mail,
		Logger:   logger,
		Policy:   policy,
		Now:      time.Now,
	}
}

type TokenPair struct {
	SessionID          string
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type AuthResult struct {
	User   *entity.User
	Tokens TokenPair
}

// ClientInfo describes where a session was opened from.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID           string                  `json:"userId"`
	Email            string                  `json:"email"`
	UserType         entity.UserType         `json:"userType"`
	SubscriptionTier entity.SubscriptionTier `json:"subscriptionTier"`
	SessionID        string                  `json:"sessionId"`
	ExpiresAt        time.Time               `json:"expiresAt"`
}

type RegisterInput struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	UserType      entity.UserType
	WalletAddress string
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if err := validation.Password(in.Password); err != nil {
		return nil, apperror.BadRequest("password does not meet the password policy")
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	var wallet *string
	if w := strings.TrimSpace(in.WalletAddress); w != "" {
		if _, err := s.Users.GetByWalletAddress(ctx, w); err == nil {
			return nil, apperror.Conflict("wallet address already registered")
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Internal(err)
		}
		wallet = &w
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	userType := in.UserType
	if userType == "" {
		userType = entity.UserTypeStartup
	}
	u := &entity.User{
		Email:            email,
		Password:         hash,
		FirstName:        strings.TrimSpace(in.FirstName),
		LastName:         strings.TrimSpace(in.LastName),
		WalletAddress:    wallet,
		UserType:         userType,
		SubscriptionTier: entity.SubscriptionFree,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, apperror.Conflict("email or wallet address already registered")
		}
		return nil, apperror.Internal(err)
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")

	s.sendVerification(ctx, u)

	tokens, err := s.issueSession(ctx, u, client)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: u, Tokens: tokens}, nil
}

// Login never reveals whether the email exists. After MaxFailedAttempts
// consecutive bad passwords the account is locked for LockoutDuration, and
// the correct password is refused until the window closes.
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	now := s.Now()
	if u.IsLocked(now) {
		return nil, lockedError()
	}

	if !helpers.CompareHashAndPassword(u.Password, password) {
		attempts, lockedUntil, err := s.Users.RecordLoginFailure(ctx, u.ID, now, s.Policy.MaxFailedAttempts, s.Policy.LockoutDuration)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if lockedUntil != nil && now.Before(*lockedUntil) {
			if attempts == s.Policy.MaxFailedAttempts {
				s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "attempts": attempts}).Warn("account locked after failed logins")
			}
			return nil, lockedError()
		}
		return nil, errInvalidCredentials
	}

	if err := s.Users.RecordLoginSuccess(ctx, u.ID, now); err != nil {
		return nil, apperror.Internal(err)
	}
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	u.LastLoginAt = &now
	s.upgradeHash(ctx, u, password)

	tokens, err := s.issueSession(ctx, u, client)
	if err != nil {
		return nil, err
	}
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "session_id": tokens.SessionID, "ip": client.IPAddress}).Info("user logged in")
	return &AuthResult{User: u, Tokens: tokens}, nil
}

// upgradeHash re-hashes passwords stored with an older bcrypt cost. Failure
// only costs another attempt at the next login.
func (s *AuthService) upgradeHash(ctx context.Context, u *entity.User, plain string) {
	if !helpers.PasswordNeedsRehash(u.Password) {
		return
	}
	hash, err := helpers.HashPassword(plain)
	if err == nil {
		err = s.Users.UpdatePassword(ctx, u.ID, hash)
	}
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("password rehash failed")
		return
	}
	u.Password = hash
}

func lockedError() error {
	return apperror.Locked("account temporarily locked after too many failed login attempts")
}

func subjectOf(u *entity.User, sid string) helpers.TokenSubject {
	return helpers.TokenSubject{
		UserID:           u.ID,
		Email:            u.Email,
		UserType:         string(u.UserType),
		SubscriptionTier: string(u.SubscriptionTier),
		SessionID:        sid,
	}
}

// issueSession creates the session row first so the token's sessionId always
// points at a persisted session.
func (s *AuthService) issueSession(ctx context.Context, u *entity.User, client ClientInfo) (TokenPair, error) {
	sid := uuid.NewString()
	sub := subjectOf(u, sid)

	access, aexp, err := s.JWT.GenerateAccessToken(sub)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return TokenPair{}, apperror.Internal(err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(sub)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		return TokenPair{}, apperror.Internal(err)
	}

	sess := &entity.UserSession{
		ID:        sid,
		UserID:    u.ID,
		Token:     refresh,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		ExpiresAt: rexp,
	}
	if err := s.Sessions.Create(ctx, sess); err != nil {
		return TokenPair{}, apperror.Internal(err)
	}
	return TokenPair{SessionID: sid, AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Authenticate checks an access token and the live session behind it.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, errInvalidSession
	}
	p, err := s.ValidateSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if p.UserID != claims.UserID {
		return nil, errInvalidSession
	}
	return p, nil
}

// ValidateSession returns the principal only while the session row is active
// and unexpired. Lookups are cached briefly; revocation deletes the entry.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*Principal, error) {
	now := s.Now()
	if s.Cache != nil {
		var cached Principal
		if ok, err := s.Cache.GetJSON(ctx, sessionCacheKey(sessionID), &cached); err == nil && ok && now.Before(cached.ExpiresAt) {
			return &cached, nil
		} else if err != nil {
			s.Logger.WithError(err).Warn("session cache read failed")
		}
	}

	sess, err := s.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errInvalidSession
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !sess.Valid(now) {
		return nil, errInvalidSession
	}

	u, err := s.Users.GetByID(ctx, sess.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errInvalidSession
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	p := &Principal{
		UserID:           u.ID,
		Email:            u.Email,
		UserType:         u.UserType,
		SubscriptionTier: u.SubscriptionTier,
		SessionID:        sess.ID,
		ExpiresAt:        sess.ExpiresAt,
	}
	if s.Cache != nil {
		ttl := s.Policy.SessionCacheTTL
		if left := sess.ExpiresAt.Sub(now); left < ttl {
			ttl = left
		}
		if err := s.Cache.SetJSON(ctx, sessionCacheKey(sess.ID), p, ttl); err != nil {
			s.Logger.WithError(err).Warn("session cache write failed")
		}
	}
	return p, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.Sessions.Deactivate(ctx, sessionID); err != nil {
		return apperror.Internal(err)
	}
	s.forgetSessions(ctx, sessionID)
	return nil
}

// Refresh rotates both tokens on the same session and extends its expiry.
// A refresh token that no longer matches the session row is rejected.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, errInvalidSession
	}
	sess, err := s.Sessions.GetByID(ctx, claims.SessionID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, errInvalidSession
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !sess.Valid(s.Now()) || sess.Token != refreshToken || sess.UserID != claims.UserID {
		return nil, errInvalidSession
	}

	u, err := s.Users.GetByID(ctx, sess.UserID)
	if err != nil {
		return nil, translate(err, "user not found")
	}

	sub := subjectOf(u, sess.ID)
	access, aexp, err := s.JWT.GenerateAccessToken(sub)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(sub)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := s.Sessions.Extend(ctx, sess.ID, refresh, rexp); err != nil {
		return nil, translate(err, "session expired or invalid")
	}
	s.forgetSessions(ctx, sess.ID)

	return &AuthResult{User: u, Tokens: TokenPair{
		SessionID:          sess.ID,
		AccessToken:        access,
		AccessTokenExpiry:  aexp,
		RefreshToken:       refresh,
		RefreshTokenExpiry: rexp,
	}}, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, userID, code string) error {
	if s.Cache == nil {
		return errUnavailable
	}
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return translate(err, "user not found")
	}
	if u.IsVerified {
		return nil
	}

	var stored string
	ok, err := s.Cache.GetJSON(ctx, emailVerifyKey(userID), &stored)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok || stored != strings.TrimSpace(code) {
		return apperror.BadRequest("invalid or expired verification code")
	}
	if err := s.Users.SetVerified(ctx, userID); err != nil {
		return translate(err, "user not found")
	}
	_ = s.Cache.Del(ctx, emailVerifyKey(userID))
	s.Logger.WithField("user_id", userID).Info("email verified")
	return nil
}

func (s *AuthService) ResendVerification(ctx context.Context, userID string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return translate(err, "user not found")
	}
	if u.IsVerified {
		return apperror.BadRequest("email already verified")
	}
	if s.Cache == nil {
		return errUnavailable
	}
	s.sendVerification(ctx, u)
	return nil
}

func (s *AuthService) sendVerification(ctx context.Context, u *entity.User) {
	if s.Cache == nil {
		return
	}
	code, err := helpers.GenOTPCode()
	if err != nil {
		s.Logger.WithError(err).Error("generate verification code failed")
		return
	}
	if err := s.Cache.SetJSON(ctx, emailVerifyKey(u.ID), code, s.Policy.VerifyCodeTTL); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("store verification code failed")
		return
	}
	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.VerifyEmail,
		Data:     mailtpl.NewVerifyEmailData(s.Branding, u.FirstName, u.Email, code, s.Policy.VerifyCodeTTL),
	})
}

// ForgotPassword always succeeds from the caller's point of view so the
// endpoint cannot be used to enumerate accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			s.Logger.WithError(err).Error("forgot password lookup failed")
		}
		return nil
	}
	if s.Cache == nil {
		s.Logger.Warn("password reset requested but cache is not configured")
		return nil
	}
	token, err := helpers.GenToken(32)
	if err != nil {
		s.Logger.WithError(err).Error("generate reset token failed")
		return nil
	}
	if err := s.Cache.SetJSON(ctx, passwordResetKey(token), u.ID, s.Policy.ResetTokenTTL); err != nil {
		s.Logger.WithError(err).Warn("store reset token failed")
		return nil
	}
	s.enqueueEmail(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.ResetPassword,
		Data:     mailtpl.NewResetPasswordData(s.Branding, u.FirstName, u.Email, s.ResetPasswordURL+"?token="+token, s.Policy.ResetTokenTTL),
	})
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if err := validation.Password(newPassword); err != nil {
		return apperror.BadRequest("password does not meet the password policy")
	}
	if s.Cache == nil {
		return errUnavailable
	}
	var userID string
	ok, err := s.Cache.GetJSON(ctx, passwordResetKey(token), &userID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok || userID == "" {
		return apperror.BadRequest("invalid or expired reset token")
	}
	if err := s.setPassword(ctx, userID, newPassword); err != nil {
		return err
	}
	_ = s.Cache.Del(ctx, passwordResetKey(token))
	s.Logger.WithField("user_id", userID).Info("password reset")
	return nil
}

// ChangePassword signs the user out everywhere, including the calling session.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return translate(err, "user not found")
	}
	if !helpers.CompareHashAndPassword(u.Password, current) {
		return apperror.BadRequest("current password is incorrect")
	}
	if current == next {
		return apperror.BadRequest("new password must differ from the current password")
	}
	if err := validation.Password(next); err != nil {
		return apperror.BadRequest("password does not meet the password policy")
	}
	return s.setPassword(ctx, userID, next)
}

func (s *AuthService) setPassword(ctx context.Context, userID, plain string) error {
	hash, err := helpers.HashPassword(plain)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := s.Users.UpdatePassword(ctx, userID, hash); err != nil {
		return translate(err, "user not found")
	}
	return s.InvalidateAllSessions(ctx, userID)
}

// InvalidateAllSessions deactivates every session of the user and drops
// their cache entries.
func (s *AuthService) InvalidateAllSessions(ctx context.Context, userID string) error {
	ids, err := s.Sessions.DeactivateAllForUser(ctx, userID)
	if err != nil {
		return apperror.Internal(err)
	}
	s.forgetSessions(ctx, ids...)
	s.Logger.WithFields(logrus.Fields{"user_id": userID, "sessions": len(ids)}).Info("sessions invalidated")
	return nil
}

// SweepExpiredSessions deactivates sessions whose expiry has passed.
func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	return s.Sessions.DeactivateExpired(ctx, s.Now())
}

func (s *AuthService) forgetSessions(ctx context.Context, ids ...string) {
	if s.Cache == nil || len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionCacheKey(id))
	}
	if err := s.Cache.Del(ctx, keys...); err != nil {
		s.Logger.WithError(err).Warn("session cache delete failed")
	}
}

func (s *AuthService) enqueueEmail(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil {
		s.Logger.WithField("template", job.Template).Debug("email delivery disabled; job skipped")
		return
	}
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("enqueue email failed")
	}
}
