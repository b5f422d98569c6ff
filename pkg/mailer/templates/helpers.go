package templates

import (
	"time"
)

// Branding holds the product fields every email shares.
type Branding struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithActionURL(url string) Option { return func(d *EmailData) { d.ActionURL = url } }
func WithCode(code string) Option     { return func(d *EmailData) { d.Code = code } }

func WithExpiresIn(dur time.Duration) Option {
	return func(d *EmailData) {
		d.ExpiresAtText = time.Now().Add(dur).UTC().Format("02 January 2006, 15:04 MST")
	}
}

func NewBaseEmailData(b Branding, typ, name, recipient string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		RecipientEmail: recipient,
		Type:           typ,
		AppName:        b.AppName,
		CompanyName:    b.CompanyName,
		SupportURL:     b.SupportURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewVerifyEmailData(b Branding, name, email, code string, ttl time.Duration) map[string]any {
	return ToMap(NewBaseEmailData(b, VerifyEmail, name, email, WithCode(code), WithExpiresIn(ttl)))
}

func NewResetPasswordData(b Branding, name, email, resetURL string, ttl time.Duration) map[string]any {
	return ToMap(NewBaseEmailData(b, ResetPassword, name, email, WithActionURL(resetURL), WithExpiresIn(ttl)))
}

func NewNotificationData(b Branding, name, email, title, message, actionURL string) map[string]any {
	d := NewBaseEmailData(b, Notification, name, email, WithActionURL(actionURL))
	d.Title = title
	d.Message = message
	return ToMap(d)
}
