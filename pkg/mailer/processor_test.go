package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synqit/synqit-backend/pkg/helpers"
	"github.com/synqit/synqit-backend/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	calls                   int
	err                     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.calls++
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func body(t *testing.T, job EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcessorHandle(t *testing.T) {
	brand := templates.Branding{AppName: "Synqit"}
	tests := []struct {
		name    string
		raw     []byte
		sendErr error
		want    Outcome
		calls   int
	}{
		{
			name:  "template job",
			raw:   body(t, EmailJob{To: "a@b.io", Template: templates.Notification, Data: templates.NewNotificationData(brand, "A", "a@b.io", "New request", "hi", "")}),
			want:  Ack,
			calls: 1,
		},
		{
			name:  "plain job",
			raw:   body(t, EmailJob{To: "a@b.io", Subject: "s", Text: "t"}),
			want:  Ack,
			calls: 1,
		},
		{name: "malformed json", raw: []byte("{"), want: Drop},
		{name: "no recipient", raw: body(t, EmailJob{Subject: "s", Text: "t"}), want: Drop},
		{name: "unknown template", raw: body(t, EmailJob{To: "a@b.io", Template: "nope"}), want: Drop},
		{
			name:    "send failure",
			raw:     body(t, EmailJob{To: "a@b.io", Subject: "s", Text: "t"}),
			sendErr: errors.New("mailgun down"),
			want:    Retry,
			calls:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &recordingSender{err: tt.sendErr}
			p := NewProcessor(s, helpers.NewDiscardLogger())
			assert.Equal(t, tt.want, p.Handle(context.Background(), tt.raw))
			assert.Equal(t, tt.calls, s.calls)
		})
	}
}

func TestBuildUsesTemplateSubject(t *testing.T) {
	subject, _, html, err := Build(EmailJob{To: "a@b.io", Template: templates.Notification, Data: map[string]any{"Title": "Partnership accepted", "Message": "m"}})
	require.NoError(t, err)
	assert.Equal(t, "Partnership accepted", subject)
	assert.Contains(t, html, "Partnership accepted")
}
