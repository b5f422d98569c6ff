package mailer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/synqit/synqit-backend/pkg/mailer/templates"
)

// Outcome tells the consumer what to do with the delivery.
type Outcome int

const (
	Ack Outcome = iota
	Drop
	Retry
)

var ErrInvalidJob = errors.New("invalid email job")

// Processor renders queued EmailJobs and hands them to a Sender.
type Processor struct {
	Sender Sender
	Logger *logrus.Logger
}

func NewProcessor(s Sender, logger *logrus.Logger) *Processor {
	return &Processor{Sender: s, Logger: logger}
}

// Handle processes one raw queue message. Malformed or unrenderable jobs are
// dropped; send failures are retried.
func (p *Processor) Handle(ctx context.Context, body []byte) Outcome {
	var job EmailJob
	if err := json.Unmarshal(body, &job); err != nil || !job.Valid() {
		p.Logger.WithError(errors.Join(ErrInvalidJob, err)).Warn("dropping email job")
		return Drop
	}

	subject, text, html, err := Build(job)
	if err != nil {
		p.Logger.WithError(err).WithField("template", job.Template).Error("render email failed")
		return Drop
	}

	if err := p.Sender.Send(ctx, job.To, subject, text, html); err != nil {
		p.Logger.WithError(err).WithField("to", job.To).Warn("send email failed")
		return Retry
	}
	p.Logger.WithFields(logrus.Fields{"to": job.To, "template": job.Template}).Info("email sent")
	return Ack
}

// Build resolves the final subject and bodies for job.
func Build(job EmailJob) (subject, text, html string, err error) {
	if job.Template == "" {
		return job.Subject, job.Text, job.HTML, nil
	}
	subject, text, html, err = templates.Render(job.Template, job.Data)
	if err != nil {
		return "", "", "", err
	}
	if job.Subject != "" {
		subject = job.Subject
	}
	return subject, text, html, nil
}
