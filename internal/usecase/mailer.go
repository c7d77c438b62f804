package usecase

import (
	"context"

	"github.com/sirupsen/logrus"
)

type Mail struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

// LogMailer writes outgoing mail to the log instead of delivering it.
type LogMailer struct {
	log *logrus.Logger
}

func NewLogMailer(log *logrus.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, mail Mail) error {
	m.log.WithFields(logrus.Fields{
		"to":      mail.To,
		"subject": mail.Subject,
	}).Info(mail.Body)
	return nil
}
