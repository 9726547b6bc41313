// Package email sends transactional mail. The only sender today is a
// placeholder that writes the message to the log.
package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/01moynul/relique/internal/models"
)

// Message is one outgoing e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender is our placeholder sender. Instead of delivering, it logs the
// message so flows can be tested without a mail provider.
type LogSender struct {
	Logger *slog.Logger
}

// Send logs msg.
func (s LogSender) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("email: empty recipient")
	}
	s.Logger.InfoContext(ctx, "email (placeholder)",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}

var kindSubjects = map[string]string{
	models.SubmissionConsign:      "We received your consignment request",
	models.SubmissionAuthenticate: "We received your authentication request",
	models.SubmissionContact:      "Thanks for contacting Relique",
}

// SubmissionReceived builds the acknowledgement sent to whoever filed sub.
func SubmissionReceived(sub *models.Submission) Message {
	subject, ok := kindSubjects[sub.Kind]
	if !ok {
		subject = "We received your request"
	}
	body := fmt.Sprintf(
		"Hi %s,\n\nThanks for reaching out. Your reference is %s.\n"+
			"Our team reviews every request and will get back to you shortly.\n\nThe Relique team",
		sub.Name, sub.ID,
	)
	return Message{To: sub.Email, Subject: subject, Body: body}
}

// SubmissionStatusChanged tells the submitter their request moved to a new
// status.
func SubmissionStatusChanged(sub *models.Submission) Message {
	status := strings.ReplaceAll(sub.Status, "_", " ")
	body := fmt.Sprintf("Hi %s,\n\nYour request %s is now %s.", sub.Name, sub.ID, status)
	if sub.AdminNote != nil && *sub.AdminNote != "" {
		body += "\n\nNote from our team: " + *sub.AdminNote
	}
	return Message{To: sub.Email, Subject: "Update on your Relique request", Body: body + "\n\nThe Relique team"}
}
