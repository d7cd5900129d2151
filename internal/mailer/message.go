// Package mailer queues outbound email in Postgres and delivers it from a worker.
package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"skillpath/internal/pgmq"
)

type Message struct {
	To       string `json:"to"`
	ToName   string `json:"to_name,omitempty"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
	TextBody string `json:"text_body"`
}

// PasswordResetMessage builds the reset mail for a one-hour token link.
func PasswordResetMessage(to, name, resetURL string) Message {
	link := html.EscapeString(resetURL)
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Password Reset Request",
		HTMLBody: `<h1>You requested a password reset</h1>
<p>Please click the following link to reset your password:</p>
<a href="` + link + `" clicktracking="off">` + link + `</a>
<p>This link will expire in 1 hour.</p>
<p>If you did not request this reset, please ignore this email.</p>`,
		TextBody: fmt.Sprintf("You requested a password reset.\n\nOpen %s to choose a new password. The link expires in 1 hour.\n\nIf you did not request this reset, please ignore this email.", resetURL),
	}
}

// Enqueuer hands a message to the delivery worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Queue is an Enqueuer backed by a pgmq queue.
type Queue struct {
	client *pgmq.Client
	name   string
}

func NewQueue(client *pgmq.Client, name string) *Queue {
	return &Queue{client: client, name: name}
}

func (q *Queue) Enqueue(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding email: %w", err)
	}
	if err := q.client.Send(ctx, q.name, payload); err != nil {
		return fmt.Errorf("queueing email to %s: %w", msg.To, err)
	}
	return nil
}
