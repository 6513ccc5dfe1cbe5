// Package notify turns marketplace events into user-facing messages.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/garnizeh/gigmarket/internal/market"
	"github.com/garnizeh/gigmarket/internal/tasks"
)

// Message is a rendered notification for one recipient.
type Message struct {
	RecipientID string       `json:"recipient_id"`
	Subject     string       `json:"subject"`
	Body        string       `json:"body"`
	Event       market.Event `json:"event"`
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// LogSender writes messages to a structured logger instead of an external channel.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(ctx context.Context, m Message) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "notification",
		slog.String("recipient_id", m.RecipientID),
		slog.String("subject", m.Subject),
		slog.String("body", m.Body),
		slog.String("event", string(m.Event.Type)),
	)
	return nil
}

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

var templates = map[market.EventType][2]string{
	market.EventJobCreated: {
		`Your job "{{.JobTitle}}" is live`,
		`Your job "{{.JobTitle}}" is now open for applications.`,
	},
	market.EventJobClosed: {
		`Job "{{.JobTitle}}" closed`,
		`You closed "{{.JobTitle}}". It no longer accepts applications.`,
	},
	market.EventApplicationSubmitted: {
		`New application for "{{.JobTitle}}"`,
		`Someone applied to "{{.JobTitle}}". Review the application to accept or reject it.`,
	},
	market.EventApplicationDecided: {
		`Your application was {{.Status}}`,
		`Your application for "{{.JobTitle}}" was {{.Status}}.`,
	},
}

// Notifier renders events and hands them to a Sender.
type Notifier struct {
	sender    Sender
	logger    *slog.Logger
	templates map[market.EventType]messageTemplate
}

func New(sender Sender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if sender == nil {
		sender = LogSender{Logger: logger}
	}
	n := &Notifier{sender: sender, logger: logger, templates: make(map[market.EventType]messageTemplate, len(templates))}
	for typ, t := range templates {
		n.templates[typ] = messageTemplate{
			subject: template.Must(template.New(string(typ) + ".subject").Parse(t[0])),
			body:    template.Must(template.New(string(typ) + ".body").Parse(t[1])),
		}
	}
	return n
}

// Render builds the message for e.
func (n *Notifier) Render(e market.Event) (Message, error) {
	t, ok := n.templates[e.Type]
	if !ok {
		return Message{}, fmt.Errorf("no template for event %q", e.Type)
	}
	subject, err := execute(t.subject, e)
	if err != nil {
		return Message{}, err
	}
	body, err := execute(t.body, e)
	if err != nil {
		return Message{}, err
	}
	return Message{RecipientID: e.RecipientID, Subject: subject, Body: body, Event: e}, nil
}

func execute(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Deliver renders e and sends it. Events without a recipient are dropped.
func (n *Notifier) Deliver(ctx context.Context, e market.Event) error {
	if e.RecipientID == "" {
		n.logger.Debug("event without recipient dropped", "type", string(e.Type))
		return nil
	}
	m, err := n.Render(e)
	if err != nil {
		return err
	}
	if err := n.sender.Send(ctx, m); err != nil {
		return fmt.Errorf("send %s to %s: %w", e.Type, e.RecipientID, err)
	}
	return nil
}

// Handlers returns an outbox handler for every event type the notifier renders.
func (n *Notifier) Handlers() map[string]tasks.Handler {
	out := make(map[string]tasks.Handler, len(n.templates))
	for typ := range n.templates {
		out[string(typ)] = n.handle
	}
	return out
}

func (n *Notifier) handle(ctx context.Context, t *tasks.Task) error {
	e, err := tasks.DecodeEvent(t)
	if err != nil {
		return fmt.Errorf("decode event: %w", err)
	}
	return n.Deliver(ctx, e)
}
