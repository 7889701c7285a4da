// Package notify defines the outbound messaging contract the workflow uses
// to reach hosts and decision senders.  Real delivery (Twilio WhatsApp in
// the deployed system) lives behind this interface; failures are logged by
// the caller and never unwind a committed state transition.
package notify

import (
	"context"
	"log"
	"sync"
)

// Notifier sends messages to a contact.  SendTemplate delivers a structured
// approval card (the template itself lives with the delivery provider);
// SendText delivers a plain body.
type Notifier interface {
	SendTemplate(ctx context.Context, to string, vars map[string]string) error
	SendText(ctx context.Context, to string, body string) error
}

// LogNotifier writes every message to a logger instead of delivering it.
// The default in dev, where no messaging provider is configured.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendTemplate(_ context.Context, to string, vars map[string]string) error {
	n.logger.Printf("notify template to=%s vars=%v", to, vars)
	return nil
}

func (n *LogNotifier) SendText(_ context.Context, to string, body string) error {
	n.logger.Printf("notify text to=%s body=%q", to, body)
	return nil
}

// Sent is one captured outbound message.
type Sent struct {
	To       string
	Body     string
	Vars     map[string]string
	Template bool
}

// Capture records messages in memory.  Intended for tests and dev, like the
// in-memory stores.
type Capture struct {
	mu   sync.Mutex
	sent []Sent

	// Err, when set, is returned from every send.  Lets tests exercise
	// the dispatch-failure paths.
	Err error
}

func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) SendTemplate(_ context.Context, to string, vars map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.sent = append(c.sent, Sent{To: to, Vars: vars, Template: true})
	return nil
}

func (c *Capture) SendText(_ context.Context, to string, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	c.sent = append(c.sent, Sent{To: to, Body: body})
	return nil
}

// Messages returns a copy of everything sent so far.
func (c *Capture) Messages() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Sent, len(c.sent))
	copy(out, c.sent)
	return out
}
