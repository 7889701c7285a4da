package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/gatehouse/notify"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/photoref"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/store"
	"github.com/gatehouse-io/gatehouse/internal/gatehouse/types"
)

// CoordinatorConfig carries the deployment-specific knobs of the workflow.
type CoordinatorConfig struct {
	// HostPrefix is prepended to host contacts that arrive as bare
	// national numbers, e.g. "+91".
	HostPrefix string
}

// Coordinator orchestrates the approval workflow: it is the only component
// that touches more than one of ledger/registry/tracker, and the only one
// that talks to the notifier.  Every notification is dispatched after the
// state transition it reports, never inside it, and a failed send is logged
// and otherwise ignored.
type Coordinator struct {
	ledger   *ApprovalLedger
	grants   *PreApprovalRegistry
	visits   *VisitTracker
	notifier notify.Notifier
	photos   *photoref.Resolver
	cfg      CoordinatorConfig
	logger   *log.Logger
	now      Clock
}

func NewCoordinator(
	ledger *ApprovalLedger,
	grants *PreApprovalRegistry,
	visits *VisitTracker,
	notifier notify.Notifier,
	photos *photoref.Resolver,
	cfg CoordinatorConfig,
	logger *log.Logger,
	clock Clock,
) *Coordinator {
	if clock == nil {
		clock = UTCNow
	}
	return &Coordinator{
		ledger:   ledger,
		grants:   grants,
		visits:   visits,
		notifier: notifier,
		photos:   photos,
		cfg:      cfg,
		logger:   logger,
		now:      clock,
	}
}

// CreateRequest opens a PENDING ledger entry and sends the host an approval
// card.  If the send fails the entry is not rolled back: the request stays
// PENDING and expires unanswered.  Fail-open to "no answer", never to a
// silent auto-approval.
func (c *Coordinator) CreateRequest(ctx context.Context, req types.CreateVisitRequest) (types.CreateVisitResponse, error) {
	photo := c.photos.Normalize(req.PhotoRef)

	rec, err := c.ledger.Create(ctx, req.RequestID, req.VisitorName, req.VisitorPhone, photo)
	if err != nil {
		return types.CreateVisitResponse{}, err
	}

	host := c.hostContact(req.HostContact)
	vars := map[string]string{
		"1": photoref.PublicID(rec.PhotoRef),
		"2": rec.VisitorName,
		"3": req.GateTime,
		"4": rec.RequestID,
	}
	if err := c.notifier.SendTemplate(ctx, host, vars); err != nil {
		c.logger.Printf("approval card send failed for %s: %v", rec.RequestID, err)
	}

	return types.CreateVisitResponse{
		OK:         true,
		RequestID:  rec.RequestID,
		Status:     rec.Status,
		ExpiresAt:  rec.ExpiresAt.Format(time.RFC3339),
		ServerTime: c.now().Format(time.RFC3339Nano),
	}, nil
}

// HandleInbound processes one message from the shared inbound channel.
// Unrecognized or malformed messages are dropped with a log line only — the
// sender never sees an error on this path.  The returned error is reserved
// for store failures.
func (c *Coordinator) HandleInbound(ctx context.Context, msg types.InboundMessage) error {
	parsed := ParseInbound(msg.Body, msg.ButtonPayload)

	switch parsed.Kind {
	case MessageDecision:
		return c.handleDecision(ctx, parsed, msg.From)
	case MessagePreApproval:
		return c.handlePreApproval(ctx, parsed, msg.From)
	}

	c.logger.Printf("inbound: dropped unrecognized message from %s", msg.From)
	return nil
}

func (c *Coordinator) handleDecision(ctx context.Context, parsed ParsedMessage, from string) error {
	rec, err := c.ledger.Resolve(ctx, parsed.RequestID, parsed.Decision)
	if errors.Is(err, store.ErrRequestNotFound) {
		c.logger.Printf("inbound: decision for unknown request %s", parsed.RequestID)
		return nil
	}
	if err != nil {
		return err
	}

	// Act on the status the ledger settled on, not the requested outcome:
	// a late or repeated decision may come back EXPIRED or the opposite
	// terminal state.
	switch rec.Status {
	case types.StatusApproved:
		if _, err := c.visits.Admit(ctx, rec.VisitorPhone, rec.VisitorName, types.VisitTypeApproval, rec.PhotoRef); err != nil {
			return err
		}
		c.sendText(ctx, from, fmt.Sprintf("Approved\n\nGuest *%s* is arriving shortly towards you.", rec.VisitorName))
	case types.StatusRejected:
		c.sendText(ctx, from, fmt.Sprintf("Rejected\n\nGuest *%s* was rejected.", rec.VisitorName))
	case types.StatusExpired:
		c.logger.Printf("inbound: late decision for expired request %s", rec.RequestID)
	}
	return nil
}

func (c *Coordinator) handlePreApproval(ctx context.Context, parsed ParsedMessage, from string) error {
	rec, err := c.grants.Grant(ctx, parsed.VisitorPhone, parsed.VisitorName, parsed.Window)
	if errors.Is(err, ErrBadWindow) || errors.Is(err, ErrMissingVisitorName) || errors.Is(err, ErrMissingVisitorPhone) {
		c.logger.Printf("inbound: dropped malformed PREAPPROVE from %s: %v", from, err)
		return nil
	}
	if err != nil {
		return err
	}

	c.sendText(ctx, from, fmt.Sprintf("Pre-approved\n\n%s is allowed between %s and %s.",
		rec.VisitorName, minuteString(rec.WindowStart), minuteString(rec.WindowEnd)))
	return nil
}

// Status answers a poll for a request id.  An id the ledger has never seen
// is UNKNOWN, never an error — pollers expect graceful absence.
func (c *Coordinator) Status(ctx context.Context, requestID string) (types.ApprovalStatus, error) {
	status, err := c.ledger.Status(ctx, requestID)
	if errors.Is(err, store.ErrRequestNotFound) {
		return types.StatusUnknown, nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}

// PreApprovalLookup checks the phone's grant against the current time and,
// when valid, admits the visitor idempotently.
func (c *Coordinator) PreApprovalLookup(ctx context.Context, phone string) (types.PreApprovalLookupResponse, error) {
	rec, ok, err := c.grants.Check(ctx, phone)
	if err != nil {
		return types.PreApprovalLookupResponse{}, err
	}
	if !ok {
		return types.PreApprovalLookupResponse{Valid: false}, nil
	}

	if _, err := c.visits.Admit(ctx, rec.VisitorPhone, rec.VisitorName, types.VisitTypePreApproved, ""); err != nil {
		return types.PreApprovalLookupResponse{}, err
	}
	return types.PreApprovalLookupResponse{Valid: true, Name: rec.VisitorName}, nil
}

// Checkout marks the visitor as departed.  A phone with no active visit is
// an expected caller scenario and comes back as a structured failure.
func (c *Coordinator) Checkout(ctx context.Context, phone string) (types.CheckoutResponse, error) {
	_, err := c.visits.Checkout(ctx, phone)
	if errors.Is(err, store.ErrNotActive) {
		return types.CheckoutResponse{Success: false, Message: "Visitor is not currently inside"}, nil
	}
	if err != nil {
		return types.CheckoutResponse{}, err
	}
	return types.CheckoutResponse{Success: true}, nil
}

func (c *Coordinator) ListActive(ctx context.Context) ([]store.ActiveVisitRecord, error) {
	return c.visits.ListActive(ctx)
}

func (c *Coordinator) History(ctx context.Context) ([]store.VisitRecord, error) {
	return c.visits.History(ctx)
}

// sendText dispatches a plain message and logs any failure.  Delivery is
// fire-and-forget: the state transition this message reports has already
// been committed.
func (c *Coordinator) sendText(ctx context.Context, to, body string) {
	if err := c.notifier.SendText(ctx, to, body); err != nil {
		c.logger.Printf("text send to %s failed: %v", to, err)
	}
}

func (c *Coordinator) hostContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if c.cfg.HostPrefix != "" && !strings.HasPrefix(contact, "+") {
		return c.cfg.HostPrefix + contact
	}
	return contact
}
