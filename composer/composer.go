// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/danielhkuo/syncmeet/emails"
	"github.com/danielhkuo/syncmeet/logging"
	"github.com/danielhkuo/syncmeet/models"
)

//go:generate mockgen -destination=mocks/ports.go -package=mocks github.com/danielhkuo/syncmeet/composer PollStore,Dispatcher

// PollStore keeps the durable copy of a poll.
type PollStore interface {
	CreatePoll(ctx context.Context, req models.CreatePollRequest) (models.CreatePollResponse, error)
	MarkSent(ctx context.Context, pollID, adminKey string) (time.Time, error)
}

// Dispatcher delivers invitations to the recipients of a stored poll.
type Dispatcher interface {
	Dispatch(ctx context.Context, pollID string, poll models.CreatePollRequest) error
}

var (
	ErrNotRecipient    = errors.New("not a recipient")
	ErrTitleRequired   = errors.New("title is required")
	ErrTooFewSlots     = errors.New("at least 2 time slots are required")
	ErrEmptySlot       = errors.New("time slots cannot be empty")
	ErrDuplicateSlot   = errors.New("duplicate time slot")
	ErrNoRecipients    = errors.New("at least 1 recipient is required")
	ErrInvalidPriority = errors.New("priority voter is not a recipient")
)

// Receipt describes a poll that was stored and sent.
type Receipt struct {
	PollID    string
	AdminKey  string
	CreatedAt time.Time
	// SentAt is zero when the store could not record the dispatch.
	SentAt time.Time
}

// Composer holds the form state of a poll being written by an organizer.
// It is safe for concurrent use.
type Composer struct {
	store      PollStore
	dispatcher Dispatcher
	logger     *slog.Logger

	mu            sync.Mutex
	title         string
	description   string
	slots         []string
	rawRecipients string
	recipients    []string
	priority      []string
	allowMultiple *bool

	// stored but not yet acknowledged by the dispatcher
	pending *models.CreatePollResponse
}

type Option func(*Composer)

func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) { c.logger = l }
}

func New(store PollStore, dispatcher Dispatcher, opts ...Option) *Composer {
	c := &Composer{store: store, dispatcher: dispatcher}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Resolve(c.logger)
	c.reset()
	return c
}

func (c *Composer) reset() {
	c.title = ""
	c.description = ""
	c.slots = []string{}
	c.rawRecipients = ""
	c.recipients = []string{}
	c.priority = []string{}
	c.allowMultiple = nil
	c.pending = nil
}

func (c *Composer) SetTitle(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.title = title
	c.pending = nil
}

func (c *Composer) SetDescription(desc string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.description = desc
	c.pending = nil
}

// SetSlots replaces the candidate slots. Values are trimmed; checking them
// is left to Validate.
func (c *Composer) SetSlots(slots []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = make([]string, 0, len(slots))
	for _, s := range slots {
		c.slots = append(c.slots, strings.TrimSpace(s))
	}
	c.pending = nil
}

func (c *Composer) AddSlot(slot string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.slots = append(c.slots, strings.TrimSpace(slot))
	c.pending = nil
}

// SetVotePolicy overrides the store's default vote policy for this poll.
func (c *Composer) SetVotePolicy(allowMultiple bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allowMultiple = &allowMultiple
	c.pending = nil
}

// SetRecipients re-normalizes the recipient text. The priority subset is
// cleared whenever the resulting list changes.
func (c *Composer) SetRecipients(raw string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rawRecipients = emails.FormatInput(raw)
	next := emails.Unique(emails.Normalize(raw))
	if !slices.Equal(next, c.recipients) {
		c.recipients = next
		c.priority = []string{}
		c.pending = nil
	}
	return slices.Clone(c.recipients)
}

// MarkPriority adds a recipient to the priority subset. Marking twice is a
// no-op.
func (c *Composer) MarkPriority(email string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := emails.Index(c.recipients, email)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotRecipient, email)
	}
	if emails.Index(c.priority, email) >= 0 {
		return nil
	}
	c.priority = append(c.priority, c.recipients[i])
	c.pending = nil
	return nil
}

func (c *Composer) UnmarkPriority(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := emails.Index(c.priority, email); i >= 0 {
		c.priority = slices.Delete(c.priority, i, i+1)
		c.pending = nil
	}
}

// RawRecipients is the recipient text as the organizer should see it.
func (c *Composer) RawRecipients() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rawRecipients
}

// Draft returns a copy of the current form as a store request.
func (c *Composer) Draft() models.CreatePollRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft()
}

func (c *Composer) draft() models.CreatePollRequest {
	req := models.CreatePollRequest{
		Title:       strings.TrimSpace(c.title),
		Description: strings.TrimSpace(c.description),
		Slots:       slices.Clone(c.slots),
		Recipients:  slices.Clone(c.recipients),
		Priority:    slices.Clone(c.priority),
	}
	if c.allowMultiple != nil {
		v := *c.allowMultiple
		req.AllowMultipleVotes = &v
	}
	return req
}

// Validate reports every problem with the form at once.
func (c *Composer) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return validate(c.draft())
}

func validate(req models.CreatePollRequest) error {
	var result *multierror.Error

	if req.Title == "" {
		result = multierror.Append(result, ErrTitleRequired)
	}

	if len(req.Slots) < 2 {
		result = multierror.Append(result, ErrTooFewSlots)
	}
	seen := make(map[string]bool, len(req.Slots))
	for i, s := range req.Slots {
		if s == "" {
			result = multierror.Append(result, fmt.Errorf("%w: slot %d", ErrEmptySlot, i+1))
			continue
		}
		if seen[s] {
			result = multierror.Append(result, fmt.Errorf("%w: %q", ErrDuplicateSlot, s))
		}
		seen[s] = true
	}

	if len(req.Recipients) == 0 {
		result = multierror.Append(result, ErrNoRecipients)
	}
	for _, p := range req.Priority {
		if emails.Index(req.Recipients, p) < 0 {
			result = multierror.Append(result, fmt.Errorf("%w: %s", ErrInvalidPriority, p))
		}
	}

	return result.ErrorOrNil()
}

// Submit validates the form, stores the poll and hands it to the
// dispatcher. The form is cleared only once the dispatcher has
// acknowledged; on any failure it is left intact and the error returned.
// Submitting again after a dispatch failure re-sends the poll that was
// already stored instead of storing a second one.
func (c *Composer) Submit(ctx context.Context) (Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req := c.draft()
	if err := validate(req); err != nil {
		return Receipt{}, err
	}

	created := c.pending
	if created == nil {
		resp, err := c.store.CreatePoll(ctx, req)
		if err != nil {
			c.logger.Error("failed to store poll", "title", req.Title, "error", err)
			return Receipt{}, fmt.Errorf("store poll: %w", err)
		}
		created = &resp
		c.pending = created
		c.logger.Info("poll stored", "poll_id", resp.PollID, "slots", len(req.Slots), "recipients", len(req.Recipients))
	}

	if err := c.dispatcher.Dispatch(ctx, created.PollID, req); err != nil {
		c.logger.Error("failed to dispatch poll", "poll_id", created.PollID, "error", err)
		return Receipt{}, fmt.Errorf("dispatch poll: %w", err)
	}

	receipt := Receipt{
		PollID:    created.PollID,
		AdminKey:  created.AdminKey,
		CreatedAt: created.CreatedAt,
	}

	sentAt, err := c.store.MarkSent(ctx, created.PollID, created.AdminKey)
	if err != nil {
		c.logger.Warn("failed to record dispatch", "poll_id", created.PollID, "error", err)
	} else {
		receipt.SentAt = sentAt
	}

	c.reset()
	return receipt, nil
}
