// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/syncmeet/client"
	"github.com/danielhkuo/syncmeet/composer"
	"github.com/danielhkuo/syncmeet/logging"
	"github.com/danielhkuo/syncmeet/mailer"
	"github.com/danielhkuo/syncmeet/presenter"
)

const usage = `usage: pollctl <command> [flags]

commands:
  send     compose a poll, store it and email the vote links
  vote     cast a vote, from flags or from a vote link
  results  show the tally of a poll
  last     show the organizer's newest poll and its tally
  polls    list the organizer's polls
`

var errUsage = errors.New("invalid usage")

// stringList collects a repeated flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ", ") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

type app struct {
	cfg    config
	store  *client.Client
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := logging.NewWithWriter(stderr, cfg.Env, cfg.LogFormat, false)
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	a := &app{
		cfg: cfg,
		store: client.New(cfg.StoreURL,
			client.WithHTTPClient(httpClient),
			client.WithLogger(logger),
			client.WithOrganizerID(cfg.OrganizerID),
		),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "send":
		return a.send(ctx, rest, mailer.New(cfg.MailerURL, cfg.VoteBaseURL,
			mailer.WithHTTPClient(httpClient),
			mailer.WithLogger(logger),
		))
	case "vote":
		return a.vote(ctx, rest)
	case "results":
		return a.results(ctx, rest)
	case "last":
		return a.last(ctx)
	case "polls":
		return a.polls(ctx)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	fmt.Fprint(stderr, usage)
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("pollctl "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) send(ctx context.Context, args []string, dispatcher composer.Dispatcher) error {
	fs := a.flags("send")
	title := fs.String("title", "", "Poll title")
	desc := fs.String("desc", "", "Poll description")
	to := fs.String("to", "", "Recipients, free text")
	single := fs.Bool("single", false, "Count only each voter's latest vote")
	var slots, priority stringList
	fs.Var(&slots, "slot", "Candidate time slot (repeat)")
	fs.Var(&priority, "priority", "Priority voter who breaks ties (repeat)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if a.cfg.MailerURL == "" {
		return errors.New("MAILER_URL is required to send invitations")
	}

	c := composer.New(a.store, dispatcher)
	c.SetTitle(*title)
	c.SetDescription(*desc)
	c.SetSlots(slots)
	recipients := c.SetRecipients(*to)
	for _, p := range priority {
		if err := c.MarkPriority(p); err != nil {
			return err
		}
	}
	if *single {
		c.SetVotePolicy(false)
	}

	receipt, err := c.Submit(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "Poll %s sent to %d recipients\n", receipt.PollID, len(recipients))
	fmt.Fprintf(a.stdout, "Admin key: %s\n", receipt.AdminKey)
	if receipt.SentAt.IsZero() {
		fmt.Fprintln(a.stdout, "Warning: the store did not record the dispatch")
	}
	return nil
}

func (a *app) vote(ctx context.Context, args []string) error {
	fs := a.flags("vote")
	link := fs.String("link", "", "Vote link from the invitation")
	email := fs.String("email", "", "Voter email")
	pollID := fs.String("poll", "", "Poll ID")
	title := fs.String("title", "", "Poll title")
	slot := fs.String("slot", "", "Chosen time slot")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := client.VoteRequest{Email: *email, PollID: *pollID, PollTitle: *title, Slot: *slot}
	if *link != "" {
		l, err := client.ParseVoteLink(*link)
		if err != nil {
			return err
		}
		req.Email, req.PollID, req.PollTitle = l.Email, l.PollID, l.Title
		if req.Slot == "" {
			return fmt.Errorf("%w: choose -slot from %s", errUsage, strings.Join(l.Slots, ", "))
		}
	}

	if req.PollID == "" && req.PollTitle != "" {
		poll, err := a.store.LookupPoll(ctx, req.PollTitle)
		if err != nil {
			return err
		}
		req.PollID = poll.ID
	}

	res, err := a.store.SubmitVote(ctx, req)
	if err != nil {
		return err
	}

	switch res.Status {
	case client.StatusSkipped:
		fmt.Fprintln(a.stdout, "Nothing submitted: email, poll and slot are all required")
	case client.StatusReplayed:
		fmt.Fprintf(a.stdout, "Vote %s was already recorded\n", res.VoteID)
	default:
		msg := "Vote recorded"
		if res.Replaced {
			msg = "Vote replaced"
		}
		fmt.Fprintf(a.stdout, "%s for %s (%s)\n", msg, req.Slot, res.VoteID)
	}
	if res.Status != client.StatusSkipped && !res.Recognized {
		fmt.Fprintln(a.stdout, "Note: that slot is not one of the poll's candidates")
	}
	return nil
}

func (a *app) results(ctx context.Context, args []string) error {
	fs := a.flags("results")
	pollID := fs.String("poll", "", "Poll ID")
	key := fs.String("key", "", "Admin key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pollID == "" || *key == "" {
		return fmt.Errorf("%w: -poll and -key are required", errUsage)
	}

	result, poll, err := a.store.Tally(ctx, *pollID, *key)
	if err != nil {
		return err
	}
	return presenter.Results(a.stdout, poll, result)
}

func (a *app) last(ctx context.Context) error {
	last, err := a.store.LastPoll(ctx)
	if err != nil {
		return err
	}

	poll := last.Poll
	fmt.Fprintf(a.stdout, "Poll %s\nAdmin key: %s\nRecipients: %s\n\n",
		poll.ID, last.AdminKey, strings.Join(last.Recipients, ", "))

	result, _, err := a.store.Tally(ctx, poll.ID, last.AdminKey)
	if err != nil {
		return err
	}
	return presenter.Results(a.stdout, poll, result)
}

func (a *app) polls(ctx context.Context) error {
	polls, err := a.store.MyPolls(ctx)
	if err != nil {
		return err
	}
	return presenter.Polls(a.stdout, polls, time.Now())
}
