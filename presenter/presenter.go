// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package presenter

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/syncmeet/emails"
	"github.com/danielhkuo/syncmeet/models"
	"github.com/danielhkuo/syncmeet/tally"
)

// NoVotes is printed instead of a table when nobody has voted.
const NoVotes = "No votes yet."

func votes(n int) string {
	return humanize.Comma(int64(n)) + " " + english.PluralWord(n, "vote", "")
}

// Results writes the tally of a poll: counts per slot in the order the slots
// were first voted for, then the decision and how a tie was settled.
func Results(w io.Writer, poll models.Poll, r tally.Result) error {
	var b strings.Builder

	fmt.Fprintln(&b, poll.Title)
	if r.Total == 0 {
		fmt.Fprintln(&b, NoVotes)
		_, err := io.WriteString(w, b.String())
		return err
	}

	fmt.Fprintf(&b, "%s from %s\n\n", votes(r.Total), english.Plural(voterCount(r), "voter", ""))

	tw := tabwriter.NewWriter(&b, 0, 0, 3, ' ', 0)
	for _, slot := range r.Order {
		label := slot
		if !slices.Contains(poll.Slots, slot) {
			label += " (not a candidate)"
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", label, votes(r.Counts[slot]), english.WordSeries(r.Voters[slot], "and"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(&b, "\nDecision: %s\n", r.Decision)
	if r.TieBroken {
		fmt.Fprintln(&b, tieNote(r))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func tieNote(r tally.Result) string {
	tied := fmt.Sprintf("Tie between %s", english.WordSeries(r.Contenders, "and"))
	if len(r.PriorityBacked) > 0 {
		return fmt.Sprintf("%s broken by priority %s %s.",
			tied,
			english.PluralWord(len(r.PriorityBacked), "voter", ""),
			english.WordSeries(r.PriorityBacked, "and"))
	}
	return tied + "; no priority voter backed a tied slot, so the earliest one wins."
}

func voterCount(r tally.Result) int {
	seen := make(map[string]bool)
	for _, voters := range r.Voters {
		for _, v := range voters {
			seen[emails.Canonical(v)] = true
		}
	}
	return len(seen)
}

// Polls lists an organizer's polls, newest first as the store returns them.
func Polls(w io.Writer, polls []models.OrganizerPollSummary, now time.Time) error {
	if len(polls) == 0 {
		_, err := io.WriteString(w, "No polls yet.\n")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, p := range polls {
		sent := "not sent"
		if p.SentAt != nil {
			sent = "sent " + humanize.RelTime(*p.SentAt, now, "ago", "from now")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\tcreated %s\t%s\n",
			p.PollID,
			p.Title,
			votes(p.VoteCount),
			humanize.RelTime(p.CreatedAt, now, "ago", "from now"),
			sent,
		)
	}
	return tw.Flush()
}
