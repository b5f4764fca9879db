// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package tally

import "github.com/danielhkuo/syncmeet/emails"

// Vote is one recorded (voter, slot) pair for a single poll.
type Vote struct {
	Email string
	Slot  string
}

// Result is the derived tally for a poll.
type Result struct {
	// Counts maps slot -> number of votes.
	Counts map[string]int
	// Voters maps slot -> voter emails in arrival order.
	Voters map[string][]string
	// Order lists slots in the order they were first observed.
	Order []string
	// Contenders are the slots sharing the maximum count, in Order.
	Contenders []string
	// Total is the number of votes counted.
	Total int

	HasDecision bool
	Decision    string
	TieBroken   bool
	// PriorityBacked holds the priority voters that decided a tie.
	PriorityBacked []string
}

// Compute counts votes per slot and picks a decision.
//
// The slot with the most votes wins. When several slots tie, the first of
// them (in first-observed order) backed by at least one priority voter wins;
// with no such slot the first tied slot wins. Zero votes gives no decision.
// Slots that are not poll candidates are counted as their own bucket.
func Compute(votes []Vote, priority []string) Result {
	res := Result{
		Counts: make(map[string]int),
		Voters: make(map[string][]string),
		Order:  []string{},
	}

	for _, v := range votes {
		if _, seen := res.Counts[v.Slot]; !seen {
			res.Order = append(res.Order, v.Slot)
		}
		res.Counts[v.Slot]++
		res.Voters[v.Slot] = append(res.Voters[v.Slot], v.Email)
		res.Total++
	}

	if res.Total == 0 {
		return res
	}

	maxVotes := 0
	for _, slot := range res.Order {
		if res.Counts[slot] > maxVotes {
			maxVotes = res.Counts[slot]
		}
	}

	for _, slot := range res.Order {
		if res.Counts[slot] == maxVotes {
			res.Contenders = append(res.Contenders, slot)
		}
	}

	res.HasDecision = true
	res.Decision = res.Contenders[0]
	if len(res.Contenders) == 1 {
		return res
	}

	res.TieBroken = true
	prio := prioritySet(priority)
	if len(prio) == 0 {
		return res
	}

	for _, slot := range res.Contenders {
		backers := priorityVoters(res.Voters[slot], prio)
		if len(backers) > 0 {
			res.Decision = slot
			res.PriorityBacked = backers
			break
		}
	}

	return res
}

// Dedupe keeps only the latest vote of each voter. The kept vote takes the
// position of that latest submission.
func Dedupe(votes []Vote) []Vote {
	last := make(map[string]int, len(votes))
	for i, v := range votes {
		last[emails.Canonical(v.Email)] = i
	}

	out := make([]Vote, 0, len(last))
	for i, v := range votes {
		if last[emails.Canonical(v.Email)] == i {
			out = append(out, v)
		}
	}
	return out
}

func prioritySet(priority []string) map[string]bool {
	set := make(map[string]bool, len(priority))
	for _, p := range priority {
		if c := emails.Canonical(p); c != "" {
			set[c] = true
		}
	}
	return set
}

func priorityVoters(voters []string, prio map[string]bool) []string {
	var backers []string
	seen := make(map[string]bool)
	for _, v := range voters {
		c := emails.Canonical(v)
		if prio[c] && !seen[c] {
			seen[c] = true
			backers = append(backers, v)
		}
	}
	return backers
}
