// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes vote counts and the final slot for a meeting poll.

	res := tally.Compute(votes, priority)
	if !res.HasDecision {
		// no votes yet
	}

# Ordering

Slots are examined in the order they first appear in the vote sequence, not
alphabetically and not by count. Callers must pass votes in arrival order;
tie-breaks are only reproducible under that order.

# Tie-break

Among slots sharing the maximum count, the first one with at least one vote
from a priority voter wins. A single priority vote is enough; the number of
priority votes is not compared. If no tied slot has priority backing, the
first tied slot wins. TieBroken is set whenever more than one slot tied.

Priority membership is compared case-insensitively.
*/
package tally
