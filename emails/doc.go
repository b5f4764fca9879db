// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package emails turns pasted recipient text into email addresses.

Normalize runs two passes: a formatting pass that rewrites ".com" followed by
whitespace into ".com, ", then a scan that keeps every substring shaped like
local@domain.tld and drops everything else:

	emails.Normalize("a@x.com b@y.com")  // ["a@x.com", "b@y.com"]

It is a pure extraction: order is preserved, duplicates are kept, and text
without addresses gives an empty slice. Use Unique when set semantics are
wanted.
*/
package emails
