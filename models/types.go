package models

import "time"

// Organizer roles
const (
	RoleOrganizer = "organizer"
)

// Request types

type CreatePollRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Slots              []string `json:"slots"`
	Recipients         []string `json:"recipients"`
	Priority           []string `json:"priority"`
	AllowMultipleVotes *bool    `json:"allow_multiple_votes,omitempty"`
}

type SubmitVoteRequest struct {
	Email string `json:"email"`
	Slot  string `json:"slot"`
	// Title is what legacy vote links carry; it is only checked against
	// the poll when present.
	Title string `json:"title,omitempty"`
}

// Response types

type CreatePollResponse struct {
	PollID    string    `json:"poll_id"`
	AdminKey  string    `json:"admin_key"`
	CreatedAt time.Time `json:"created_at"`
}

type SubmitVoteResponse struct {
	VoteID     string `json:"vote_id"`
	Message    string `json:"message"`
	Replayed   bool   `json:"replayed"`
	Replaced   bool   `json:"replaced"`
	Recognized bool   `json:"recognized"`
}

type MarkSentResponse struct {
	SentAt time.Time `json:"sent_at"`
}

type VoteCountResponse struct {
	VoteCount int `json:"vote_count"`
}

type RegisterOrganizerResponse struct {
	OrganizerID string `json:"organizer_id"`
	IsNew       bool   `json:"is_new"`
}

// LastPollResponse reopens an organizer's newest poll, admin key included.
type LastPollResponse struct {
	PollWithRecipients
	AdminKey  string `json:"admin_key"`
	VoteCount int    `json:"vote_count"`
}

type GetMyPollsResponse struct {
	Polls []OrganizerPollSummary `json:"polls"`
}

// Domain types

type Poll struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Slots              []string   `json:"slots"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
	CreatedAt          time.Time  `json:"created_at"`
	SentAt             *time.Time `json:"sent_at,omitempty"`
}

// PollWithRecipients is the organizer's view of a poll.
type PollWithRecipients struct {
	Poll       Poll     `json:"poll"`
	Recipients []string `json:"recipients"`
	Priority   []string `json:"priority"`
}

type Vote struct {
	ID          string    `json:"id"`
	PollID      string    `json:"poll_id"`
	Email       string    `json:"email"`
	Slot        string    `json:"slot"`
	SubmittedAt time.Time `json:"submitted_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

type VoteList struct {
	PollID string `json:"poll_id"`
	Votes  []Vote `json:"votes"`
}

// Tally result types

type SlotCount struct {
	Slot       string   `json:"slot"`
	Votes      int      `json:"votes"`
	Voters     []string `json:"voters"`
	Recognized bool     `json:"recognized"` // false when the slot is not one of the poll's candidates
}

type ResultsResponse struct {
	Poll        Poll        `json:"poll"`
	Counts      []SlotCount `json:"counts"` // first-observed order
	HasDecision bool        `json:"has_decision"`
	Decision    *string     `json:"decision,omitempty"`
	TieBroken   bool        `json:"tie_broken"`
	// Priority voters that decided a tie
	PriorityBacked []string `json:"priority_backed,omitempty"`
	TotalVotes     int      `json:"total_votes"`
}

type OrganizerPollSummary struct {
	PollID    string     `json:"poll_id"`
	Title     string     `json:"title"`
	Role      string     `json:"role"`
	VoteCount int        `json:"vote_count"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
