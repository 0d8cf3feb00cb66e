package domain

import "time"

// ReviewState is the state of a confirmation session
type ReviewState string

const (
	StateReviewing ReviewState = "reviewing"
	StateCommitted ReviewState = "committed"
	StateCancelled ReviewState = "cancelled"
)

// Terminal reports whether no further transitions are accepted
func (s ReviewState) Terminal() bool {
	return s == StateCommitted || s == StateCancelled
}

// Session is the snapshot a user edits between matching and cart-add
type Session struct {
	ID             string          `json:"id"`
	UserID         string          `json:"userId"`
	State          ReviewState     `json:"state"`
	MatchedItems   []MatchedItem   `json:"matchedItems"`
	UnmatchedLines []UnmatchedLine `json:"unmatchedLines"`
	Total          float64         `json:"total"`
	Version        int             `json:"version"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// ReconciledCart is the terminal artifact handed to the cart collaborator
type ReconciledCart struct {
	SessionID string        `json:"sessionId"`
	UserID    string        `json:"userId"`
	Items     []MatchedItem `json:"items"`
	Total     float64       `json:"total"`
}

// CommitResult reports what the cart collaborator accepted
type CommitResult struct {
	Cart   ReconciledCart  `json:"cart"`
	Added  int             `json:"added"`
	Failed []CommitFailure `json:"failed"`
}

// CommitFailure describes one item the cart rejected
type CommitFailure struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`
}
