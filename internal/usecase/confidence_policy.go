package usecase

// Policy defaults
const (
	DefaultMatchThreshold   = 0.7 // best candidate must be closer than this to match
	DefaultConfirmThreshold = 0.8 // matches below this confidence are flagged
	DefaultMaxAlternatives  = 2

	// NoAlternatives turns runner-ups off; zero means the default
	NoAlternatives = -1
)

// PolicyConfig holds the thresholds of the confidence and stock policy
type PolicyConfig struct {
	MatchThreshold   float64
	ConfirmThreshold float64
	MaxAlternatives  int
}

// Policy turns search distances into match decisions
type Policy struct {
	matchThreshold   float64
	confirmThreshold float64
	maxAlternatives  int
}

// NewPolicy creates a policy, filling zero values with defaults.
// A negative MaxAlternatives attaches none.
func NewPolicy(config PolicyConfig) Policy {
	p := Policy{
		matchThreshold:   config.MatchThreshold,
		confirmThreshold: config.ConfirmThreshold,
		maxAlternatives:  config.MaxAlternatives,
	}
	if p.matchThreshold <= 0 {
		p.matchThreshold = DefaultMatchThreshold
	}
	if p.confirmThreshold <= 0 {
		p.confirmThreshold = DefaultConfirmThreshold
	}
	switch {
	case p.maxAlternatives < 0:
		p.maxAlternatives = 0
	case p.maxAlternatives == 0:
		p.maxAlternatives = DefaultMaxAlternatives
	}
	return p
}

// Confidence is 1 - distance
func (p Policy) Confidence(distance float64) float64 {
	return 1 - distance
}

// Accept reports whether a candidate at this distance is a match
func (p Policy) Accept(distance float64) bool {
	return distance < p.matchThreshold
}

// RequiresConfirmation flags uncertain matches for the UI; it never blocks a match
func (p Policy) RequiresConfirmation(confidence float64) bool {
	return confidence < p.confirmThreshold
}

// MaxAlternatives is the number of runner-ups attached to a match
func (p Policy) MaxAlternatives() int {
	return p.maxAlternatives
}

// ClampQuantity limits the requested quantity to available stock.
// Zero stock leaves the request unclamped.
func ClampQuantity(requested, availableStock int) int {
	if availableStock > 0 && requested > availableStock {
		return availableStock
	}
	return requested
}
