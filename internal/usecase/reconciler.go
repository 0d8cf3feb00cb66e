package usecase

import (
	"fmt"

	"github.com/listcart/backend/internal/domain"
)

// Event is a user transition applied to a reconciliation session
type Event interface {
	eventName() string
}

// EditQuantity sets the quantity of a matched item (never below 1)
type EditQuantity struct {
	Index    int
	Quantity int
}

// SwapAlternative replaces a matched item's product with one of its alternatives
type SwapAlternative struct {
	Index       int
	Alternative domain.AlternativeCandidate
}

// RemoveMatched demotes a matched item back to an unmatched line
type RemoveMatched struct {
	Index int
}

// SkipUnmatched drops an unmatched line for good
type SkipUnmatched struct {
	Index int
}

// ResolveUnmatched completes a manual resolution or accepted suggestion.
// The line is addressed by id because indices can shift while the lookup runs.
type ResolveUnmatched struct {
	LineID     string
	Product    domain.CatalogProduct
	Confidence float64
	ItemName   string
}

// Commit closes the session and hands the matched items to the cart
type Commit struct{}

// Cancel closes the session and discards every edit
type Cancel struct{}

func (EditQuantity) eventName() string     { return "edit_quantity" }
func (SwapAlternative) eventName() string  { return "swap_alternative" }
func (RemoveMatched) eventName() string    { return "remove_matched" }
func (SkipUnmatched) eventName() string    { return "skip_unmatched" }
func (ResolveUnmatched) eventName() string { return "resolve_unmatched" }
func (Commit) eventName() string           { return "commit" }
func (Cancel) eventName() string           { return "cancel" }

// EventName returns a short label for logging
func EventName(e Event) string {
	return e.eventName()
}

// Reduce applies one event to a session snapshot and returns the next snapshot.
// The input is never modified; on error the returned session is the input.
func Reduce(s domain.Session, e Event) (domain.Session, error) {
	if s.State.Terminal() {
		return s, domain.ErrSessionClosed
	}

	next := cloneSession(s)

	switch ev := e.(type) {
	case EditQuantity:
		if !inRange(ev.Index, len(next.MatchedItems)) {
			return s, fmt.Errorf("%w: matched item %d", domain.ErrIndexOutOfRange, ev.Index)
		}
		item := &next.MatchedItems[ev.Index]
		item.Quantity = max(1, ev.Quantity)
		item.Total = domain.LineTotal(item.Quantity, item.Price)

	case SwapAlternative:
		if !inRange(ev.Index, len(next.MatchedItems)) {
			return s, fmt.Errorf("%w: matched item %d", domain.ErrIndexOutOfRange, ev.Index)
		}
		item := &next.MatchedItems[ev.Index]
		item.ProductID = ev.Alternative.ProductID
		item.Name = ev.Alternative.Name
		item.Variant = ev.Alternative.Variant
		item.Price = ev.Alternative.Price
		item.Image = ev.Alternative.Image
		item.Confidence = ev.Alternative.Confidence
		item.Alternatives = []domain.AlternativeCandidate{}
		item.RequiresConfirmation = false
		item.Total = domain.LineTotal(item.Quantity, item.Price)

	case RemoveMatched:
		if !inRange(ev.Index, len(next.MatchedItems)) {
			return s, fmt.Errorf("%w: matched item %d", domain.ErrIndexOutOfRange, ev.Index)
		}
		removed := next.MatchedItems[ev.Index]
		next.MatchedItems = append(next.MatchedItems[:ev.Index], next.MatchedItems[ev.Index+1:]...)
		next.UnmatchedLines = append(next.UnmatchedLines, domain.UnmatchedLine{
			ID:            LineID(fmt.Sprintf("%s:removed:%d:%s", s.ID, s.Version, removed.OriginalText)),
			Text:          removed.OriginalText,
			ItemName:      removed.ItemName,
			Quantity:      removed.RequestedQuantity,
			Unit:          removed.Unit,
			SearchResults: []domain.SuggestedCandidate{},
		})

	case SkipUnmatched:
		if !inRange(ev.Index, len(next.UnmatchedLines)) {
			return s, fmt.Errorf("%w: unmatched line %d", domain.ErrIndexOutOfRange, ev.Index)
		}
		next.UnmatchedLines = append(next.UnmatchedLines[:ev.Index], next.UnmatchedLines[ev.Index+1:]...)

	case ResolveUnmatched:
		pos := findLine(next.UnmatchedLines, ev.LineID)
		if pos < 0 {
			return s, fmt.Errorf("%w: unmatched line %s", domain.ErrIndexOutOfRange, ev.LineID)
		}
		line := next.UnmatchedLines[pos]
		next.UnmatchedLines = append(next.UnmatchedLines[:pos], next.UnmatchedLines[pos+1:]...)
		next.MatchedItems = append(next.MatchedItems, resolvedItem(line, ev))

	case Commit:
		if len(next.MatchedItems) == 0 {
			return s, domain.ErrNothingToCommit
		}
		next.State = domain.StateCommitted

	case Cancel:
		next.State = domain.StateCancelled

	default:
		return s, fmt.Errorf("%w: unknown event %T", domain.ErrInvalidRequest, e)
	}

	next.Total = sessionTotal(next.MatchedItems)
	next.Version++
	return next, nil
}

// ReconciledCartFrom builds the cart artifact of a committed session
func ReconciledCartFrom(s domain.Session) domain.ReconciledCart {
	items := make([]domain.MatchedItem, len(s.MatchedItems))
	copy(items, s.MatchedItems)
	return domain.ReconciledCart{
		SessionID: s.ID,
		UserID:    s.UserID,
		Items:     items,
		Total:     sessionTotal(items),
	}
}

// resolvedItem builds a matched item from an explicitly chosen product
func resolvedItem(line domain.UnmatchedLine, ev ResolveUnmatched) domain.MatchedItem {
	requested := max(1, line.Quantity)
	variant := ResolveVariant(ev.Product, requested, line.Unit)
	quantity := ClampQuantity(requested, variant.Stock)

	itemName := ev.ItemName
	if itemName == "" {
		itemName = line.ItemName
	}

	return domain.MatchedItem{
		ProductID:            ev.Product.ID,
		Name:                 ev.Product.Name,
		Variant:              variant.Name,
		Quantity:             quantity,
		Price:                variant.Price,
		Total:                domain.LineTotal(quantity, variant.Price),
		Image:                ev.Product.Image,
		Confidence:           ev.Confidence,
		OriginalText:         line.Text,
		ItemName:             itemName,
		Unit:                 line.Unit,
		RequestedQuantity:    requested,
		Alternatives:         []domain.AlternativeCandidate{},
		RequiresConfirmation: false,
	}
}

func cloneSession(s domain.Session) domain.Session {
	next := s
	next.MatchedItems = make([]domain.MatchedItem, len(s.MatchedItems))
	for i, item := range s.MatchedItems {
		if item.Alternatives != nil {
			item.Alternatives = append(make([]domain.AlternativeCandidate, 0, len(item.Alternatives)), item.Alternatives...)
		}
		next.MatchedItems[i] = item
	}
	next.UnmatchedLines = make([]domain.UnmatchedLine, len(s.UnmatchedLines))
	for i, line := range s.UnmatchedLines {
		if line.SearchResults != nil {
			line.SearchResults = append(make([]domain.SuggestedCandidate, 0, len(line.SearchResults)), line.SearchResults...)
		}
		next.UnmatchedLines[i] = line
	}
	return next
}

func sessionTotal(items []domain.MatchedItem) float64 {
	totals := make([]float64, len(items))
	for i, item := range items {
		totals[i] = item.Total
	}
	return domain.SumTotals(totals...)
}

func findLine(lines []domain.UnmatchedLine, id string) int {
	for i, l := range lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
