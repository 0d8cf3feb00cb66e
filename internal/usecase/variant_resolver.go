package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/listcart/backend/internal/domain"
)

// DefaultVariantName labels a price taken from the product itself
const DefaultVariantName = "default"

// digitRunRegex splits a variant name at its first digit run
var digitRunRegex = regexp.MustCompile(`\d+`)

// VariantChoice is the price/stock selected for a matched product
type VariantChoice struct {
	Name  string
	Price float64
	Stock int
	// Matched is true when the unit (or exact size) selected the variant,
	// false when it is the product base or the first-variant fallback.
	Matched bool
}

// ResolveVariant picks the priced variant for an extracted quantity and unit.
//
// Policy, in order:
//  1. no variants: base price and stock, variant "default"
//  2. a variant whose compacted name equals "<quantity><unit>" (e.g. "2kg")
//  3. the first variant whose name contains the unit, or whose unit prefix
//     (text before the first digit run) is non-empty and contained in the unit
//  4. the first declared variant
func ResolveVariant(product domain.CatalogProduct, quantity int, unit string) VariantChoice {
	if len(product.Variants) == 0 {
		return VariantChoice{Name: DefaultVariantName, Price: product.BasePrice, Stock: product.Stock}
	}

	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit != "" {
		if v, ok := findExactSize(product.Variants, quantity, unit); ok {
			return choice(v, true)
		}
		if v, ok := findByUnit(product.Variants, unit); ok {
			return choice(v, true)
		}
	}

	return choice(product.Variants[0], false)
}

func findExactSize(variants []domain.Variant, quantity int, unit string) (domain.Variant, bool) {
	want := fmt.Sprintf("%d%s", quantity, unit)
	for _, v := range variants {
		if compactName(v.Name) == want {
			return v, true
		}
	}
	return domain.Variant{}, false
}

func findByUnit(variants []domain.Variant, unit string) (domain.Variant, bool) {
	for _, v := range variants {
		name := strings.ToLower(v.Name)
		if strings.Contains(name, unit) {
			return v, true
		}
		if prefix := unitPrefix(name); prefix != "" && strings.Contains(unit, prefix) {
			return v, true
		}
	}
	return domain.Variant{}, false
}

// unitPrefix returns the trimmed text before the first digit run of a variant name
func unitPrefix(name string) string {
	parts := digitRunRegex.Split(name, 2)
	return strings.TrimSpace(parts[0])
}

func compactName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "")
}

func choice(v domain.Variant, matched bool) VariantChoice {
	return VariantChoice{Name: v.Name, Price: v.Price, Stock: v.Stock, Matched: matched}
}
