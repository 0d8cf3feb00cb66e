package usecase

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/listcart/backend/internal/domain"
)

// Unit-word families, longest alternatives first so "liter" is not cut to "l"
const (
	massUnits   = `kilograms?|kg|grams?|g`
	volumeUnits = `liters?|litres?|milliliters?|millilitres?|ml|l`
	countUnits  = `pcs|pieces?|packets?|packs?`
	dozenUnits  = `dozens?`
)

// quantityRule pairs a number with one unit-word family
type quantityRule struct {
	name    string
	pattern *regexp.Regexp
}

// quantityRules are tried in order; the first one that matches anywhere wins.
// Unit-bearing rules precede the bare integer so "2kg" keeps its unit.
// A stray plural "s" ("2kgs") is accepted and dropped from the unit.
var quantityRules = []quantityRule{
	{name: "mass", pattern: regexp.MustCompile(`\b(\d+)\s*(` + massUnits + `)s?\b`)},
	{name: "volume", pattern: regexp.MustCompile(`\b(\d+)\s*(` + volumeUnits + `)s?\b`)},
	{name: "count", pattern: regexp.MustCompile(`\b(\d+)\s*(` + countUnits + `)s?\b`)},
	{name: "dozen", pattern: regexp.MustCompile(`\b(\d+)\s*(` + dozenUnits + `)s?\b`)},
	{name: "bare", pattern: regexp.MustCompile(`(\d+)`)},
}

// quantityUnitRegex matches any number followed by a unit word from any family
var quantityUnitRegex = regexp.MustCompile(
	`\b\d+\s*(?:` + massUnits + `|` + volumeUnits + `|` + countUnits + `|` + dozenUnits + `)s?\b`,
)

// Quantity is the number and unit pulled out of a line
type Quantity struct {
	Quantity int
	Unit     string
}

// ExtractQuantity returns the first quantity found by the ordered rules,
// or {1, ""} when the line carries no number at all.
func ExtractQuantity(normalized string) Quantity {
	for _, rule := range quantityRules {
		m := rule.pattern.FindStringSubmatch(normalized)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			// Overflowing digit runs are not quantities
			continue
		}
		unit := ""
		if len(m) > 2 {
			unit = strings.ToLower(strings.TrimSpace(m[2]))
		}
		return Quantity{Quantity: n, Unit: unit}
	}
	return Quantity{Quantity: 1, Unit: ""}
}

// ExtractItemName strips every number+unit substring, leaving the product phrase.
// Bare numbers are left in place.
func ExtractItemName(normalized string) string {
	name := quantityUnitRegex.ReplaceAllString(normalized, " ")
	name = multiSpaceRegex.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ExtractLine runs normalizer, quantity extractor and name extractor over one raw line
func ExtractLine(raw string) domain.ExtractedLine {
	normalized := NormalizeLine(raw)
	qty := ExtractQuantity(normalized)
	quantity := qty.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return domain.ExtractedLine{
		OriginalText: raw,
		Normalized:   normalized,
		ItemName:     ExtractItemName(normalized),
		Quantity:     quantity,
		Unit:         qty.Unit,
	}
}
