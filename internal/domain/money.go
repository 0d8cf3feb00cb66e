package domain

import "github.com/shopspring/decimal"

// LineTotal returns quantity*price rounded to paise/cents without float drift
func LineTotal(quantity int, price float64) float64 {
	total := decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(quantity)))
	f, _ := total.Round(2).Float64()
	return f
}

// SumTotals adds line totals using decimal arithmetic
func SumTotals(totals ...float64) float64 {
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(decimal.NewFromFloat(t))
	}
	f, _ := sum.Round(2).Float64()
	return f
}
