package core

import "github.com/shopspring/decimal"

// Project simulates savings growth with monthly compounding and a
// fixed monthly contribution. It returns one balance per month over
// years*12 steps:
//
//	balance = balance*(1 + annualRatePct/100/12) + monthly
//
// years <= 0 produces an empty series. Negative rates are allowed and
// compound as decay. Pure and deterministic.
func Project(initial, monthly, annualRatePct decimal.Decimal, years int) []decimal.Decimal {
	if years <= 0 {
		return nil
	}
	monthlyRate := annualRatePct.
		Div(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(12))
	factor := decimal.NewFromInt(1).Add(monthlyRate)

	out := make([]decimal.Decimal, 0, years*12)
	balance := initial
	for i := 0; i < years*12; i++ {
		balance = balance.Mul(factor).Add(monthly)
		out = append(out, balance)
	}
	return out
}
