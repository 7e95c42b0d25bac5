// Package scoring computes points for solved challenges.
//
// Scoring is a pure function of the elapsed solve time and the current combo
// streak. It never reads the clock itself, so it can be tested without timers.
package scoring

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tier awards Points to answers given within the Within duration (inclusive).
type Tier struct {
	Within time.Duration `json:"within"`
	Points int           `json:"points"`
}

// Table is an ordered list of tiers, fastest first, plus the points awarded
// when no tier matches.
type Table struct {
	Tiers    []Tier `json:"tiers"`
	Fallback int    `json:"fallback"`
}

// Default is the standard tier table: ≤3s 100, ≤5s 75, ≤8s 50, otherwise 25.
var Default = Table{
	Tiers: []Tier{
		{Within: 3 * time.Second, Points: 100},
		{Within: 5 * time.Second, Points: 75},
		{Within: 8 * time.Second, Points: 50},
	},
	Fallback: 25,
}

// comboStep is the multiplier added per consecutive correct answer.
var comboStep = decimal.RequireFromString("0.5")

// Points returns the base points for an answer given after elapsed using the
// Default table.
func Points(elapsed time.Duration) int {
	return Default.Points(elapsed)
}

// Points returns the base points for an answer given after elapsed.
// Tier bounds are inclusive: exactly 3s lands in the 3s tier.
func (t Table) Points(elapsed time.Duration) int {
	for _, tier := range t.Tiers {
		if elapsed <= tier.Within {
			return tier.Points
		}
	}
	return t.Fallback
}

// Multiplier returns the combo multiplier 1 + combo*0.5.
func Multiplier(combo int) decimal.Decimal {
	if combo < 0 {
		combo = 0
	}
	return decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(combo)).Mul(comboStep))
}

// Award returns floor(base * Multiplier(combo)).
func Award(base, combo int) int {
	if base <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(base)).Mul(Multiplier(combo)).Floor().IntPart())
}
