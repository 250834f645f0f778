package budget

import (
	"github.com/Antonio-217/controle-financeiro/internal/models"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// targetFractions is the share of income each bucket is allowed.
	targetFractions = map[models.CategoryGroup]decimal.Decimal{
		models.CategoryGroupNeeds:   decimal.RequireFromString("0.50"),
		models.CategoryGroupWants:   decimal.RequireFromString("0.30"),
		models.CategoryGroupSavings: decimal.RequireFromString("0.20"),
	}
)

// TargetFraction returns the share of income allotted to group, or zero for
// an unknown group.
func TargetFraction(group models.CategoryGroup) decimal.Decimal {
	return targetFractions[group]
}

// Summary is the aggregate of one set of transactions.
type Summary struct {
	Income  decimal.Decimal                          `json:"income"`
	Expense decimal.Decimal                          `json:"expense"`
	Balance decimal.Decimal                          `json:"balance"`
	Totals  map[models.CategoryGroup]decimal.Decimal `json:"totals"`
}

// Total returns the expense total of one bucket.
func (s Summary) Total(group models.CategoryGroup) decimal.Decimal {
	return s.Totals[group]
}

// Aggregate sums records in a single pass. Income records add to Income;
// every other record is an expense and, when tagged with a known bucket,
// also adds to that bucket's total. The result does not depend on order.
func Aggregate(records []models.Transaction) Summary {
	s := Summary{
		Income:  decimal.Zero,
		Expense: decimal.Zero,
		Totals:  make(map[models.CategoryGroup]decimal.Decimal, len(models.CategoryGroups)),
	}
	for _, g := range models.CategoryGroups {
		s.Totals[g] = decimal.Zero
	}

	for i := range records {
		r := &records[i]
		if r.IsIncome() {
			s.Income = s.Income.Add(r.Amount)
			continue
		}
		s.Expense = s.Expense.Add(r.Amount)
		if group, ok := r.BudgetGroup(); ok {
			s.Totals[group] = s.Totals[group].Add(r.Amount)
		}
	}

	s.Balance = s.Income.Sub(s.Expense)
	return s
}

// Target returns how much of income the bucket may spend.
func Target(income decimal.Decimal, group models.CategoryGroup) decimal.Decimal {
	return income.Mul(TargetFraction(group)).Round(2)
}

// PercentOfTarget returns total as a percentage of the bucket's target,
// clamped to [0, 100] and rounded to two places. A zero target divides by 1.
func PercentOfTarget(total, income decimal.Decimal, group models.CategoryGroup) decimal.Decimal {
	return percent(total, Target(income, group))
}

func percent(part, whole decimal.Decimal) decimal.Decimal {
	denominator := whole
	if !denominator.IsPositive() {
		denominator = decimal.NewFromInt(1)
	}
	p := part.Div(denominator).Mul(hundred)
	if p.GreaterThan(hundred) {
		p = hundred
	}
	if p.IsNegative() {
		p = decimal.Zero
	}
	return p.Round(2)
}

// BucketCard is the per-bucket view of a summary.
type BucketCard struct {
	Group      models.CategoryGroup `json:"group"`
	Total      decimal.Decimal      `json:"total"`
	Target     decimal.Decimal      `json:"target"`
	Percent    decimal.Decimal      `json:"percent"`
	OverTarget bool                 `json:"over_target"`
}

// Buckets returns one card per bucket in display order.
func (s Summary) Buckets() []BucketCard {
	cards := make([]BucketCard, 0, len(models.CategoryGroups))
	for _, g := range models.CategoryGroups {
		total := s.Total(g)
		target := Target(s.Income, g)
		cards = append(cards, BucketCard{
			Group:      g,
			Total:      total,
			Target:     target,
			Percent:    percent(total, target),
			OverTarget: target.IsPositive() && total.GreaterThan(target),
		})
	}
	return cards
}
