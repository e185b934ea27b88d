package monthly

import (
	"time"

	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// SPIFF APPLICATION
// =============================================================================

// AppliesTo reports whether this spiff covers the given product on the
// given date. The window is inclusive: an order on the end date still
// qualifies, an order the day after does not.
func (s Spiff) AppliesTo(product comp.ProductCode, orderDate time.Time) bool {
	if !s.IsActive || s.Product != product {
		return false
	}
	day := comp.DayOf(orderDate)
	if day.Before(comp.DayOf(s.StartDate)) {
		return false
	}
	if !s.EndDate.IsZero() && day.After(comp.DayOf(s.EndDate)) {
		return false
	}
	return true
}

// Bonus returns the spiff's contribution for one qualifying line: the
// flat incentive value, or the percentage applied to the commission base.
func (s Spiff) Bonus(base comp.Money) comp.Money {
	if s.IncentiveType == SpiffPercentage {
		return base.MulRatio(comp.Ratio{Value: s.IncentiveValue})
	}
	return comp.Money{Value: s.IncentiveValue}
}

// ApplySpiffs collects every matching spiff for a product/date and sums
// their bonuses additively, once per qualifying line.
func ApplySpiffs(spiffs []Spiff, product comp.ProductCode, orderDate time.Time, base comp.Money) ([]AppliedSpiff, comp.Money) {
	var applied []AppliedSpiff
	total := comp.ZeroMoney()
	for _, s := range spiffs {
		if !s.AppliesTo(product, orderDate) {
			continue
		}
		bonus := s.Bonus(base).Round()
		applied = append(applied, AppliedSpiff{
			Product:       s.Product,
			Name:          s.Name,
			IncentiveType: s.IncentiveType,
			Amount:        bonus,
		})
		total = total.Add(bonus)
	}
	return applied, total
}
