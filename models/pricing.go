package models

import "time"

// PromotionDiscount returns the per-unit discount a promotion grants on
// basePrice, in minor units. A fixed discount is clamped so the final
// price never drops below zero.
func PromotionDiscount(basePrice int64, promo *Promotion) int64 {
	if promo == nil {
		return 0
	}
	switch promo.Type {
	case PromotionPercentage:
		return basePrice * promo.Value / 100
	case PromotionFixed:
		if promo.Value > basePrice {
			return basePrice
		}
		return promo.Value
	}
	return 0
}

// BestPromotion picks the single currently-active promotion with the
// highest discount for basePrice, or nil when none applies.
func BestPromotion(basePrice int64, promos []Promotion, now time.Time) *Promotion {
	var best *Promotion
	var bestDiscount int64
	for i := range promos {
		if !promos[i].ActiveAt(now) {
			continue
		}
		d := PromotionDiscount(basePrice, &promos[i])
		if d > bestDiscount {
			best = &promos[i]
			bestDiscount = d
		}
	}
	return best
}

// ApplyBestPromotion is the one pricing function every read path goes
// through: catalog, cart, favorites, order creation and seller views all
// call it instead of re-deriving promotion math.
func ApplyBestPromotion(basePrice int64, promos []Promotion, now time.Time) (finalPrice, discount int64) {
	discount = PromotionDiscount(basePrice, BestPromotion(basePrice, promos, now))
	return basePrice - discount, discount
}
