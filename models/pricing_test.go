package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func activePromo(promoType string, value int64) Promotion {
	now := time.Now()
	return Promotion{
		Type:      promoType,
		Value:     value,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(time.Hour),
		IsActive:  true,
	}
}

func TestPromotionDiscount(t *testing.T) {
	tests := []struct {
		name      string
		basePrice int64
		promo     *Promotion
		want      int64
	}{
		{"nil promotion", 10000, nil, 0},
		{"twenty percent", 10000, &Promotion{Type: PromotionPercentage, Value: 20}, 2000},
		{"hundred percent", 10000, &Promotion{Type: PromotionPercentage, Value: 100}, 10000},
		{"fixed amount", 10000, &Promotion{Type: PromotionFixed, Value: 1500}, 1500},
		{"fixed clamped at price", 10000, &Promotion{Type: PromotionFixed, Value: 25000}, 10000},
		{"unknown type", 10000, &Promotion{Type: "BOGOF", Value: 50}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PromotionDiscount(tt.basePrice, tt.promo))
		})
	}
}

func TestApplyBestPromotionPicksHighestDiscount(t *testing.T) {
	promos := []Promotion{
		activePromo(PromotionPercentage, 10),
		activePromo(PromotionFixed, 3000),
		activePromo(PromotionPercentage, 20),
	}

	finalPrice, discount := ApplyBestPromotion(10000, promos, time.Now())
	assert.Equal(t, int64(3000), discount)
	assert.Equal(t, int64(7000), finalPrice)
}

func TestApplyBestPromotionIgnoresInactiveAndExpired(t *testing.T) {
	now := time.Now()

	inactive := activePromo(PromotionPercentage, 50)
	inactive.IsActive = false

	expired := activePromo(PromotionPercentage, 40)
	expired.StartDate = now.Add(-48 * time.Hour)
	expired.EndDate = now.Add(-24 * time.Hour)

	upcoming := activePromo(PromotionPercentage, 30)
	upcoming.StartDate = now.Add(24 * time.Hour)
	upcoming.EndDate = now.Add(48 * time.Hour)

	finalPrice, discount := ApplyBestPromotion(10000, []Promotion{inactive, expired, upcoming}, now)
	assert.Equal(t, int64(0), discount)
	assert.Equal(t, int64(10000), finalPrice)
}

func TestApplyBestPromotionExampleScenario(t *testing.T) {
	// Product priced 10000 with an active 20%-off promotion lists at 8000.
	promos := []Promotion{activePromo(PromotionPercentage, 20)}
	finalPrice, discount := ApplyBestPromotion(10000, promos, time.Now())
	assert.Equal(t, int64(8000), finalPrice)
	assert.Equal(t, int64(2000), discount)
}
