package policy

import (
	"math"

	"stablebook/pkg/model"
)

type Quote struct {
	TotalPrice       float64
	CommissionAmount float64
}

// HorsePrice is the horse's hourly rate, or the platform default.
func (d Defaults) HorsePrice(horse *model.Horse) float64 {
	if horse.PricePerHour != nil {
		return *horse.PricePerHour
	}
	return d.PricePerHour
}

func (d Defaults) StableCommissionRate(stable *model.Stable) float64 {
	if stable.CommissionRate != nil {
		return *stable.CommissionRate
	}
	return d.CommissionRate
}

// Price computes in whole cents, rounding half away from zero at each step,
// so 2h at 100/h with 0.15 commission is exactly 200 and 30.
func Price(w Window, pricePerHour, commissionRate float64) Quote {
	priceCents := math.Round(w.Duration().Hours() * pricePerHour * 100)
	commissionCents := math.Round(priceCents * commissionRate)
	return Quote{
		TotalPrice:       priceCents / 100,
		CommissionAmount: commissionCents / 100,
	}
}

func (d Defaults) Quote(w Window, horse *model.Horse, stable *model.Stable) Quote {
	return Price(w, d.HorsePrice(horse), d.StableCommissionRate(stable))
}
