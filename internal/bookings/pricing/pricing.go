// Package pricing derives booking totals from their components.
//
// The stored pricing snapshot always satisfies
//
//	total     = base + sum(charges) + taxes - discount
//	remaining = max(total - advancePaid, 0)
//	overpaid  = max(advancePaid - total, 0)
package pricing

import (
	"errors"
	"fmt"
	"math"

	"eventhub/pkg/model"
)

var ErrInvalidPricingInput = errors.New("invalid pricing input")

type Input struct {
	BaseAmount        *int64
	AdditionalCharges []model.Charge
	Taxes             int64
	Discount          int64
	AdvancePaid       int64
}

type Result struct {
	TotalAmount     int64
	RemainingAmount int64
	OverpaidAmount  int64
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPricingInput, fmt.Sprintf(format, args...))
}

func Calculate(in Input) (Result, error) {
	if in.BaseAmount == nil {
		return Result{}, invalid("base amount is required")
	}
	base := *in.BaseAmount
	if base < 0 {
		return Result{}, invalid("base amount must not be negative")
	}
	if in.Taxes < 0 {
		return Result{}, invalid("taxes must not be negative")
	}
	if in.Discount < 0 {
		return Result{}, invalid("discount must not be negative")
	}
	if in.AdvancePaid < 0 {
		return Result{}, invalid("advance paid must not be negative")
	}

	var charges int64
	for i, c := range in.AdditionalCharges {
		if c.Amount < 0 {
			return Result{}, invalid("additional charge %d (%s) must not be negative", i, c.Name)
		}
		if c.Amount > math.MaxInt64-charges {
			return Result{}, invalid("additional charges overflow")
		}
		charges += c.Amount
	}

	if charges > math.MaxInt64-base || in.Taxes > math.MaxInt64-base-charges {
		return Result{}, invalid("gross amount overflows")
	}
	gross := base + charges + in.Taxes
	if in.Discount > gross {
		return Result{}, invalid("discount %d exceeds gross amount %d", in.Discount, gross)
	}

	total := gross - in.Discount
	res := Result{TotalAmount: total}
	if in.AdvancePaid >= total {
		res.OverpaidAmount = in.AdvancePaid - total
	} else {
		res.RemainingAmount = total - in.AdvancePaid
	}
	return res, nil
}

// Apply recomputes the derived fields of p from its components.
// p is left untouched when the components are invalid.
func Apply(p *model.Pricing) error {
	base := p.BaseAmount
	res, err := Calculate(Input{
		BaseAmount:        &base,
		AdditionalCharges: p.AdditionalCharges,
		Taxes:             p.Taxes,
		Discount:          p.Discount,
		AdvancePaid:       p.AdvancePaid,
	})
	if err != nil {
		return err
	}
	p.TotalAmount = res.TotalAmount
	p.RemainingAmount = res.RemainingAmount
	p.OverpaidAmount = res.OverpaidAmount
	return nil
}
