package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AmountsModifier computes a new Amounts value from a base by applying
// absolute or fraction-of-base adjustments. The base Amounts is never mutated.
//
// Fraction-derived amounts are fixed at the time the setter is called: a later
// UpdateBaseAmount does not rescale them. Split flows rely on this snapshot
// behaviour so that an already-applied tax does not silently change when the
// base changes between rounds.
type AmountsModifier struct {
	baseAmount        int64
	currency          string
	additionalAmounts map[string]int64
	baseUpdated       bool
	modified          map[string]struct{}
}

// NewAmountsModifier returns a modifier seeded with the given base Amounts.
func NewAmountsModifier(base Amounts) *AmountsModifier {
	return &AmountsModifier{
		baseAmount:        base.BaseAmountValue(),
		currency:          base.Currency(),
		additionalAmounts: base.AdditionalAmounts(),
	}
}

// UpdateBaseAmount replaces the base amount. Fraction-derived additional
// amounts already set keep their computed values.
func (m *AmountsModifier) UpdateBaseAmount(baseAmount int64) error {
	if baseAmount < 0 {
		return ErrNegativeAmount
	}
	if baseAmount != m.baseAmount {
		m.baseAmount = baseAmount
		m.baseUpdated = true
	}
	return nil
}

// SetAdditionalAmount stores an absolute value under id, replacing any prior
// value. A zero value removes the entry.
func (m *AmountsModifier) SetAdditionalAmount(id string, value int64) error {
	if value < 0 {
		return fmt.Errorf("additional amount %q: %w", id, ErrNegativeAmount)
	}
	m.setAdditional(id, value)
	return nil
}

// SetAdditionalAmountAsBaseFraction computes round-half-up(base * fraction)
// and stores it under id. The fraction must be in [0, 1]. The value is
// computed now and not recomputed on later base changes.
func (m *AmountsModifier) SetAdditionalAmountAsBaseFraction(id string, fraction float64) error {
	if fraction < 0 || fraction > 1 {
		return fmt.Errorf("fraction %v for %q out of range [0, 1]", fraction, id)
	}
	// decimal.Round rounds half away from zero, which for non-negative
	// amounts is exactly the round-half-up rule shared across participants.
	value := decimal.NewFromInt(m.baseAmount).
		Mul(decimal.NewFromFloat(fraction)).
		Round(0).
		IntPart()
	m.setAdditional(id, value)
	return nil
}

func (m *AmountsModifier) setAdditional(id string, value int64) {
	if m.additionalAmounts == nil {
		m.additionalAmounts = make(map[string]int64)
	}
	if value == 0 {
		delete(m.additionalAmounts, id)
	} else {
		m.additionalAmounts[id] = value
	}
	m.markModified(id)
}

// modifiedIDs tracks which identifiers were adjusted so HasModifications can
// distinguish a no-op modifier from one with pending changes.
func (m *AmountsModifier) markModified(id string) {
	if m.modified == nil {
		m.modified = make(map[string]struct{})
	}
	m.modified[id] = struct{}{}
}

// HasModifications reports whether any adjustment is pending. Callers use it
// to avoid emitting a no-op "amounts changed" signal.
func (m *AmountsModifier) HasModifications() bool {
	return m.baseUpdated || len(m.modified) > 0
}

// Build materialises the final Amounts. Calling Build repeatedly without
// intervening mutation yields equal results.
func (m *AmountsModifier) Build() (Amounts, error) {
	return NewAmountsWithAdditional(m.baseAmount, m.currency, m.additionalAmounts)
}
