package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Identifiers for common additional amounts.
const (
	AmountTip       = "tip"
	AmountTax       = "tax"
	AmountSurcharge = "surcharge"
	AmountCashback  = "cashback"
)

// Amounts represents a base amount together with a set of named additional
// amounts (tip, tax, surcharge, etc). All values share one currency and are
// expressed in minor currency units.
//
// An additional amount entry is never stored with value zero - absent means
// zero. Amounts values are immutable; derive new values via AmountsModifier.
type Amounts struct {
	baseAmount        int64
	additionalAmounts map[string]int64
	currency          string
}

// NewAmounts returns a validated Amounts with the given base value and no
// additional amounts.
func NewAmounts(baseAmount int64, currency string) (Amounts, error) {
	if baseAmount < 0 {
		return Amounts{}, ErrNegativeAmount
	}
	if len(currency) != 3 {
		return Amounts{}, fmt.Errorf("currency must be an ISO 4217 code: %q", currency)
	}
	return Amounts{baseAmount: baseAmount, currency: currency}, nil
}

// NewAmountsWithAdditional returns a validated Amounts with additional
// amounts. Zero-valued entries are dropped, negative entries are rejected.
func NewAmountsWithAdditional(baseAmount int64, currency string, additional map[string]int64) (Amounts, error) {
	a, err := NewAmounts(baseAmount, currency)
	if err != nil {
		return Amounts{}, err
	}
	for id, v := range additional {
		if v < 0 {
			return Amounts{}, fmt.Errorf("additional amount %q: %w", id, ErrNegativeAmount)
		}
		if v == 0 {
			continue
		}
		if a.additionalAmounts == nil {
			a.additionalAmounts = make(map[string]int64)
		}
		a.additionalAmounts[id] = v
	}
	return a, nil
}

// BaseAmountValue returns the base amount in minor currency units.
func (a Amounts) BaseAmountValue() int64 {
	return a.baseAmount
}

// BaseAmount returns the base amount as an Amount.
func (a Amounts) BaseAmount() Amount {
	return Amount{Value: a.baseAmount, Currency: a.currency}
}

// Currency returns the ISO 4217 currency code shared by all values.
func (a Amounts) Currency() string {
	return a.currency
}

// AdditionalAmountValue returns the value stored under id, or zero when absent.
func (a Amounts) AdditionalAmountValue(id string) int64 {
	return a.additionalAmounts[id]
}

// HasAdditionalAmount reports whether a non-zero value is stored under id.
func (a Amounts) HasAdditionalAmount(id string) bool {
	_, ok := a.additionalAmounts[id]
	return ok
}

// AdditionalAmounts returns a copy of the additional amount entries.
func (a Amounts) AdditionalAmounts() map[string]int64 {
	out := make(map[string]int64, len(a.additionalAmounts))
	for id, v := range a.additionalAmounts {
		out[id] = v
	}
	return out
}

// AdditionalAmountIdentifiers returns the sorted identifiers of all additional
// amounts.
func (a Amounts) AdditionalAmountIdentifiers() []string {
	ids := make([]string, 0, len(a.additionalAmounts))
	for id := range a.additionalAmounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalAmountValue returns base plus the sum of all additional amounts.
func (a Amounts) TotalAmountValue() int64 {
	total := a.baseAmount
	for _, v := range a.additionalAmounts {
		total += v
	}
	return total
}

// TotalAmount returns the total as an Amount.
func (a Amounts) TotalAmount() Amount {
	return Amount{Value: a.TotalAmountValue(), Currency: a.currency}
}

// IsZero reports whether the total amount is zero.
func (a Amounts) IsZero() bool {
	return a.TotalAmountValue() == 0
}

func (a Amounts) Equal(b Amounts) bool {
	if a.baseAmount != b.baseAmount || a.currency != b.currency || len(a.additionalAmounts) != len(b.additionalAmounts) {
		return false
	}
	for id, v := range a.additionalAmounts {
		if b.additionalAmounts[id] != v {
			return false
		}
	}
	return true
}

// SubtractAmounts returns a minus b, entry by entry. The base amounts and each
// shared additional entry are subtracted individually; entries reduced to
// exactly zero are dropped. A result that would go negative in any entry is an
// amounts inconsistency and is rejected rather than clamped, so that it can
// never leak into remaining-amounts computations.
func SubtractAmounts(a, b Amounts) (Amounts, error) {
	if a.currency != b.currency {
		return Amounts{}, fmt.Errorf("subtracting %s from %s: %w", b.currency, a.currency, ErrCurrencyMismatch)
	}
	if b.baseAmount > a.baseAmount {
		return Amounts{}, fmt.Errorf("base amount %d exceeds %d: %w", b.baseAmount, a.baseAmount, ErrNegativeAmount)
	}
	out := Amounts{baseAmount: a.baseAmount - b.baseAmount, currency: a.currency}
	for id, v := range a.additionalAmounts {
		rem := v - b.additionalAmounts[id]
		if rem < 0 {
			return Amounts{}, fmt.Errorf("additional amount %q: %w", id, ErrNegativeAmount)
		}
		if rem == 0 {
			continue
		}
		if out.additionalAmounts == nil {
			out.additionalAmounts = make(map[string]int64)
		}
		out.additionalAmounts[id] = rem
	}
	for id, v := range b.additionalAmounts {
		if _, ok := a.additionalAmounts[id]; !ok && v > 0 {
			return Amounts{}, fmt.Errorf("additional amount %q not present in minuend: %w", id, ErrNegativeAmount)
		}
	}
	return out, nil
}

type amountsJSON struct {
	BaseAmount        int64            `json:"baseAmount"`
	AdditionalAmounts map[string]int64 `json:"additionalAmounts,omitempty"`
	Currency          string           `json:"currency"`
}

func (a Amounts) MarshalJSON() ([]byte, error) {
	return json.Marshal(amountsJSON{
		BaseAmount:        a.baseAmount,
		AdditionalAmounts: a.additionalAmounts,
		Currency:          a.currency,
	})
}

func (a *Amounts) UnmarshalJSON(data []byte) error {
	var aux amountsJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	parsed, err := NewAmountsWithAdditional(aux.BaseAmount, aux.Currency, aux.AdditionalAmounts)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func (a Amounts) String() string {
	return fmt.Sprintf("%d (+%d additional) %s", a.baseAmount, a.TotalAmountValue()-a.baseAmount, a.currency)
}
