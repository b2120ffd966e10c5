package models

import "fmt"

// BasketItem is one line item in a basket.
type BasketItem struct {
	Label     string `json:"label"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// LineTotal returns quantity times unit price.
func (i BasketItem) LineTotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}

// Basket is an ordered sequence of line items. The basket total is always
// derived from the items; it is never stored, so it cannot drift from the
// item list. Consumers deriving a base amount from a basket must use
// TotalBasketValue.
type Basket struct {
	DisplayItems []BasketItem `json:"displayItems"`
}

// NewBasket returns a basket with the given items. Items with non-positive
// quantity or negative unit price are rejected.
func NewBasket(items ...BasketItem) (*Basket, error) {
	b := &Basket{}
	for _, item := range items {
		if err := b.AddItem(item); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// AddItem appends a line item to the basket.
func (b *Basket) AddItem(item BasketItem) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("basket item %q: quantity must be positive", item.Label)
	}
	if item.UnitPrice < 0 {
		return fmt.Errorf("basket item %q: %w", item.Label, ErrNegativeAmount)
	}
	b.DisplayItems = append(b.DisplayItems, item)
	return nil
}

// TotalBasketValue returns the sum of all line totals.
func (b *Basket) TotalBasketValue() int64 {
	var total int64
	for _, item := range b.DisplayItems {
		total += item.LineTotal()
	}
	return total
}
