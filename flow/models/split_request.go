package models

import (
	"encoding/json"
	"fmt"
)

// SplitRequest carries the data a flow service needs to decide the next round
// of a split flow: the total amounts owed and the ordered history of partial
// transaction outcomes so far.
//
// The remaining amounts are always derived from that history, never stored,
// so they can never drift from the transactions that actually settled.
type SplitRequest struct {
	totalRequestedAmounts Amounts
	previousTransactions  []*TransactionResponse
}

// NewSplitRequest validates the transaction history against the total. Any
// history whose approved amounts would push the remaining total negative, or
// whose currency differs from the total's, is an amounts inconsistency and is
// rejected here, at the boundary, rather than propagated into remaining
// amounts.
func NewSplitRequest(total Amounts, previous []*TransactionResponse) (*SplitRequest, error) {
	s := &SplitRequest{
		totalRequestedAmounts: total,
		previousTransactions:  append([]*TransactionResponse(nil), previous...),
	}
	if _, err := s.remaining(); err != nil {
		return nil, fmt.Errorf("invalid split transaction history: %w", err)
	}
	return s, nil
}

func (s *SplitRequest) TotalRequestedAmounts() Amounts { return s.totalRequestedAmounts }

// PreviousTransactions returns the ordered history of partial transaction
// outcomes.
func (s *SplitRequest) PreviousTransactions() []*TransactionResponse {
	return append([]*TransactionResponse(nil), s.previousTransactions...)
}

func (s *SplitRequest) HasPreviousTransactions() bool {
	return len(s.previousTransactions) > 0
}

// LastTransaction returns the most recent transaction, or nil for a fresh
// split.
func (s *SplitRequest) LastTransaction() *TransactionResponse {
	if len(s.previousTransactions) == 0 {
		return nil
	}
	return s.previousTransactions[len(s.previousTransactions)-1]
}

// RemainingAmounts recomputes total minus everything approved transactions
// actually processed. Entries reduced to exactly zero are dropped, never
// carried forward as zero-value entries. An approved transaction with nil
// processed amounts counts as having processed nothing.
func (s *SplitRequest) RemainingAmounts() Amounts {
	remaining, err := s.remaining()
	if err != nil {
		// Construction validated the history; a failure here means the
		// value was built bypassing NewSplitRequest.
		panic(fmt.Sprintf("split request history became inconsistent: %v", err))
	}
	return remaining
}

func (s *SplitRequest) remaining() (Amounts, error) {
	remaining := s.totalRequestedAmounts
	for _, txn := range s.previousTransactions {
		if txn == nil || txn.Outcome() != OutcomeApproved {
			continue
		}
		processed := txn.AmountsProcessed()
		if processed == nil {
			continue
		}
		var err error
		remaining, err = SubtractAmounts(remaining, *processed)
		if err != nil {
			return Amounts{}, err
		}
	}
	return remaining, nil
}

// LastTransactionFailed reports whether the most recent transaction exists,
// was declined, and did not fully process the then-requested amounts. This is
// the signal a participant uses to surface a retry option instead of blindly
// re-requesting the same amount.
func (s *SplitRequest) LastTransactionFailed() bool {
	last := s.LastTransaction()
	if last == nil || last.Outcome() != OutcomeDeclined {
		return false
	}
	return last.ProcessedValue() < s.RemainingAmounts().TotalAmountValue()
}

type splitRequestJSON struct {
	TotalRequestedAmounts Amounts                `json:"totalRequestedAmounts"`
	PreviousTransactions  []*TransactionResponse `json:"previousTransactions"`
}

func (s *SplitRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(splitRequestJSON{
		TotalRequestedAmounts: s.totalRequestedAmounts,
		PreviousTransactions:  s.previousTransactions,
	})
}

func (s *SplitRequest) UnmarshalJSON(data []byte) error {
	var aux splitRequestJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	parsed, err := NewSplitRequest(aux.TotalRequestedAmounts, aux.PreviousTransactions)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// ToJSON serializes the split request for transmission as a message payload.
func (s *SplitRequest) ToJSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("serializing split request: %w", err)
	}
	return string(b), nil
}

// SplitRequestFromJSON parses a split request from its wire form.
func SplitRequestFromJSON(data string) (*SplitRequest, error) {
	s := &SplitRequest{}
	if err := json.Unmarshal([]byte(data), s); err != nil {
		return nil, fmt.Errorf("parsing split request: %w", err)
	}
	return s, nil
}
