// Package stage exposes the models a participating service works with while
// processing one stage of a flow. A stage model owns the in-progress
// FlowResponse and the amounts modifier for the round, and sends the built
// response over the request's channel when the service is done.
package stage

import (
	"errors"
	"fmt"

	"github.com/ilhambagus/pos-android-sdk/flow/models"
)

// Responder ends a stage exchange with a response payload. It is implemented
// by service.ClientCommunicator.
type Responder interface {
	SendResponseAndEnd(payload string) error
}

// SplitState describes where a split flow currently stands. Settled and
// cancelled are terminal: no further partial transaction may be appended.
type SplitState string

const (
	SplitAwaitingFirstTransaction SplitState = "AWAITING_FIRST_TRANSACTION"
	SplitPartiallySettled         SplitState = "PARTIALLY_SETTLED"
	SplitSettled                  SplitState = "SETTLED"
	SplitCancelled                SplitState = "CANCELLED"
)

// ErrSplitComplete is returned on attempts to prepare another round after the
// split reached a terminal state.
var ErrSplitComplete = errors.New("split flow is in a terminal state")

// SplitModel is the decision surface for one round of a split flow: what the
// next partial transaction's amount is, which payment method settled amounts
// outside the payment app, and whether to cancel.
type SplitModel struct {
	responder    Responder
	splitRequest *models.SplitRequest
	modifier     *models.AmountsModifier
	flowResponse *models.FlowResponse
	cancelled    bool
}

// NewSplitModel builds the model for one split round. The amounts modifier is
// seeded with the remaining amounts so round targets derive from what is
// still owed.
func NewSplitModel(responder Responder, splitRequest *models.SplitRequest) *SplitModel {
	return &SplitModel{
		responder:    responder,
		splitRequest: splitRequest,
		modifier:     models.NewAmountsModifier(splitRequest.RemainingAmounts()),
		flowResponse: models.NewFlowResponse(),
	}
}

// SplitRequest returns the request driving this round.
func (m *SplitModel) SplitRequest() *models.SplitRequest {
	return m.splitRequest
}

// State derives the current split state from the transaction history and any
// cancellation recorded this round.
func (m *SplitModel) State() SplitState {
	switch {
	case m.cancelled:
		return SplitCancelled
	case m.splitRequest.RemainingAmounts().IsZero():
		return SplitSettled
	case !m.splitRequest.HasPreviousTransactions():
		return SplitAwaitingFirstTransaction
	default:
		return SplitPartiallySettled
	}
}

// NextRoundPermitted reports whether another partial transaction may run.
func (m *SplitModel) NextRoundPermitted() bool {
	state := m.State()
	return state != SplitSettled && state != SplitCancelled
}

// LastTransactionFailed reports whether the previous round was declined
// without fully processing the then-requested amounts. Services must surface
// this to the merchant with a retry option rather than blindly re-requesting
// the same amount.
func (m *SplitModel) LastTransactionFailed() bool {
	return m.splitRequest.LastTransactionFailed()
}

// RemainingAmounts returns what is still owed across the whole split.
func (m *SplitModel) RemainingAmounts() models.Amounts {
	return m.splitRequest.RemainingAmounts()
}

// SetBaseAmountForNextTransaction fixes the next round's base amount
// (amount-based split). Mutually exclusive with a basket-based round.
func (m *SplitModel) SetBaseAmountForNextTransaction(baseAmount int64) error {
	if !m.NextRoundPermitted() {
		return fmt.Errorf("setting next base amount: %w", ErrSplitComplete)
	}
	if err := m.modifier.UpdateBaseAmount(baseAmount); err != nil {
		return err
	}
	if err := m.flowResponse.AddRequestData(models.DataKeySplitTxn, models.BoolValue(true)); err != nil {
		return err
	}
	return m.flowResponse.AddRequestData(models.DataKeySplitType, models.StringValue(models.SplitTypeAmounts))
}

// SetBasketForNextTransaction derives the next round's base amount from the
// basket's total (basket-based split). Mutually exclusive with an
// amount-based round.
func (m *SplitModel) SetBasketForNextTransaction(basket *models.Basket) error {
	if !m.NextRoundPermitted() {
		return fmt.Errorf("setting next basket: %w", ErrSplitComplete)
	}
	if err := m.flowResponse.AddRequestData(models.DataKeyBasket, models.BasketValue(basket)); err != nil {
		return err
	}
	if err := m.modifier.UpdateBaseAmount(basket.TotalBasketValue()); err != nil {
		return err
	}
	if err := m.flowResponse.AddRequestData(models.DataKeySplitTxn, models.BoolValue(true)); err != nil {
		return err
	}
	return m.flowResponse.AddRequestData(models.DataKeySplitType, models.StringValue(models.SplitTypeBasket))
}

// SetAmountsPaid records a partial settlement made outside the payment-app
// path (loyalty points, cash) in the current round's response. Only one paid
// amounts value is tracked per round: calling this again overwrites the
// previous call, so multiple non-card payments must be consolidated first.
func (m *SplitModel) SetAmountsPaid(amountsPaid models.Amounts, paymentMethod string, references *models.AdditionalData) error {
	if !m.NextRoundPermitted() {
		return fmt.Errorf("recording amounts paid: %w", ErrSplitComplete)
	}
	remaining := m.RemainingAmounts()
	if amountsPaid.Currency() != remaining.Currency() {
		return fmt.Errorf("amounts paid in %s against %s: %w", amountsPaid.Currency(), remaining.Currency(), models.ErrCurrencyMismatch)
	}
	if amountsPaid.TotalAmountValue() > remaining.TotalAmountValue() {
		return fmt.Errorf("amounts paid %d exceed remaining %d", amountsPaid.TotalAmountValue(), remaining.TotalAmountValue())
	}
	if err := m.flowResponse.SetAmountsPaid(amountsPaid, paymentMethod); err != nil {
		return err
	}
	if references != nil {
		m.flowResponse.SetPaymentReferences(references)
	}
	return nil
}

// AddRequestData attaches arbitrary data to the ongoing request.
func (m *SplitModel) AddRequestData(key string, values ...models.Value) error {
	return m.flowResponse.AddRequestData(key, values...)
}

// CancelFlow cancels the whole split. Valid from any non-terminal state and
// suppresses any further round. Cancellation is cooperative: it marks intent
// in this round's response, the channel layer handles interruption.
func (m *SplitModel) CancelFlow() {
	m.cancelled = true
	m.flowResponse.SetCancelTransaction(true)
}

// FlowResponse materialises the response built this round, folding in any
// pending amounts modifications.
func (m *SplitModel) FlowResponse() (*models.FlowResponse, error) {
	if m.modifier.HasModifications() {
		amounts, err := m.modifier.Build()
		if err != nil {
			return nil, fmt.Errorf("building modified amounts: %w", err)
		}
		m.flowResponse.UpdateRequestAmounts(amounts)
	}
	return m.flowResponse, nil
}

// SendResponse sends the built flow response and ends this round's exchange.
func (m *SplitModel) SendResponse() error {
	response, err := m.FlowResponse()
	if err != nil {
		return err
	}
	payload, err := response.ToJSON()
	if err != nil {
		return err
	}
	return m.responder.SendResponseAndEnd(payload)
}
