package stage

import (
	"fmt"

	"github.com/ilhambagus/pos-android-sdk/flow/models"
)

// TransactionModel is the stage model a payment service uses to settle one
// transaction round and send back its outcome.
type TransactionModel struct {
	responder Responder
	request   *models.TransactionRequest
}

func NewTransactionModel(responder Responder, request *models.TransactionRequest) *TransactionModel {
	return &TransactionModel{responder: responder, request: request}
}

// Request returns the round's transaction request.
func (m *TransactionModel) Request() *models.TransactionRequest {
	return m.request
}

// Approve ends the round with an approved outcome covering the processed
// amounts.
func (m *TransactionModel) Approve(processed models.Amounts, paymentMethod, responseCode string, references *models.AdditionalData) error {
	if processed.Currency() != m.request.Amounts.Currency() {
		return fmt.Errorf("approving in %s against %s: %w", processed.Currency(), m.request.Amounts.Currency(), models.ErrCurrencyMismatch)
	}
	resp, err := models.NewTransactionResponse(models.OutcomeApproved, &processed, paymentMethod, responseCode, "", references)
	if err != nil {
		return err
	}
	return m.send(resp)
}

// Decline ends the round with a declined outcome. Nothing was processed; a
// decline is a valid business result, not a failure.
func (m *TransactionModel) Decline(responseCode, outcomeMessage string) error {
	resp, err := models.NewTransactionResponse(models.OutcomeDeclined, nil, "", responseCode, outcomeMessage, nil)
	if err != nil {
		return err
	}
	return m.send(resp)
}

func (m *TransactionModel) send(resp *models.TransactionResponse) error {
	payload, err := resp.ToJSON()
	if err != nil {
		return err
	}
	return m.responder.SendResponseAndEnd(payload)
}
