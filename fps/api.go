package fps

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ilhambagus/pos-android-sdk/discovery"
	"github.com/ilhambagus/pos-android-sdk/flow/models"
)

// API is the HTTP API of the flow processing service.
type API struct {
	fps      *Service
	registry *discovery.Registry
}

func NewAPI(fps *Service, registry *discovery.Registry) *API {
	return &API{
		fps:      fps,
		registry: registry,
	}
}

func (a *API) AppendRoutes(r chi.Router) {
	r.Post("/payments", a.initiatePayment)
	r.Get("/flow-services", a.getFlowServices)
	r.Get("/payment-services", a.getPaymentServices)
}

type initiatePaymentRequest struct {
	Amount       int64          `json:"amount"`
	Currency     string         `json:"currency"`
	Basket       *models.Basket `json:"basket,omitempty"`
	SplitEnabled bool           `json:"splitEnabled"`
	FlowName     string         `json:"flowName,omitempty"`
	CardNumber   string         `json:"cardNumber,omitempty"`
	CardExpiry   string         `json:"cardExpiry,omitempty"`
}

func (a *API) initiatePayment(w http.ResponseWriter, r *http.Request) {
	create := initiatePaymentRequest{}
	err := json.NewDecoder(r.Body).Decode(&create)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	amounts, err := models.NewAmounts(create.Amount, create.Currency)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	payment, err := models.NewPayment(amounts, create.Basket, create.SplitEnabled)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payment.FlowName = create.FlowName
	if create.CardNumber != "" {
		payment.AdditionalData.AddString(models.DataKeyCardNumber, create.CardNumber)
	}
	if create.CardExpiry != "" {
		payment.AdditionalData.AddString(models.DataKeyCardExpiry, create.CardExpiry)
	}

	response, err := a.fps.InitiatePayment(r.Context(), payment)
	if err != nil {
		if errors.Is(err, ErrNoFlow) || errors.Is(err, ErrNoPaymentService) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (a *API) getFlowServices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(a.registry.FlowServices().All())
}

func (a *API) getPaymentServices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(a.registry.PaymentServices().All())
}
