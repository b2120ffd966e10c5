package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrFieldAlreadySet = errors.New("field may only be set once")

// Request is a generic request holding a request type and bespoke data. Its id
// is generated at construction and is the correlation key for every response
// across the life of the operation, including every partial round of a split
// flow.
//
// A request is immutable after construction except for the flow name, target
// device id and target app id, each of which may be set exactly once before
// transmission.
type Request struct {
	id          string
	requestType string
	flowName    string
	deviceID    string
	targetAppID string
	requestData *AdditionalData
}

// NewRequest returns a request of the given type with empty data.
func NewRequest(requestType string) *Request {
	return NewRequestWithData(requestType, NewAdditionalData())
}

// NewRequestWithData returns a request of the given type carrying data.
func NewRequestWithData(requestType string, requestData *AdditionalData) *Request {
	if requestData == nil {
		requestData = NewAdditionalData()
	}
	return &Request{
		id:          uuid.New().String(),
		requestType: requestType,
		requestData: requestData,
	}
}

// RequestFromExternalID reconstructs a request under an externally assigned
// id. For internal use by transports that replay a request on the service
// side of a channel.
func RequestFromExternalID(id, requestType string, requestData *AdditionalData) *Request {
	r := NewRequestWithData(requestType, requestData)
	r.id = id
	return r
}

func (r *Request) ID() string                   { return r.id }
func (r *Request) RequestType() string          { return r.requestType }
func (r *Request) FlowName() string             { return r.flowName }
func (r *Request) DeviceID() string             { return r.deviceID }
func (r *Request) TargetAppID() string          { return r.targetAppID }
func (r *Request) RequestData() *AdditionalData { return r.requestData }

// SetFlowName explicitly selects the flow that will process this request.
func (r *Request) SetFlowName(flowName string) error {
	if r.flowName != "" {
		return fmt.Errorf("flow name: %w", ErrFieldAlreadySet)
	}
	r.flowName = flowName
	return nil
}

// SetDeviceID selects the device used for customer interactions.
func (r *Request) SetDeviceID(deviceID string) error {
	if r.deviceID != "" {
		return fmt.Errorf("device id: %w", ErrFieldAlreadySet)
	}
	r.deviceID = deviceID
	return nil
}

// SetTargetAppID targets a specific application for this request.
func (r *Request) SetTargetAppID(targetAppID string) error {
	if r.targetAppID != "" {
		return fmt.Errorf("target app id: %w", ErrFieldAlreadySet)
	}
	r.targetAppID = targetAppID
	return nil
}

type requestJSON struct {
	ID          string          `json:"id"`
	RequestType string          `json:"requestType"`
	FlowName    string          `json:"flowName,omitempty"`
	DeviceID    string          `json:"deviceId,omitempty"`
	TargetAppID string          `json:"targetAppId,omitempty"`
	RequestData *AdditionalData `json:"requestData"`
}

func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestJSON{
		ID:          r.id,
		RequestType: r.requestType,
		FlowName:    r.flowName,
		DeviceID:    r.deviceID,
		TargetAppID: r.targetAppID,
		RequestData: r.requestData,
	})
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var aux requestJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ID == "" {
		return errors.New("request id is required")
	}
	if aux.RequestData == nil {
		aux.RequestData = NewAdditionalData()
	}
	r.id = aux.ID
	r.requestType = aux.RequestType
	r.flowName = aux.FlowName
	r.deviceID = aux.DeviceID
	r.targetAppID = aux.TargetAppID
	r.requestData = aux.RequestData
	return nil
}

// ToJSON serializes the request for transmission as a message payload.
func (r *Request) ToJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("serializing request: %w", err)
	}
	return string(b), nil
}

// RequestFromJSON parses a request from its wire form.
func RequestFromJSON(data string) (*Request, error) {
	r := &Request{}
	if err := json.Unmarshal([]byte(data), r); err != nil {
		return nil, fmt.Errorf("parsing request: %w", err)
	}
	return r, nil
}
