package models

import (
	"encoding/json"
	"fmt"
)

// Response is the terminal outcome of a generic request. A response always
// correlates back to its request via RequestID. A response with Success false
// represents a valid business outcome (for example a declined payment), not a
// protocol failure; failures travel separately as FlowError.
type Response struct {
	RequestID      string          `json:"requestId"`
	RequestType    string          `json:"requestType,omitempty"`
	Success        bool            `json:"success"`
	OutcomeMessage string          `json:"outcomeMessage,omitempty"`
	ResponseData   *AdditionalData `json:"responseData,omitempty"`

	// BackgroundProcessing is true when the service opted out of a
	// user-facing continuation and will finish its work unattended.
	BackgroundProcessing bool `json:"backgroundProcessing,omitempty"`
}

// NewResponse returns a response correlated to the given request.
func NewResponse(req *Request, success bool, outcomeMessage string) *Response {
	return &Response{
		RequestID:      req.ID(),
		RequestType:    req.RequestType(),
		Success:        success,
		OutcomeMessage: outcomeMessage,
		ResponseData:   NewAdditionalData(),
	}
}

// ToJSON serializes the response for transmission as a message payload.
func (r *Response) ToJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("serializing response: %w", err)
	}
	return string(b), nil
}

// ResponseFromJSON parses a response from its wire form.
func ResponseFromJSON(data string) (*Response, error) {
	r := &Response{}
	if err := json.Unmarshal([]byte(data), r); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return r, nil
}
