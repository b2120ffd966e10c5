package appmessage

import (
	"encoding/json"
	"fmt"
)

// Reserved error codes carried in FAILURE messages. A failure message means
// the participant could not complete the contracted exchange; a declined
// business outcome is never a failure.
const (
	ErrorCodeVersionMismatch = "versionMismatch"
	ErrorCodeUnexpectedError = "unexpectedError"
	ErrorCodeInvalidRequest  = "invalidRequest"
	ErrorCodeNoResponse      = "noResponse"
	ErrorCodeUnsupportedType = "unsupportedRequestType"
)

// FlowError is the structured payload of a FAILURE message. It implements
// error so participant failures surface as typed errors on the client side,
// keeping "processing failed" distinguishable from "processed with a declined
// outcome".
type FlowError struct {
	Code    string `json:"errorCode"`
	Message string `json:"errorMessage"`
}

func NewFlowError(code, message string) *FlowError {
	return &FlowError{Code: code, Message: message}
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("flow error %s: %s", e.Code, e.Message)
}

// ToJSON serializes the error as a failure payload.
func (e *FlowError) ToJSON() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("serializing flow error: %w", err)
	}
	return string(b), nil
}

// FlowErrorFromJSON parses a failure payload.
func FlowErrorFromJSON(data string) (*FlowError, error) {
	e := &FlowError{}
	if err := json.Unmarshal([]byte(data), e); err != nil {
		return nil, fmt.Errorf("parsing flow error: %w", err)
	}
	return e, nil
}
