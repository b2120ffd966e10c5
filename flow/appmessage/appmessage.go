// Package appmessage defines the wire unit exchanged over a channel between
// an initiating client and a flow or payment service: a message kind, an
// opaque payload and versioned side-channel metadata.
package appmessage

import (
	"encoding/json"
	"fmt"
)

// Message kinds. Exactly one terminal message (response or failure) is
// permitted per channel; the end-stream marker closes the channel after it.
const (
	TypeRequest    = "REQUEST_MESSAGE"
	TypeRequestAck = "REQUEST_ACK_MESSAGE"
	TypeResponse   = "RESPONSE_MESSAGE"
	TypeFailure    = "FAILURE_MESSAGE"
	TypeEndStream  = "END_STREAM_MESSAGE"
)

// EmptyData is the payload of messages that carry no data.
const EmptyData = "{}"

// APIVersion is the protocol version tagged onto every outbound message so
// participants can reject incompatible peers cleanly.
const APIVersion = "2.1.0"

// Flag keys carried in InternalData.
const (
	FlagBackgroundProcessing = "backgroundProcessing"
	FlagFlowStage            = "flowStage"
)

// InternalData is side-channel metadata attached to messages: the sender's
// protocol version plus free-form feature flags.
type InternalData struct {
	APIVersion string            `json:"apiVersion"`
	Flags      map[string]string `json:"flags,omitempty"`
}

// NewInternalData returns metadata tagged with the current protocol version.
func NewInternalData() *InternalData {
	return &InternalData{APIVersion: APIVersion}
}

// SetFlag records a feature flag.
func (d *InternalData) SetFlag(key, value string) {
	if d.Flags == nil {
		d.Flags = make(map[string]string)
	}
	d.Flags[key] = value
}

// Flag returns the value of a feature flag, or "".
func (d *InternalData) Flag(key string) string {
	if d == nil {
		return ""
	}
	return d.Flags[key]
}

// Clone returns a deep copy so one message's metadata cannot leak mutations
// into another's.
func (d *InternalData) Clone() *InternalData {
	if d == nil {
		return nil
	}
	out := &InternalData{APIVersion: d.APIVersion}
	for k, v := range d.Flags {
		out.SetFlag(k, v)
	}
	return out
}

// CompatibleWith reports whether two protocol versions can interoperate.
// Compatibility is decided on the major version only.
func (d *InternalData) CompatibleWith(other *InternalData) bool {
	if d == nil || other == nil {
		return false
	}
	return majorVersion(d.APIVersion) == majorVersion(other.APIVersion)
}

func majorVersion(v string) string {
	for i := 0; i < len(v); i++ {
		if v[i] == '.' {
			return v[:i]
		}
	}
	return v
}

// AppMessage is the envelope for all request/response exchanges.
type AppMessage struct {
	MessageType  string        `json:"messageType"`
	MessageData  string        `json:"messageData,omitempty"`
	InternalData *InternalData `json:"internalData,omitempty"`
}

// NewAppMessage returns an envelope of the given kind and payload.
func NewAppMessage(messageType, messageData string, internalData *InternalData) AppMessage {
	return AppMessage{
		MessageType:  messageType,
		MessageData:  messageData,
		InternalData: internalData,
	}
}

// Data returns the payload, substituting EmptyData when none was set.
func (m AppMessage) Data() string {
	if m.MessageData == "" {
		return EmptyData
	}
	return m.MessageData
}

// IsTerminal reports whether this message ends the exchange on its channel.
func (m AppMessage) IsTerminal() bool {
	return m.MessageType == TypeResponse || m.MessageType == TypeFailure
}

// ToJSON serializes the envelope.
func (m AppMessage) ToJSON() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("serializing app message: %w", err)
	}
	return string(b), nil
}

// FromJSON parses an envelope.
func FromJSON(data string) (AppMessage, error) {
	var m AppMessage
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return AppMessage{}, fmt.Errorf("parsing app message: %w", err)
	}
	if m.MessageType == "" {
		return AppMessage{}, fmt.Errorf("app message has no message type")
	}
	return m, nil
}
