package appmessage

import (
	"errors"
	"testing"
)

func TestInternalData_CompatibleWith(t *testing.T) {
	current := NewInternalData()

	tests := []struct {
		peer string
		want bool
	}{
		{"2.0.0", true},
		{"2.9.9", true},
		{APIVersion, true},
		{"1.0.0", false},
		{"3.0.0", false},
	}
	for _, tt := range tests {
		peer := &InternalData{APIVersion: tt.peer}
		if got := current.CompatibleWith(peer); got != tt.want {
			t.Fatalf("CompatibleWith(%s) got %v want %v", tt.peer, got, tt.want)
		}
	}

	if current.CompatibleWith(nil) {
		t.Fatal("nil peer must be incompatible")
	}
}

func TestInternalData_CloneIsIndependent(t *testing.T) {
	original := NewInternalData()
	original.SetFlag(FlagFlowStage, "split")

	clone := original.Clone()
	clone.SetFlag(FlagFlowStage, "payment")
	clone.SetFlag(FlagBackgroundProcessing, "true")

	if original.Flag(FlagFlowStage) != "split" {
		t.Fatalf("clone mutation leaked: %s", original.Flag(FlagFlowStage))
	}
	if original.Flag(FlagBackgroundProcessing) != "" {
		t.Fatal("clone mutation leaked new flag")
	}
}

func TestAppMessage_Terminality(t *testing.T) {
	terminal := map[string]bool{
		TypeRequest:    false,
		TypeRequestAck: false,
		TypeResponse:   true,
		TypeFailure:    true,
		TypeEndStream:  false,
	}
	for messageType, want := range terminal {
		m := NewAppMessage(messageType, "", nil)
		if got := m.IsTerminal(); got != want {
			t.Fatalf("IsTerminal(%s) got %v want %v", messageType, got, want)
		}
	}
}

func TestAppMessage_JSONRoundTrip(t *testing.T) {
	data := NewInternalData()
	data.SetFlag(FlagFlowStage, "split")
	m := NewAppMessage(TypeRequest, `{"id":"abc"}`, data)

	wire, err := m.ToJSON()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	back, err := FromJSON(wire)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if back.MessageType != TypeRequest || back.Data() != `{"id":"abc"}` {
		t.Fatalf("round trip lost content: %+v", back)
	}
	if back.InternalData.Flag(FlagFlowStage) != "split" {
		t.Fatal("round trip lost flags")
	}

	if _, err := FromJSON(`{"messageData":"x"}`); err == nil {
		t.Fatal("message without type must be rejected")
	}
}

func TestAppMessage_EmptyDataSubstitution(t *testing.T) {
	m := NewAppMessage(TypeRequestAck, "", nil)
	if m.Data() != EmptyData {
		t.Fatalf("Data got %s want %s", m.Data(), EmptyData)
	}
}

func TestFlowError(t *testing.T) {
	flowErr := NewFlowError(ErrorCodeNoResponse, "nothing came back")

	var asErr error = flowErr
	if asErr.Error() == "" {
		t.Fatal("FlowError must render a message")
	}

	wire, err := flowErr.ToJSON()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	back, err := FlowErrorFromJSON(wire)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if back.Code != ErrorCodeNoResponse || back.Message != "nothing came back" {
		t.Fatalf("round trip lost content: %+v", back)
	}

	target := &FlowError{}
	if !errors.As(fmtWrap(flowErr), &target) {
		t.Fatal("FlowError must be extractable with errors.As")
	}
}

func fmtWrap(err error) error {
	return errors.Join(errors.New("outer"), err)
}
