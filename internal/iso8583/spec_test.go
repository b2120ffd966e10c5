package iso8583

import (
	"testing"

	moov8583 "github.com/moov-io/iso8583"
)

func TestSpec_PackUnpackAuthorization(t *testing.T) {
	msg := moov8583.NewMessage(Spec)
	msg.MTI("0100")
	fields := map[int]string{
		2:  "4242424242424242",
		3:  "000000",
		4:  "600",
		11: "42",
		14: "3012",
		41: "term-01",
		42: "sample-merchant",
		49: "EUR",
	}
	for id, value := range fields {
		if err := msg.Field(id, value); err != nil {
			t.Fatalf("setting field %d: %v", id, err)
		}
	}

	packed, err := msg.Pack()
	if err != nil {
		t.Fatalf("packing: %v", err)
	}

	back := moov8583.NewMessage(Spec)
	if err := back.Unpack(packed); err != nil {
		t.Fatalf("unpacking: %v", err)
	}

	mti, err := back.GetMTI()
	if err != nil {
		t.Fatalf("reading mti: %v", err)
	}
	if mti != "0100" {
		t.Fatalf("mti got %s want 0100", mti)
	}

	pan, err := back.GetString(2)
	if err != nil {
		t.Fatalf("reading pan: %v", err)
	}
	if pan != "4242424242424242" {
		t.Fatalf("pan got %s", pan)
	}

	// the amount field zero-pads to its fixed width
	amount, err := back.GetString(4)
	if err != nil {
		t.Fatalf("reading amount: %v", err)
	}
	if amount != "600" {
		t.Fatalf("amount got %s want 600", amount)
	}

	stan, err := back.GetString(11)
	if err != nil {
		t.Fatalf("reading stan: %v", err)
	}
	if stan != "42" {
		t.Fatalf("stan got %s want 42", stan)
	}
}
