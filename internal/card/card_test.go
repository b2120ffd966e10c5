package card

import "testing"

func TestNormalize(t *testing.T) {
	if got := Normalize(" 4242-4242 4242\t4242 "); got != "4242424242424242" {
		t.Fatalf("Normalize got %s", got)
	}
}

func TestValidate(t *testing.T) {
	valid := []string{
		"4242424242424242",
		"4012888888881881",
		"5555555555554444",
	}
	for _, pan := range valid {
		if err := Validate(pan); err != nil {
			t.Fatalf("Validate(%s): %v", pan, err)
		}
	}

	invalid := map[string]string{
		"":                     "empty",
		"4242424242424241":     "bad check digit",
		"42424242":             "too short",
		"42424242424242424242": "too long",
		"4242 4242 4242 424x":  "non digit",
	}
	for pan, why := range invalid {
		if err := Validate(pan); err == nil {
			t.Fatalf("Validate(%s) passed, want error (%s)", pan, why)
		}
	}
}

func TestMask(t *testing.T) {
	tests := []struct{ in, want string }{
		{"4242424242424242", "424242******4242"},
		{"42424242", "****4242"},
		{"4242", "****"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Fatalf("Mask(%s) got %s want %s", tt.in, got, tt.want)
		}
	}
}
