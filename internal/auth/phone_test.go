package auth

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare ten digits", "9876543210", "+919876543210"},
		{"ten digits with spaces", "98765 43210", "+919876543210"},
		{"ten digits with dashes", "98765-43210", "+919876543210"},
		{"twelve digits with country code", "919876543210", "+919876543210"},
		{"already e164", "+919876543210", "+919876543210"},
		{"foreign number untouched", "+14155550100", "+14155550100"},
		{"short number untouched", "12345", "12345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.in); got != tt.want {
				t.Fatalf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	inputs := []string{"9876543210", "91 98765 43210", "+919876543210"}
	for _, in := range inputs {
		once := NormalizePhone(in)
		twice := NormalizePhone(once)
		if once != twice {
			t.Fatalf("normalizing twice changed %q: %q then %q", in, once, twice)
		}
	}
}
