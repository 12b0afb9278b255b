package store

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		valid bool
	}{
		{"arriving", "waiting", true},
		{"arriving", "serving", false},
		{"arriving", "completed", false},
		{"waiting", "serving", true},
		{"waiting", "completed", false},
		{"waiting", "arriving", false},
		{"serving", "completed", true},
		{"serving", "waiting", false},
		{"completed", "waiting", false},
		{"completed", "serving", false},
		{"completed", "completed", false},
		{"unknown", "waiting", false},
		{"waiting", "unknown", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestKnownStatus(t *testing.T) {
	for _, status := range []string{"arriving", "waiting", "serving", "completed"} {
		if !KnownStatus(status) {
			t.Fatalf("expected %q to be known", status)
		}
	}
	if KnownStatus("held") {
		t.Fatalf("expected held to be unknown")
	}
	if KnownStatus("") {
		t.Fatalf("expected empty status to be unknown")
	}
}
