package subscriber

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "08012345678", want: "2348012345678"},
		{input: "2348012345678", want: "2348012345678"},
		{input: "+2348012345678", want: "2348012345678"},
		{input: " 0801 234 5678 ", want: "2348012345678"},
		{input: "0801-234-5678", want: "2348012345678"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizePhone(tt.input, "234")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNormalizePhoneRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "   ", "+", "not-a-number", "0801234x678", "12345"} {
		t.Run(input, func(t *testing.T) {
			if _, err := NormalizePhone(input, "234"); err == nil {
				t.Fatalf("expected error for %q", input)
			}
		})
	}
}
