package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		regions []string
		want    string
	}{
		{
			name:  "valid E.164 format",
			input: "+972541234567",
			want:  "+972541234567",
		},
		{
			name:  "with spaces",
			input: "+972 54 123 4567",
			want:  "+972541234567",
		},
		{
			name:  "with dashes",
			input: "+972-54-123-4567",
			want:  "+972541234567",
		},
		{
			name:  "with parentheses",
			input: "+1 (212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:  "leading and trailing spaces",
			input: "  +12125551234  ",
			want:  "+12125551234",
		},
		{
			name:  "national number uses first region",
			input: "(212) 555-1234",
			want:  "+12125551234",
		},
		{
			name:    "explicit region",
			input:   "054-123-4567",
			regions: []string{"IL"},
			want:    "+972541234567",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
		{
			name:  "not a number is returned trimmed",
			input: "  call me  ",
			want:  "call me",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, tt.regions...)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizePhone_Idempotent(t *testing.T) {
	inputs := []string{"+1 (212) 555-1234", "+972-54-123-4567", "nope"}
	for _, input := range inputs {
		once := NormalizePhone(input)
		if twice := NormalizePhone(once); twice != once {
			t.Errorf("NormalizePhone not idempotent for %q: %q then %q", input, once, twice)
		}
	}
}
