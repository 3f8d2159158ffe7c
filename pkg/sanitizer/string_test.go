package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Dana's Earthworks  ",
			want:  "Dana's Earthworks",
		},
		{
			name:  "multiple spaces between words",
			input: "Dana's    Earthworks",
			want:  "Dana's Earthworks",
		},
		{
			name:  "tabs and newlines",
			input: "Dana's\t\nEarthworks",
			want:  "Dana's Earthworks",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "preserve special characters",
			input: " Café & Builders™ ",
			want:  "Café & Builders™",
		},
		{
			name:  "hebrew characters",
			input: " בניין יוסי ",
			want:  "בניין יוסי",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeName(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic trim",
			input: "  hello  ",
			want:  "hello",
		},
		{
			name:  "multiple spaces",
			input: "hello    world",
			want:  "hello world",
		},
		{
			name:  "tabs and newlines",
			input: "hello\t\nworld",
			want:  "hello world",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "only whitespace",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TrimAndNormalize(tt.input)
			if got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNotes(t *testing.T) {
	got := NormalizeNotes("  gate code   4411 \n\n  call  on arrival  ")
	want := "gate code 4411\n\ncall on arrival"
	if got != want {
		t.Errorf("NormalizeNotes = %q, want %q", got, want)
	}
}

func TestNormalizeIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"equipment id upper-cased", NormalizeEquipmentID, " tb145 ", "TB145"},
		{"email lower-cased", NormalizeEmail, " Ops@Example.COM ", "ops@example.com"},
		{"enum lower-cased", NormalizeEnum, " Excavators ", "excavators"},
		{"address collapsed", NormalizeAddress, "12  Quarry   Rd ", "12 Quarry Rd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if again := tt.fn(tt.fn(tt.in)); again != tt.want {
				t.Errorf("not idempotent: %q", again)
			}
		})
	}
}
