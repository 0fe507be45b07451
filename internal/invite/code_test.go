package invite

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	g := NewGenerator()

	t.Run("codes are well-formed", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code := g.Generate()
			if len(code) != Length {
				t.Fatalf("code %q has length %d, want %d", code, len(code), Length)
			}
			for j := 0; j < len(code); j++ {
				if !strings.ContainsRune(Alphabet, rune(code[j])) {
					t.Fatalf("code %q contains %q, not in alphabet", code, code[j])
				}
			}
			if !Valid(code) {
				t.Fatalf("generated code %q fails Valid", code)
			}
		}
	})

	t.Run("codes vary", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			seen[g.Generate()] = true
		}
		// 31^6 possible codes; 1000 draws colliding down to a handful
		// would mean the randomness is broken.
		if len(seen) < 990 {
			t.Errorf("1000 draws produced only %d distinct codes", len(seen))
		}
	})
}

func TestValid(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"well-formed", "ABC234", true},
		{"empty", "", false},
		{"too short", "ABC23", false},
		{"too long", "ABC2345", false},
		{"lowercase", "abc234", false},
		{"ambiguous zero", "ABC204", false},
		{"ambiguous letter O", "ABCO24", false},
		{"ambiguous one", "ABC214", false},
		{"ambiguous letter L", "ABLC24", false},
		{"punctuation", "AB-C24", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.code); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}
