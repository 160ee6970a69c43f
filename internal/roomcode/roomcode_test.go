package roomcode

import (
	"strings"
	"testing"

	"github.com/lox/roulette/internal/randutil"
)

// MockRandSource for deterministic testing
type MockRandSource struct {
	values []int
	index  int
}

func NewMockRandSource(values ...int) *MockRandSource {
	return &MockRandSource{values: values}
}

func (m *MockRandSource) IntN(n int) int {
	if m.index >= len(m.values) {
		return 0
	}
	val := m.values[m.index] % n
	m.index++
	return val
}

func TestGenerate(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := Generate()
		if err := Validate(code); err != nil {
			t.Fatalf("generated code %q failed validation: %v", code, err)
		}
	}
}

func TestGenerateWithRandSource(t *testing.T) {
	gen := NewGenerator(NewMockRandSource(0, 25, 26, 35, 1, 2, 3, 4))

	if got := gen.Generate(); got != "AZ09" {
		t.Errorf("expected AZ09, got %s", got)
	}
	if got := gen.Generate(); got != "BCDE" {
		t.Errorf("expected BCDE, got %s", got)
	}
}

func TestGeneratorDeterministicFromSeed(t *testing.T) {
	a := NewGenerator(randutil.New(5))
	b := NewGenerator(randutil.New(5))

	for i := 0; i < 20; i++ {
		if ca, cb := a.Generate(), b.Generate(); ca != cb {
			t.Fatalf("draw %d diverged: %s != %s", i, ca, cb)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{name: "valid letters", code: "ABCD", wantErr: false},
		{name: "valid mixed", code: "A1B2", wantErr: false},
		{name: "valid digits", code: "0000", wantErr: false},
		{name: "too short", code: "ABC", wantErr: true},
		{name: "too long", code: "ABCDE", wantErr: true},
		{name: "lowercase not allowed", code: "abcd", wantErr: true},
		{name: "punctuation", code: "AB-D", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  ab1c "); got != "AB1C" {
		t.Errorf("expected AB1C, got %q", got)
	}
}

func TestAlphabet(t *testing.T) {
	if len(alphabet) != 36 {
		t.Errorf("alphabet should have 36 characters, got %d", len(alphabet))
	}
	if Space != 1679616 {
		t.Errorf("unexpected code space %d", Space)
	}

	seen := make(map[rune]bool)
	for _, char := range alphabet {
		if seen[char] {
			t.Errorf("duplicate character in alphabet: %c", char)
		}
		seen[char] = true
	}

	if strings.ToUpper(alphabet) != alphabet {
		t.Error("alphabet must be upper-case")
	}
}
