package validation

import (
	"errors"
	"testing"
)

func TestValidateCPF(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"masked", "529.982.247-25", "52998224725", true},
		{"digits only", "12345678909", "12345678909", true},
		{"wrong first check digit", "529.982.247-35", "", false},
		{"wrong second check digit", "529.982.247-26", "", false},
		{"flipped leading digit", "629.982.247-25", "", false},
		{"repeated digits", "000.000.000-00", "", false},
		{"repeated nines", "99999999999", "", false},
		{"too short", "5299822472", "", false},
		{"too long", "529982247250", "", false},
		{"empty", "", "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ValidateCPF(c.in)
			if c.ok {
				if err != nil {
					t.Fatalf("expected valid, got %v", err)
				}
				if got != c.want {
					t.Fatalf("expected %s got %s", c.want, got)
				}
				return
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
		})
	}
}

func TestValidateCNPJ(t *testing.T) {
	cases := []struct {
		name string
		in   string
		ok   bool
	}{
		{"masked", "11.222.333/0001-81", true},
		{"digits only", "11222333000181", true},
		{"wrong first check digit", "11.222.333/0001-91", false},
		{"wrong second check digit", "11.222.333/0001-82", false},
		{"repeated digits", "11111111111111", false},
		{"cpf length", "52998224725", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := IsCNPJ(c.in); got != c.ok {
				t.Fatalf("IsCNPJ(%q)=%v want %v", c.in, got, c.ok)
			}
		})
	}
}

func TestCPFSingleDigitFlipsAreRejected(t *testing.T) {
	valid := "52998224725"
	for i := 0; i < len(valid); i++ {
		b := []byte(valid)
		b[i] = '0' + (b[i]-'0'+1)%10
		if IsCPF(string(b)) {
			t.Fatalf("flip at %d still valid: %s", i, b)
		}
	}
}

func TestFormatDocuments(t *testing.T) {
	if got := FormatCPF("52998224725"); got != "529.982.247-25" {
		t.Fatalf("FormatCPF: %s", got)
	}
	if got := FormatCNPJ("11222333000181"); got != "11.222.333/0001-81" {
		t.Fatalf("FormatCNPJ: %s", got)
	}
	if got := FormatCPF("123"); got != "123" {
		t.Fatalf("short input should pass through, got %s", got)
	}
}
