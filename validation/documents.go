package validation

import (
	"errors"
	"strings"
)

// ErrInvalidDocument is returned when a CPF or CNPJ fails the length, repetition or check digit rules.
var ErrInvalidDocument = errors.New("invalid_document")

const (
	cpfLength  = 11
	cnpjLength = 14
)

var (
	cnpjWeightsFirst  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	cnpjWeightsSecond = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Digits strips everything that is not an ASCII digit.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateCPF validates a person tax id (11 digits) and returns its digits.
func ValidateCPF(raw string) (string, error) {
	d := Digits(raw)
	if len(d) != cpfLength || repeated(d) {
		return "", ErrInvalidDocument
	}
	n := toInts(d)
	for i := 9; i < 11; i++ {
		total := 0
		for j := 0; j < i; j++ {
			total += n[j] * (i + 1 - j)
		}
		digit := (total * 10) % 11
		if digit == 10 {
			digit = 0
		}
		if digit != n[i] {
			return "", ErrInvalidDocument
		}
	}
	return d, nil
}

// ValidateCNPJ validates a company tax id (14 digits) and returns its digits.
func ValidateCNPJ(raw string) (string, error) {
	d := Digits(raw)
	if len(d) != cnpjLength || repeated(d) {
		return "", ErrInvalidDocument
	}
	n := toInts(d)
	if cnpjDigit(n[:12], cnpjWeightsFirst) != n[12] {
		return "", ErrInvalidDocument
	}
	if cnpjDigit(n[:13], cnpjWeightsSecond) != n[13] {
		return "", ErrInvalidDocument
	}
	return d, nil
}

// IsCPF reports whether raw is a valid CPF.
func IsCPF(raw string) bool {
	_, err := ValidateCPF(raw)
	return err == nil
}

// IsCNPJ reports whether raw is a valid CNPJ.
func IsCNPJ(raw string) bool {
	_, err := ValidateCNPJ(raw)
	return err == nil
}

// FormatCPF renders 11 digits as 000.000.000-00; other input is returned unchanged.
func FormatCPF(d string) string {
	if len(d) != cpfLength {
		return d
	}
	return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
}

// FormatCNPJ renders 14 digits as 00.000.000/0000-00; other input is returned unchanged.
func FormatCNPJ(d string) string {
	if len(d) != cnpjLength {
		return d
	}
	return d[:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
}

func cnpjDigit(n, weights []int) int {
	total := 0
	for i, w := range weights {
		total += n[i] * w
	}
	digit := 11 - total%11
	if digit >= 10 {
		return 0
	}
	return digit
}

func repeated(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}

func toInts(d string) []int {
	out := make([]int, len(d))
	for i := range d {
		out[i] = int(d[i] - '0')
	}
	return out
}
