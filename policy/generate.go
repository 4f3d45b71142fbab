package policy

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	lowerChars  = "abcdefghijklmnopqrstuvwxyz"
	upperChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digitChars  = "0123456789"
	symbolChars = "@#$%^&+=!"

	maxGenerateAttempts = 32
)

// ErrGenerateExhausted indicates the generator could not produce a compliant
// password within the retry bound; the configured pattern or dictionary is
// incompatible with the generator's character classes.
var ErrGenerateExhausted = errors.New("compliant password generation exhausted")

// Generate produces a random password of the given length that passes this
// validator's full signup path, so callers never need an external retry loop.
//
// Construction draws one character from each class (lower, upper, digit,
// symbol), fills the remainder from the union, and shuffles; the result is
// then re-validated, dictionary included, with a bounded number of retries.
func (v *Validator) Generate(length int) (string, error) {
	if length < v.config.MinLength {
		length = v.config.MinLength
	}
	if length < 4 {
		length = 4
	}

	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		candidate, err := v.randomCandidate(length)
		if err != nil {
			return "", err
		}
		if err := v.Validate(candidate); err != nil {
			var violation *ViolationError
			if errors.As(err, &violation) {
				continue
			}
			return "", err
		}
		return candidate, nil
	}
	return "", ErrGenerateExhausted
}

func (v *Validator) randomCandidate(length int) (string, error) {
	classes := []string{lowerChars, upperChars, digitChars, symbolChars}
	all := lowerChars + upperChars + digitChars + symbolChars

	out := make([]byte, 0, length)
	for _, class := range classes {
		c, err := randomByte(class)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := randomByte(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	if err := shuffle(out); err != nil {
		return "", err
	}
	return string(out), nil
}

func randomByte(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, err
	}
	return charset[n.Int64()], nil
}

func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
