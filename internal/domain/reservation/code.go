package reservation

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

// Code is the human-readable reservation identifier: RES-YYYYMMDDHHMMSS-NNN.
type Code string

var codePattern = regexp.MustCompile(`^RES-\d{14}-\d{3}$`)

func (c Code) Valid() bool {
	return codePattern.MatchString(string(c))
}

// CodeGenerator produces reservation codes from the booking time.
type CodeGenerator interface {
	Next(now time.Time) Code
}

// RandomCodes appends a random suffix in [100, 999] to the UTC timestamp.
type RandomCodes struct {
	// Suffix overrides the random suffix source; used by tests.
	Suffix func() int
}

func (g RandomCodes) Next(now time.Time) Code {
	suffix := 0
	if g.Suffix != nil {
		suffix = g.Suffix()
	} else {
		suffix = 100 + rand.IntN(900)
	}
	return Code(fmt.Sprintf("RES-%s-%03d", now.UTC().Format("20060102150405"), suffix))
}
