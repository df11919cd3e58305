// Package reference issues human-readable booking references such as KL-2024-4821.
package reference

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	"lodge/config"
)

const (
	defaultPrefix = "KL"
	minSequence   = 1000
	maxSequence   = 9999
)

var pattern = regexp.MustCompile(`^[A-Z]+-\d{4}-\d{4}$`)

//go:generate go run go.uber.org/mock/mockgen -source=./reference.go -destination=./mocks/reference_mock.go -package=mocks
type Generator interface {
	Generate(year int) string
}

type randomGenerator struct {
	prefix string
	next   func() int
}

// New returns a generator drawing the numeric part uniformly from 1000-9999.
func New(cfg *config.Config) Generator {
	prefix := strings.ToUpper(strings.TrimSpace(cfg.Booking.ReferencePrefix))
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &randomGenerator{
		prefix: prefix,
		next: func() int {
			return minSequence + rand.IntN(maxSequence-minSequence+1) //nolint:gosec
		},
	}
}

func (g *randomGenerator) Generate(year int) string {
	return Format(g.prefix, year, g.next())
}

func Format(prefix string, year, sequence int) string {
	return fmt.Sprintf("%s-%04d-%04d", prefix, year, sequence)
}

// Valid reports whether value has the PREFIX-YYYY-NNNN shape.
func Valid(value string) bool {
	return pattern.MatchString(value)
}
