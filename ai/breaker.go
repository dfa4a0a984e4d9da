package ai

import (
	"context"
	"errors"

	"chatonline-world/backend/pkg/resilience"
)

type breakerGenerator struct {
	next    Generator
	breaker *resilience.Breaker
}

// WithCircuitBreaker short-circuits calls to next while breaker is open
func WithCircuitBreaker(next Generator, breaker *resilience.Breaker) Generator {
	return &breakerGenerator{next: next, breaker: breaker}
}

func (g *breakerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := g.breaker.Call(func() error {
		var err error
		text, err = g.next.Generate(ctx, prompt)
		return err
	})
	if errors.Is(err, resilience.ErrOpen) {
		return "", &GenerationError{Detail: "text generation temporarily unavailable", Err: err}
	}
	return text, err
}
