package llm

import (
	"context"
	"time"
)

// StaticGenerator returns a canned response. It backs local development and
// the seed command when no model endpoint is configured.
type StaticGenerator struct {
	Response       string
	Err            error
	SimulatedDelay time.Duration
}

// Generate returns the canned response after the simulated delay.
func (g *StaticGenerator) Generate(ctx context.Context, _ string, _ Options) (string, error) {
	if g.SimulatedDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.SimulatedDelay):
		}
	}
	if g.Err != nil {
		return "", g.Err
	}
	return g.Response, nil
}

// Ensure implementations satisfy Generator
var (
	_ Generator = (*OpenAI)(nil)
	_ Generator = (*StaticGenerator)(nil)
)
