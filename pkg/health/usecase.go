package health

import (
	"context"
	"fmt"
)

// Probe is one dependency the service needs before it may accept traffic.
type Probe interface {
	Name() string
	Ping(ctx context.Context) error
}

// ReadinessUseCase verifies that every registered dependency is reachable.
type ReadinessUseCase interface {
	Ready(ctx context.Context) error
}

type service struct {
	probes []Probe
}

// NewService aggregates dependency probes in registration order.
func NewService(probes ...Probe) ReadinessUseCase {
	return &service{probes: probes}
}

func (s *service) Ready(ctx context.Context) error {
	for _, p := range s.probes {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", p.Name(), err)
		}
	}
	return nil
}
