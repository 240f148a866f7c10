package health

import (
	"context"

	"github.com/kailas-cloud/burner/internal/domain"
)

// DBPinger checks counter store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks model provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// StateReader exposes the burn engine snapshot.
type StateReader interface {
	State() domain.BurnState
}
