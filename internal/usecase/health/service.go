package health

import (
	"context"

	"github.com/kailas-cloud/burner/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Burns keep running and fail softly.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	Phase  domain.Phase
}

// Service coordinates health checks.
type Service struct {
	db       DBPinger
	provider ProviderChecker
	engine   StateReader
}

// New creates a Service. provider and engine can be nil.
func New(db DBPinger, provider ProviderChecker, engine StateReader) *Service {
	return &Service{db: db, provider: provider, engine: engine}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{"database": result(s.db.Ping(ctx))}
	if s.provider != nil {
		checks["provider"] = result(s.provider.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	r := Report{Status: status, Checks: checks}
	if s.engine != nil {
		r.Phase = s.engine.State().Phase()
	}
	return r
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
