package health

import (
	"context"

	"go.uber.org/zap"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedChecker struct {
	name    string
	checker Checker
}

// Service coordinates health checks.
type Service struct {
	checkers []namedChecker
	logger   *zap.Logger
}

// New creates a Service with no checks; add them with Register.
func New(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger.Named("health")}
}

// Register adds a named check. A nil checker is ignored so optional components can be
// registered unconditionally.
func (s *Service) Register(name string, c Checker) *Service {
	if c != nil {
		s.checkers = append(s.checkers, namedChecker{name: name, checker: c})
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.checkers))
	status := Healthy

	for _, nc := range s.checkers {
		if err := nc.checker.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("component", nc.name), zap.Error(err))
			checks[nc.name] = CheckError
			status = Degraded
			continue
		}
		checks[nc.name] = CheckOK
	}

	return Report{Status: status, Checks: checks}
}
