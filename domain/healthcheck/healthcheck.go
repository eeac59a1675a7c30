package healthcheck

import (
	"github.com/x-xyz/fpomarket/base/ctx"
)

// Component names reported by Check
const (
	ComponentState = "state"
	ComponentDB    = "mongo"
	ComponentCache = "redis"
)

// HealthCheckUsecase represents the healthCheck's usecases
type HealthCheckUsecase interface {
	// Check pings every backend and returns the failures by component
	Check(c ctx.Ctx) map[string]error
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	PingState(c ctx.Ctx) error
	// PingDB and PingCache return nil when the backend is not configured
	PingDB(c ctx.Ctx) error
	PingCache(c ctx.Ctx) error
}
