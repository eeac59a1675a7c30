package usecase

import (
	"github.com/x-xyz/fpomarket/base/ctx"
	hcdomain "github.com/x-xyz/fpomarket/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(c ctx.Ctx) map[string]error {
	failed := map[string]error{}
	checks := []struct {
		component string
		ping      func(ctx.Ctx) error
	}{
		{hcdomain.ComponentState, im.repo.PingState},
		{hcdomain.ComponentDB, im.repo.PingDB},
		{hcdomain.ComponentCache, im.repo.PingCache},
	}
	for _, check := range checks {
		if err := check.ping(c); err != nil {
			failed[check.component] = err
		}
	}
	return failed
}
