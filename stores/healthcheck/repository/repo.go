package repository

import (
	"time"

	"github.com/x-xyz/fpomarket/base/ctx"
	hcdomain "github.com/x-xyz/fpomarket/domain/healthcheck"
	"github.com/x-xyz/fpomarket/domain/keys"
	"github.com/x-xyz/fpomarket/service/query"
	"github.com/x-xyz/fpomarket/service/redis"
)

const pingTimeout = 2 * time.Second

// StateStore is the contract state backend
type StateStore interface {
	HealthCheck(c ctx.Ctx) error
}

type impl struct {
	state      StateStore
	mongo      query.Mongo
	redisCache redis.Service
}

// New takes nil mongo or redisCache when they are not configured
func New(state StateStore, mongo query.Mongo, redisCache redis.Service) hcdomain.HealthCheckRepo {
	return &impl{
		state:      state,
		mongo:      mongo,
		redisCache: redisCache,
	}
}

func (im *impl) PingState(c ctx.Ctx) error {
	if err := im.state.HealthCheck(c); err != nil {
		c.WithField("err", err).Error("state store health check failed")
		return err
	}
	return nil
}

func (im *impl) PingDB(c ctx.Ctx) error {
	if im.mongo == nil {
		return nil
	}
	tc, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()
	if err := im.mongo.Ping(tc); err != nil {
		c.WithField("err", err).Error("ping mongo error")
		return err
	}
	return nil
}

func (im *impl) PingCache(c ctx.Ctx) error {
	if im.redisCache == nil {
		return nil
	}
	tc, cancel := ctx.WithTimeout(c, pingTimeout)
	defer cancel()
	if err := im.redisCache.Set(tc, keys.RedisKey(keys.PfxHealthCheck, "testset"), []byte("1"), 30*time.Second); err != nil {
		c.WithField("err", err).Error("test redis set failed")
		return err
	}
	return nil
}
