package redis

import (
	"bytes"
	"compress/gzip"
	"io"
	"time"

	"github.com/gomodule/redigo/redis"
	"golang.org/x/xerrors"

	"github.com/x-xyz/fpomarket/base/ctx"
	"github.com/x-xyz/fpomarket/base/metrics"
	"github.com/x-xyz/fpomarket/domain/keys"
)

const (
	// retTTLNoKey is the return value of TTL when the key does not exist
	retTTLNoKey = -2

	// retTTLNoExpire is the return value of TTL when the key exists but has
	// no associated expire
	retTTLNoExpire = -1
)

var delBatchSize = 100

type redImpl struct {
	name  string
	met   metrics.Service
	pools *Pools
}

// Pools represents different pool types
type Pools struct {
	Src *redis.Pool
}

// New redis service on top of the given pools
func New(name string, metrics metrics.Service, pools *Pools) Service {
	return &redImpl{
		name:  name,
		met:   metrics,
		pools: pools,
	}
}

func (r *redImpl) getConn() (redis.Conn, error) {
	defer r.met.BumpTime("getconn.time", "cluster", r.name).End()

	conn := r.pools.Src.Get()
	if err := conn.Err(); err != nil {
		r.met.BumpSum("getConn.err", 1, "cluster", r.name)
		return nil, err
	}
	return conn, nil
}

func (r *redImpl) connDo(c ctx.Ctx, commandName string, args ...interface{}) (interface{}, error) {
	conn, err := r.getConn()
	if err != nil {
		return nil, err
	}

	reply, err := conn.Do(commandName, args...)

	// release the connection right away, a held conn makes the pool grow
	if err := conn.Close(); err != nil {
		r.met.BumpSum("conn.Close.err", 1, "cluster", r.name)
	}
	return reply, err
}

func (r *redImpl) get(c ctx.Ctx, key string, zip bool) ([]byte, error) {
	funcName := "get"
	if zip {
		funcName = "getzip"
	}
	tags := []string{"func", funcName, "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	val, err := redis.Bytes(r.connDo(c, "GET", key))
	if err == redis.ErrNil {
		return nil, ErrNotFound
	} else if err != nil {
		c.WithField("err", err).Error("GET redis failed")
		return nil, err
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)
	if !zip {
		return val, nil
	}

	rb, err := gzip.NewReader(bytes.NewReader(val))
	if err != nil {
		// written without zip, hand back as is
		c.WithField("err", err).Warn("new gzip reader failed")
		return val, nil
	}
	defer rb.Close()
	return io.ReadAll(rb)
}

func (r *redImpl) Get(c ctx.Ctx, key string) ([]byte, error) {
	return r.get(c, key, false)
}

func (r *redImpl) GetZip(c ctx.Ctx, key string) ([]byte, error) {
	return r.get(c, key, true)
}

func (r *redImpl) set(c ctx.Ctx, key string, val []byte, expire time.Duration, zip bool) error {
	funcName := "set"
	if zip {
		funcName = "setzip"
	}
	tags := []string{"func", funcName, "cluster", r.name, "prefix", keys.GetPrefix(key)}
	defer r.met.BumpTime("time", tags...).End()

	if zip {
		buf := &bytes.Buffer{}
		writer := gzip.NewWriter(buf)
		if _, err := writer.Write(val); err != nil {
			return err
		}
		if err := writer.Close(); err != nil {
			return err
		}
		val = buf.Bytes()
	}
	r.met.BumpHistogram("bytes", float64(len(val)), tags...)

	args := []interface{}{key, val}
	if expire == Forever {
		r.met.BumpSum("ttl.forever", 1, tags...)
	} else {
		r.met.BumpAvg("ttl", expire.Seconds(), tags...)
		args = append(args, "PX", int64(expire/time.Millisecond))
	}

	if _, err := r.connDo(c, "SET", args...); err != nil {
		c.WithField("err", err).Error("SET redis failed")
		return err
	}
	return nil
}

func (r *redImpl) Set(c ctx.Ctx, key string, val []byte, expire time.Duration) error {
	return r.set(c, key, val, expire, false)
}

func (r *redImpl) SetZip(c ctx.Ctx, key string, val []byte, expire time.Duration) error {
	return r.set(c, key, val, expire, true)
}

func (r *redImpl) Del(c ctx.Ctx, ks ...string) (int, error) {
	if len(ks) == 0 {
		return 0, xerrors.New("length of keys is 0")
	}

	tags := []string{"func", "del", "cluster", r.name, "prefix", keys.GetPrefix(ks[0])}
	defer r.met.BumpTime("time", tags...).End()

	affected := 0
	for start := 0; start < len(ks); start += delBatchSize {
		end := start + delBatchSize
		if end > len(ks) {
			end = len(ks)
		}
		res, err := redis.Int(r.connDo(c, "DEL", redis.Args{}.AddFlat(ks[start:end])...))
		if err != nil {
			c.WithField("err", err).Error("DEL redis failed")
			return 0, err
		}
		affected += res
	}
	return affected, nil
}

func (r *redImpl) TTL(c ctx.Ctx, key string) (int, error) {
	defer r.met.BumpTime("time", "func", "ttl", "cluster", r.name, "prefix", keys.GetPrefix(key)).End()

	res, err := redis.Int(r.connDo(c, "TTL", key))
	if err != nil {
		c.WithField("err", err).Error("TTL redis failed")
		return 0, err
	}

	switch res {
	case retTTLNoKey:
		return res, ErrNotFound
	case retTTLNoExpire:
		return res, ErrNoTTL
	}
	return res, nil
}

func (r *redImpl) Ping(c ctx.Ctx) error {
	if _, err := r.connDo(c, "PING"); err != nil {
		c.WithField("err", err).Error("PING redis failed")
		return err
	}
	return nil
}

func (r *redImpl) Name() string {
	return r.name
}
