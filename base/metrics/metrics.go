// Package metrics wraps datadog-go statsd. Naming convention:
// - call duration: *.time
// - event counters: plain nouns, e.g. proposal.evicted
// - errors: *.err
package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/x-xyz/fpomarket/base/env"
	"github.com/x-xyz/fpomarket/base/log"
)

const (
	// DdPort is the dogstatsd agent port
	DdPort = 8125
	// buffer 10 metrics before sending to statsd
	bufferMetrics = 10
	ddRate        = 1
)

var (
	initOnce = sync.Once{}
	client   statsCli
)

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

// one client per process so buffered metrics are flushed together
func initClient() {
	host := viper.GetString("datadog_host")
	if host == "" {
		log.Log().Info("no datadog_host, metrics go to the debug log")
		client = &LogClient{}
		return
	}

	addr := fmt.Sprintf("%s:%d", host, DdPort)
	log.Log().WithField("addr", addr).Info("connecting to datadog agent")
	c, err := statsd.NewBuffered(addr, bufferMetrics)
	if err != nil {
		log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Error("can't talk to datadog agent, fallback to log")
		client = &LogClient{}
		return
	}
	client = c
}

// Ender is returned by BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// New creates a metric client with pkgName as key prefix
func New(pkgName string) Service {
	return &Metrics{
		pkgName: pkgName,
		tags: []string{
			"host:", // drop the host tag
			"pod:" + env.PodName(),
			"env:" + viper.GetString("env_name"),
			"app:" + viper.GetString("app_name"),
		},
	}
}

type Metrics struct {
	pkgName string
	tags    []string
}

func (mt *Metrics) key(key string) string {
	return mt.pkgName + "." + key
}

// tags are given as key, value pairs
func (mt *Metrics) withTags(tags []string) []string {
	if len(tags)%2 != 0 {
		log.Log().WithField("tags", tags).Error("tag length needs to be multiple of 2")
		tags = tags[:len(tags)-1]
	}
	res := make([]string, 0, len(mt.tags)+len(tags)/2)
	res = append(res, mt.tags...)
	for i := 0; i < len(tags); i += 2 {
		res = append(res, tags[i]+":"+tags[i+1])
	}
	return res
}

func (mt *Metrics) report(fn string, key string, err error) {
	if err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": fn}).Error("bump failed")
	}
}

func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	// datadog has no plain average, gauge is the closest
	mt.report("BumpAvg", key, client.Gauge(mt.key(key), val, mt.withTags(tags), ddRate))
}

func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	mt.report("BumpSum", key, client.Count(mt.key(key), int64(val), mt.withTags(tags), ddRate))
}

func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	initOnce.Do(initClient)
	mt.report("BumpHistogram", key, client.Histogram(mt.key(key), val, mt.withTags(tags), ddRate))
}

// BumpTime starts a timer, End records it:
//
//     defer m.BumpTime("place_proposal.time").End()
func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	initOnce.Do(initClient)
	return &timeTracker{start: time.Now(), mt: mt, key: key, tags: mt.withTags(tags)}
}

type timeTracker struct {
	start time.Time
	mt    *Metrics
	key   string
	tags  []string
}

func (t *timeTracker) End() {
	ms := float64(time.Since(t.start)) / float64(time.Millisecond)
	t.mt.report("BumpTime", t.key, client.TimeInMilliseconds(t.mt.key(t.key), ms, t.tags, ddRate))
}
