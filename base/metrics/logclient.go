package metrics

import (
	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
)

// LogClient logs bumps at debug level. It is used when no datadog agent is reachable.
type LogClient struct{}

func (l *LogClient) emit(kind, name string, value float64, tags []string) error {
	ctx.Background().WithFields(log.Fields{
		"kind":  kind,
		"name":  name,
		"value": value,
		"tags":  tags,
	}).Debug("bump")
	return nil
}

func (l *LogClient) Gauge(name string, value float64, tags []string, rate float64) error {
	return l.emit("gauge", name, value, tags)
}

func (l *LogClient) Count(name string, value int64, tags []string, rate float64) error {
	return l.emit("count", name, float64(value), tags)
}

func (l *LogClient) Histogram(name string, value float64, tags []string, rate float64) error {
	return l.emit("histogram", name, value, tags)
}

func (l *LogClient) TimeInMilliseconds(name string, value float64, tags []string, rate float64) error {
	return l.emit("time", name, value, tags)
}
