package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/deedchain/goapi/base/ctx"
	"github.com/deedchain/goapi/base/log"
)

const numClient = 4

var (
	initOnce  sync.Once
	ddClients []statsdClient
	ddCounter uint32
	ddMu      sync.Mutex
)

type statsdClient interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

func initClients() {
	addr := viper.GetString("datadog.addr")
	c := ctx.Background()
	for i := 0; i < numClient; i++ {
		client, err := statsd.New(addr)
		if err != nil {
			c.WithFields(log.Fields{"err": err, "addr": addr}).Warn("statsd.New failed, fallback to log client")
			ddClients = append(ddClients, &LogClient{})
			continue
		}
		ddClients = append(ddClients, client)
	}
}

func nextClient() statsdClient {
	initOnce.Do(initClients)
	ddMu.Lock()
	defer ddMu.Unlock()
	ddCounter++
	return ddClients[ddCounter%numClient]
}

// DDMetrics is a metrics client based on the datadog agent
type DDMetrics struct {
	ddTags []string
}

func (dd *DDMetrics) mergeTags(tags []string) []string {
	merged := make([]string, 0, len(dd.ddTags)+len(tags)/2)
	merged = append(merged, dd.ddTags...)
	for i := 0; i+1 < len(tags); i += 2 {
		merged = append(merged, parseTag(tags[i], tags[i+1]))
	}
	return merged
}

// BumpAvg sends a gauge to the agent
func (dd *DDMetrics) BumpAvg(key string, val float64, rate float64, tags ...string) {
	if err := nextClient().Gauge(key, val, dd.mergeTags(tags), rate); err != nil {
		logBumpErr(err, key)
	}
}

// BumpSum sends a count to the agent
func (dd *DDMetrics) BumpSum(key string, val float64, rate float64, tags ...string) {
	if err := nextClient().Count(key, int64(val), dd.mergeTags(tags), rate); err != nil {
		logBumpErr(err, key)
	}
}

// BumpHistogram sends a histogram to the agent
func (dd *DDMetrics) BumpHistogram(key string, val float64, rate float64, tags ...string) {
	if err := nextClient().Histogram(key, val, dd.mergeTags(tags), rate); err != nil {
		logBumpErr(err, key)
	}
}

// BumpTime starts a timer whose elapsed milliseconds are reported on End
func (dd *DDMetrics) BumpTime(key string, rate float64, tags ...string) Ender {
	return &ddTimeTracker{
		start: time.Now(),
		key:   key,
		tags:  dd.mergeTags(tags),
		rate:  rate,
	}
}

type ddTimeTracker struct {
	start time.Time
	key   string
	tags  []string
	rate  float64
}

func (t *ddTimeTracker) End() {
	elapsed := float64(time.Since(t.start)) / float64(time.Millisecond)
	if err := nextClient().TimeInMilliseconds(t.key, elapsed, t.tags, t.rate); err != nil {
		logBumpErr(err, t.key)
	}
}

func parseTag(key, val string) string {
	val = strings.ReplaceAll(val, ":", "_")
	if val == "" {
		val = TagValueNA
	}
	return fmt.Sprintf("%s:%s", key, val)
}

func logBumpErr(err error, key string) {
	ctx.Background().WithFields(log.Fields{"err": err, "key": key}).Debug("bump failed")
}
