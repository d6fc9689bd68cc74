// Package influxappender provides a catlog appender writing events as
// points to InfluxDB 2.x. Each event becomes one point of the configured
// measurement, tagged with its category and priority, with the message and
// diagnostic context as fields.
//
// Writes are non-blocking and batched by the InfluxDB client; Close flushes
// whatever is pending. Importing the package registers the InfluxAppender
// kind with propconfig:
//
//	appender.I=InfluxAppender
//	appender.I.url=http://localhost:8086
//	appender.I.token=secret
//	appender.I.org=home
//	appender.I.bucket=logs
package influxappender

import (
	"log/slog"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/propconfig"
)

// Defaults for absent sub-properties.
const (
	DefaultURL           = "http://localhost:8086"
	DefaultMeasurement   = "log"
	DefaultBatchSize     = 100
	DefaultFlushInterval = 1000 // milliseconds
)

// pointWriter is the part of api.WriteAPI the appender uses.
type pointWriter interface {
	WritePoint(point *write.Point)
	Flush()
}

// Config describes the InfluxDB connection of an Appender.
type Config struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string

	// BatchSize is the number of points buffered before a write.
	BatchSize uint
	// FlushInterval is the longest time in milliseconds a point stays
	// buffered.
	FlushInterval uint

	// Logger receives asynchronous write failures. Optional.
	Logger *slog.Logger
}

// Appender writes events to InfluxDB. It does not use a layout.
type Appender struct {
	*catlog.AppenderBase
	writer      pointWriter
	measurement string
	close       func()
}

// New creates an InfluxDB client for cfg and returns an appender writing
// through its non-blocking write API. No connection is made until the
// first batch is written.
func New(name string, cfg Config) *Appender {
	cfg = withDefaults(cfg)
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(cfg.BatchSize).
			SetFlushInterval(cfg.FlushInterval))
	writeAPI := client.WriteAPI(cfg.Org, cfg.Bucket)

	errs := writeAPI.Errors()
	log := cfg.Logger
	go func() {
		for err := range errs {
			log.Warn("influx write failed", "appender", name, "error", err)
		}
	}()

	a := newAppender(name, writeAPI, cfg)
	a.close = client.Close
	return a
}

func withDefaults(cfg Config) Config {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Measurement == "" {
		cfg.Measurement = DefaultMeasurement
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func newAppender(name string, w pointWriter, cfg Config) *Appender {
	return &Appender{
		AppenderBase: catlog.NewAppenderBase(name),
		writer:       w,
		measurement:  cfg.Measurement,
		close:        func() {},
	}
}

// Point converts ev to the point the appender writes.
func (a *Appender) Point(ev *catlog.LoggingEvent) *write.Point {
	tags := map[string]string{
		"category": ev.Category,
		"priority": ev.Priority.String(),
	}
	fields := map[string]interface{}{
		"message": ev.Message,
	}
	if ev.NDC != "" {
		fields["ndc"] = ev.NDC
	}
	return write.NewPoint(a.measurement, tags, fields, ev.Timestamp)
}

func (a *Appender) DoAppend(ev *catlog.LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	a.writer.WritePoint(a.Point(ev))
}

// Close flushes pending points and closes the client.
func (a *Appender) Close() error {
	a.writer.Flush()
	a.close()
	return nil
}

func init() {
	propconfig.RegisterAppender("InfluxAppender", build)
}

// build reads url, token, org, bucket, measurement, batchSize and
// flushInterval (milliseconds).
func build(name string, props propconfig.Props) (catlog.Appender, error) {
	batch := props.Int("batchSize", DefaultBatchSize)
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	interval := props.Duration("flushInterval", 0).Milliseconds()
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return New(name, Config{
		URL:           props.String("url", DefaultURL),
		Token:         props.String("token", ""),
		Org:           props.String("org", ""),
		Bucket:        props.String("bucket", ""),
		Measurement:   props.String("measurement", DefaultMeasurement),
		BatchSize:     uint(batch),
		FlushInterval: uint(interval),
	}), nil
}
