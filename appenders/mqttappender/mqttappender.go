// Package mqttappender provides a catlog appender publishing formatted
// events to an MQTT broker. Importing the package registers the
// MQTTAppender kind with propconfig:
//
//	appender.M=MQTTAppender
//	appender.M.broker=tcp://localhost:1883
//	appender.M.topic=logs/app
//	appender.M.qos=1
//	appender.M.layout=PatternLayout
//	appender.M.layout.ConversionPattern=%p %c: %m
package mqttappender

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/propconfig"
)

// Defaults for absent sub-properties.
const (
	DefaultBroker  = "tcp://localhost:1883"
	DefaultTopic   = "catlog"
	DefaultTimeout = 5 * time.Second

	// disconnectQuiesce is the time in milliseconds allowed for pending
	// publishes on Close.
	disconnectQuiesce = 250

	maxQoS = 2
)

// ErrConnect is returned when the broker cannot be reached.
var ErrConnect = errors.New("mqttappender: connection failed")

// publisher is the part of pahomqtt.Client the appender uses.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
	IsConnectionOpen() bool
	Disconnect(quiesce uint)
}

// Config describes the connection of an Appender.
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
	Retained bool

	// Timeout bounds connecting and, for QoS above 0, waiting for each
	// publish to be acknowledged.
	Timeout time.Duration

	// Logger receives publish failures. Optional.
	Logger *slog.Logger
}

// Appender publishes each event, formatted by its layout, as one MQTT
// message.
type Appender struct {
	catlog.LayoutAppenderBase
	client   publisher
	topic    string
	qos      byte
	retained bool
	timeout  time.Duration
	log      *slog.Logger
}

// New connects to cfg.Broker and returns an appender publishing to
// cfg.Topic. An empty ClientID is replaced by a random one.
func New(name string, cfg Config) (*Appender, error) {
	cfg = withDefaults(cfg)
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectTimeout(cfg.Timeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("%w: %s: timeout after %v", ErrConnect, cfg.Broker, cfg.Timeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnect, cfg.Broker, err)
	}
	return newAppender(name, client, cfg), nil
}

func withDefaults(cfg Config) Config {
	if cfg.Broker == "" {
		cfg.Broker = DefaultBroker
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "catlog-" + uuid.NewString()
	}
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.QoS > maxQoS {
		cfg.QoS = maxQoS
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

func newAppender(name string, client publisher, cfg Config) *Appender {
	return &Appender{
		LayoutAppenderBase: catlog.NewLayoutAppenderBase(name),
		client:             client,
		topic:              cfg.Topic,
		qos:                cfg.QoS,
		retained:           cfg.Retained,
		timeout:            cfg.Timeout,
		log:                cfg.Logger,
	}
}

// Topic returns the topic events are published to.
func (a *Appender) Topic() string {
	return a.topic
}

// DoAppend publishes ev. Events are dropped while the connection is down.
// With QoS 0 the publish is not waited for.
func (a *Appender) DoAppend(ev *catlog.LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	if !a.client.IsConnectionOpen() {
		return
	}
	token := a.client.Publish(a.topic, a.qos, a.retained, a.Format(ev))
	if a.qos == 0 {
		return
	}
	if !token.WaitTimeout(a.timeout) {
		a.log.Warn("mqtt publish timed out", "appender", a.Name(), "topic", a.topic)
		return
	}
	if err := token.Error(); err != nil {
		a.log.Warn("mqtt publish failed", "appender", a.Name(), "topic", a.topic, "error", err)
	}
}

// Close disconnects from the broker.
func (a *Appender) Close() error {
	a.client.Disconnect(disconnectQuiesce)
	return nil
}

func init() {
	propconfig.RegisterAppender("MQTTAppender", build)
}

// build reads broker, topic, qos, retained, clientId, username, password
// and timeout.
func build(name string, props propconfig.Props) (catlog.Appender, error) {
	qos := props.Int("qos", 0)
	if qos < 0 {
		qos = 0
	}
	a, err := New(name, Config{
		Broker:   props.String("broker", DefaultBroker),
		ClientID: props.String("clientId", ""),
		Username: props.String("username", ""),
		Password: props.String("password", ""),
		Topic:    props.String("topic", DefaultTopic),
		QoS:      byte(min(qos, maxQoS)),
		Retained: props.Bool("retained", false),
		Timeout:  props.Duration("timeout", DefaultTimeout),
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
