package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	coremqtt "github.com/kilianp07/haulage/core/mqtt"
	"github.com/kilianp07/haulage/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client. An empty
// Broker disables publication.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	QoS         byte        `json:"qos"`
	Retained    bool        `json:"retained"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// SetDefaults fills zero values with defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "haulage"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "haulage"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS == 0 {
		c.BackoffMS = 100
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.QoS)
	}
	if c.MaxRetries < 0 || c.BackoffMS < 0 {
		return fmt.Errorf("mqtt retries and backoff must be non-negative")
	}
	return nil
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements core mqtt.Publisher using Eclipse Paho.
type PahoPublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retained   bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
}

// NewPahoPublisher connects to the broker.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected to %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return &PahoPublisher{
		cli:        c,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retained:   cfg.Retained,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
	}, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// Topic returns the broker topic for a subject.
func (p *PahoPublisher) Topic(subject string) string {
	if p.prefix == "" {
		return subject
	}
	return p.prefix + "/" + subject
}

// Publish encodes v as JSON and publishes it, retrying with exponential
// backoff until the retries are exhausted or ctx is done.
func (p *PahoPublisher) Publish(ctx context.Context, subject string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	topic := p.Topic(subject)
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retained, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugf("published %d bytes to %s", len(payload), topic)
			return nil
		}
		p.log.Warnf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s: %v", coremqtt.ErrPublish, topic, ctx.Err())
		case <-time.After(p.backoff * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("%w: %s: %v", coremqtt.ErrPublish, topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *PahoPublisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
