package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// Config defines the connection parameters and topics of the MQTT intake.
type Config struct {
	Broker     string          `json:"broker"`
	ClientID   string          `json:"client_id"`
	Username   string          `json:"username"`
	Password   string          `json:"password"`
	UseTLS     bool            `json:"use_tls"`
	ClientCert string          `json:"client_cert"`
	ClientKey  string          `json:"client_key"`
	CABundle   string          `json:"ca_bundle"`
	AuthMethod string          `json:"auth_method"`
	QoS        map[string]byte `json:"qos"`
	LWTTopic   string          `json:"lwt_topic"`
	LWTPayload string          `json:"lwt_payload"`
	LWTQoS     byte            `json:"lwt_qos"`
	LWTRetain  bool            `json:"lwt_retain"`
	MaxRetries int             `json:"max_retries"`
	BackoffMS  int             `json:"backoff_ms"`

	// RequestTopic receives docking request records.
	RequestTopic string `json:"request_topic"`
	// ResultPrefix is the topic prefix results are published under, one
	// subtopic per mission id.
	ResultPrefix string `json:"result_prefix"`
	// ClearTopic triggers a reset of the whole schedule.
	ClearTopic string `json:"clear_topic"`
	// ScheduleRequestTopic triggers a schedule dump on ScheduleTopic.
	ScheduleRequestTopic string `json:"schedule_request_topic"`
	ScheduleTopic        string `json:"schedule_topic"`
	// HealthTopic carries the retained online/offline status.
	HealthTopic string `json:"health_topic"`

	TLSConfig *tls.Config `json:"-"`
}

// SetDefaults fills the topic layout and client id when unset.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "dockyard"
	}
	if c.RequestTopic == "" {
		c.RequestTopic = "dockyard/requests"
	}
	if c.ResultPrefix == "" {
		c.ResultPrefix = "dockyard/results"
	}
	c.ResultPrefix = strings.TrimSuffix(c.ResultPrefix, "/")
	if c.ClearTopic == "" {
		c.ClearTopic = "dockyard/schedule/clear"
	}
	if c.ScheduleRequestTopic == "" {
		c.ScheduleRequestTopic = "dockyard/schedule/get"
	}
	if c.ScheduleTopic == "" {
		c.ScheduleTopic = "dockyard/schedule"
	}
	if c.HealthTopic == "" {
		c.HealthTopic = "dockyard/health"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Enabled reports whether a broker is configured.
func (c Config) Enabled() bool { return c.Broker != "" }

// Validate checks the settings of an enabled intake.
func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if strings.ContainsAny(c.ResultPrefix, "+#") {
		return fmt.Errorf("mqtt: result_prefix must not contain wildcards")
	}
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("mqtt: unknown auth_method %q", c.AuthMethod)
	}
	for k, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("mqtt: qos %s must be 0, 1 or 2", k)
		}
	}
	if c.UseTLS && c.TLSConfig == nil && (c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "") {
		return errors.New("mqtt: tls requires client_cert, client_key and ca_bundle")
	}
	return nil
}

func (c Config) qos(kind string) byte {
	if q, ok := c.QoS[kind]; ok {
		return q
	}
	return 0
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	switch {
	case cfg.LWTTopic != "":
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	case cfg.HealthTopic != "":
		opts.SetWill(cfg.HealthTopic, string(healthPayload(healthOffline)), 1, true)
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
	if !pool.AppendCertsFromPEM(caBytes) {
		return nil, fmt.Errorf("ca bundle %s contains no certificates", c.CABundle)
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}
