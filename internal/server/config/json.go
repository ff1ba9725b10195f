package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/flagx"
	"github.com/dmitrijs2005/carmeet/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept strings such
// as "90s" or integer nanoseconds. Absent keys leave the current value
// untouched.
type JsonConfig struct {
	EndpointAddrGRPC           string         `json:"endpoint_addr_grpc"`
	MetricsAddr                string         `json:"metrics_addr"`
	DatabaseDSN                string         `json:"database_dsn"`
	SecretKey                  string         `json:"secret_key"`
	SigningKey                 string         `json:"signing_key"`
	TokenRequestLifetime       timex.Duration `json:"token_request_lifetime"`
	RequestThrottleTime        timex.Duration `json:"request_throttle_time"`
	GCEnabled                  *bool          `json:"gc_enabled"`
	GCInterval                 timex.Duration `json:"gc_interval"`
	AdminTokenValidityDuration timex.Duration `json:"admin_token_validity_duration"`
	SMTPHost                   string         `json:"smtp_host"`
	SMTPPort                   int            `json:"smtp_port"`
	SMTPUser                   string         `json:"smtp_user"`
	SMTPPassword               string         `json:"smtp_password"`
	MailSender                 string         `json:"mail_sender"`
	ActivationURL              string         `json:"activation_url"`
	LogLevel                   string         `json:"log_level"`
}

// parseJson loads the file named by -c or -config into config. Without
// either flag nothing is loaded. Unreadable files and invalid JSON panic.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.MetricsAddr, c.MetricsAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SigningKey, c.SigningKey)
	setDuration(&config.TokenRequestLifetime, c.TokenRequestLifetime)
	setDuration(&config.RequestThrottleTime, c.RequestThrottleTime)
	if c.GCEnabled != nil {
		config.GCEnabled = *c.GCEnabled
	}
	setDuration(&config.GCInterval, c.GCInterval)
	setDuration(&config.AdminTokenValidityDuration, c.AdminTokenValidityDuration)
	setString(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort != 0 {
		config.SMTPPort = c.SMTPPort
	}
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailSender, c.MailSender)
	setString(&config.ActivationURL, c.ActivationURL)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
