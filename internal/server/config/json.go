package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Durations
// accept both "1h" strings and integer nanoseconds. Only keys present in the
// file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP             *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC             *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	SessionTokenValidityDuration *timex.Duration `json:"session_token_validity_duration"`
	CookieExpiresDays            *int            `json:"cookie_expires_days"`
	ResetTokenValidityDuration   *timex.Duration `json:"reset_token_validity_duration"`
	FrontendURL                  *string         `json:"frontend_url"`
	Environment                  *string         `json:"environment"`
	DenySuspendedLogin           *bool           `json:"deny_suspended_login"`
	SMTPHost                     *string         `json:"smtp_host"`
	SMTPPort                     *string         `json:"smtp_port"`
	SMTPUser                     *string         `json:"smtp_user"`
	SMTPPassword                 *string         `json:"smtp_password"`
	SMTPFrom                     *string         `json:"smtp_from"`
	RedisAddr                    *string         `json:"redis_addr"`
	RedisPassword                *string         `json:"redis_password"`
	RedisDB                      *int            `json:"redis_db"`
	ForgotPasswordMaxRequests    *int            `json:"forgot_password_max_requests"`
	ForgotPasswordWindow         *timex.Duration `json:"forgot_password_window"`
}

// parseJson loads the file named by -c/-config in args, if any, over config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.Environment, c.Environment)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.SMTPFrom, c.SMTPFrom)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)

	if c.SessionTokenValidityDuration != nil {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.ResetTokenValidityDuration != nil {
		config.ResetTokenValidityDuration = c.ResetTokenValidityDuration.Duration
	}
	if c.ForgotPasswordWindow != nil {
		config.ForgotPasswordWindow = c.ForgotPasswordWindow.Duration
	}
	if c.CookieExpiresDays != nil {
		config.CookieExpiresDays = *c.CookieExpiresDays
	}
	if c.RedisDB != nil {
		config.RedisDB = *c.RedisDB
	}
	if c.ForgotPasswordMaxRequests != nil {
		config.ForgotPasswordMaxRequests = *c.ForgotPasswordMaxRequests
	}
	if c.DenySuspendedLogin != nil {
		config.DenySuspendedLogin = *c.DenySuspendedLogin
	}

	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
