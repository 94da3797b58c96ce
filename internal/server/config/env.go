package config

import (
	"fmt"
	"strconv"
	"time"
)

type lookupFunc func(key string) (string, bool)

// parseEnv overlays variables that are set in the environment. Durations use
// time.ParseDuration syntax; JWT_COOKIE_EXPIRES is a number of days.
func parseEnv(c *Config, lookup lookupFunc) error {
	strs := map[string]*string{
		"HTTP_ADDR":      &c.EndpointAddrHTTP,
		"GRPC_ADDR":      &c.EndpointAddrGRPC,
		"DATABASE_DSN":   &c.DatabaseDSN,
		"JWT_SECRET":     &c.SecretKey,
		"FRONTEND_URL":   &c.FrontendURL,
		"APP_ENV":        &c.Environment,
		"SMTP_HOST":      &c.SMTPHost,
		"SMTP_PORT":      &c.SMTPPort,
		"SMTP_USER":      &c.SMTPUser,
		"SMTP_PASSWORD":  &c.SMTPPassword,
		"SMTP_FROM":      &c.SMTPFrom,
		"REDIS_ADDR":     &c.RedisAddr,
		"REDIS_PASSWORD": &c.RedisPassword,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"JWT_COOKIE_EXPIRES":           &c.CookieExpiresDays,
		"REDIS_DB":                     &c.RedisDB,
		"FORGOT_PASSWORD_MAX_REQUESTS": &c.ForgotPasswordMaxRequests,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", key, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"JWT_EXPIRES_IN":         &c.SessionTokenValidityDuration,
		"RESET_TOKEN_EXPIRES_IN": &c.ResetTokenValidityDuration,
		"FORGOT_PASSWORD_WINDOW": &c.ForgotPasswordWindow,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s must be a duration: %w", key, err)
			}
			*dst = d
		}
	}

	if v, ok := lookup("DENY_SUSPENDED_LOGIN"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DENY_SUSPENDED_LOGIN must be a boolean: %w", err)
		}
		c.DenySuspendedLogin = b
	}

	return nil
}
