package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-d", "-s", "-t", "-k", "-r", "-f", "-e",
	"-deny-suspended", "-smtp-host", "-smtp-port", "-smtp-user", "-smtp-password", "-smtp-from",
	"-redis-addr", "-redis-password", "-redis-db",
}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session token validity, minutes
//	-k int      session cookie lifetime, days
//	-r int      reset token validity, minutes
//	-f string   frontend base URL
//	-e string   environment (development|production)
//	-deny-suspended=bool  refuse login for suspended accounts
//	-smtp-host, -smtp-port, -smtp-user, -smtp-password, -smtp-from string
//	-redis-addr, -redis-password string, -redis-db int
//
// Boolean flags must use the "-name=value" form because args are filtered
// by flagx.FilterArgs before parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session token validity (in minutes)")
	fs.IntVar(&config.CookieExpiresDays, "k", config.CookieExpiresDays, "session cookie lifetime (in days)")
	resetValidity := fs.Int("r", int(config.ResetTokenValidityDuration.Minutes()), "reset token validity (in minutes)")

	fs.StringVar(&config.FrontendURL, "f", config.FrontendURL, "frontend base URL")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.BoolVar(&config.DenySuspendedLogin, "deny-suspended", config.DenySuspendedLogin, "refuse login for suspended accounts")

	fs.StringVar(&config.SMTPHost, "smtp-host", config.SMTPHost, "SMTP host")
	fs.StringVar(&config.SMTPPort, "smtp-port", config.SMTPPort, "SMTP port")
	fs.StringVar(&config.SMTPUser, "smtp-user", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "smtp-password", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SMTPFrom, "smtp-from", config.SMTPFrom, "SMTP sender address")

	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "Redis address")
	fs.StringVar(&config.RedisPassword, "redis-password", config.RedisPassword, "Redis password")
	fs.IntVar(&config.RedisDB, "redis-db", config.RedisDB, "Redis database")

	if err := fs.Parse(flagx.FilterArgs(args, serverFlags)); err != nil {
		return err
	}

	// Minute-granular flags only override when given, so finer values from
	// the environment or JSON survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Minute
		case "r":
			config.ResetTokenValidityDuration = time.Duration(*resetValidity) * time.Minute
		}
	})
	return nil
}
