package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/carmeet/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-m string   metrics bind address, empty disables the endpoint
//	-d string   PostgreSQL DSN, empty keeps token requests in memory
//	-s string   JWT HMAC secret key
//	-k string   token signing key
//	-l int      token request lifetime, seconds
//	-t int      request throttle time, seconds
//	-i int      periodic garbage collection interval, seconds
//	-gc bool    garbage collection enabled (use -gc=false to disable)
//	-u string   activation URL, %s is replaced with the token
//
// SMTP settings are only read from the JSON file.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-a", "-m", "-d", "-s", "-k", "-l", "-t", "-i", "-u"}, "-gc")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.MetricsAddr, "m", config.MetricsAddr, "address and port of the metrics endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.SigningKey, "k", config.SigningKey, "token signing key")

	lifetime := fs.Int("l", int(config.TokenRequestLifetime.Seconds()), "token_request_lifetime (in seconds)")
	throttle := fs.Int("t", int(config.RequestThrottleTime.Seconds()), "request_throttle_time (in seconds)")
	gcInterval := fs.Int("i", int(config.GCInterval.Seconds()), "gc_interval (in seconds)")

	fs.BoolVar(&config.GCEnabled, "gc", config.GCEnabled, "garbage collection enabled")
	fs.StringVar(&config.ActivationURL, "u", config.ActivationURL, "activation URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenRequestLifetime = time.Duration(*lifetime) * time.Second
	config.RequestThrottleTime = time.Duration(*throttle) * time.Second
	config.GCInterval = time.Duration(*gcInterval) * time.Second
}
