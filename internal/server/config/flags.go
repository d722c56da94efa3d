package config

import (
	"flag"
	"os"
	"time"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8099")
//	-d string   PostgreSQL DSN
//	-s string   base64-encoded JWT HMAC secret
//	-t int      token validity, minutes
//	-k int      ask timeout, milliseconds
//	-x int      statement timeout, milliseconds
//	-n          disable authentication (passthrough mode)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers and converted to time.Duration values.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-k", "-x", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "base64-encoded secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	askTimeout := fs.Int("k", int(config.AskTimeout.Milliseconds()), "ask_timeout (in milliseconds)")
	stmtTimeout := fs.Int("x", int(config.StatementTimeout.Milliseconds()), "statement_timeout (in milliseconds)")

	fs.BoolVar(&config.AuthDisabled, "n", config.AuthDisabled, "disable authentication")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.AskTimeout = time.Duration(*askTimeout) * time.Millisecond
	config.StatementTimeout = time.Duration(*stmtTimeout) * time.Millisecond
}
