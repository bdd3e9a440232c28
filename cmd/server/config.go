package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/mdewit/matchbox/internal/auth"
	"github.com/mdewit/matchbox/internal/krypto"
)

// httpConfig is the configuration for the HTTP server.
type httpConfig struct {
	addr            string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	idleTimeout     time.Duration
	shutdownTimeout time.Duration

	// viewDir loads templates from disk instead of the embedded ones.
	// Meant for development.
	viewDir string

	secureCookie bool
	sessionKey   krypto.Key
}

// dbConfig is the configuration for the database.
type dbConfig struct {
	file    string
	migrate bool
}

// config is the configuration for the server command.
type config struct {
	http httpConfig
	db   dbConfig
	auth auth.ServiceConfig
}

// defaultConfig returns a config with sane default values.
func defaultConfig() config {
	return config{
		http: httpConfig{
			addr:            ":8888",
			readTimeout:     time.Second * 5,
			writeTimeout:    time.Second * 10,
			idleTimeout:     time.Second * 120,
			shutdownTimeout: time.Second * 15,
			secureCookie:    true,
		},
		db: dbConfig{
			file:    "matchbox.db",
			migrate: true,
		},
		auth: auth.ServiceConfig{
			Argon2Params: krypto.DefaultArgon2Params,
			MatchLimit:   auth.DefaultMatchLimit,
		},
	}
}

// requiredEnvKeys are env variables without a safe default. Missing any of
// them is a configuration error.
var requiredEnvKeys = []string{
	"SESSION_KEY",
}

// envMap maps environment variable names to fields in the config struct.
var envMap = map[string]func(v string, c *config) error{
	"HTTP_ADDR": func(v string, c *config) error {
		c.http.addr = v
		return nil
	},
	"HTTP_READ_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.readTimeout, 0, math.MaxInt64)
	},
	"HTTP_WRITE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.writeTimeout, 0, math.MaxInt64)
	},
	"HTTP_IDLE_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.idleTimeout, 0, math.MaxInt64)
	},
	"HTTP_SHUTDOWN_TIMEOUT": func(v string, c *config) error {
		return confDuration(v, &c.http.shutdownTimeout, 0, math.MaxInt64)
	},
	"HTTP_VIEW_DIR": func(v string, c *config) error {
		c.http.viewDir = v
		return nil
	},
	"HTTP_SECURE_COOKIE": func(v string, c *config) error {
		return confBool(v, &c.http.secureCookie)
	},
	"SESSION_KEY": func(v string, c *config) error {
		key, err := krypto.ParseKey(v)
		if err != nil {
			return err
		}
		c.http.sessionKey = key
		return nil
	},
	"DB_FILENAME": func(v string, c *config) error {
		if v == "" {
			return errors.New("empty database filename")
		}
		c.db.file = v
		return nil
	},
	"DB_MIGRATE": func(v string, c *config) error {
		return confBool(v, &c.db.migrate)
	},
	"ARGON2_MEMORY_KIB": func(v string, c *config) error {
		return confUint32(v, &c.auth.Argon2Params.MemoryKiB, 8)
	},
	"ARGON2_ITERATIONS": func(v string, c *config) error {
		return confUint32(v, &c.auth.Argon2Params.Iterations, 1)
	},
	"ARGON2_PARALLELISM": func(v string, c *config) error {
		return confUint8(v, &c.auth.Argon2Params.Parallelism, 1)
	},
	"MATCH_LIMIT": func(v string, c *config) error {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if limit < 1 {
			return fmt.Errorf("match limit %d is below 1", limit)
		}
		c.auth.MatchLimit = limit
		return nil
	},
}

// configFromEnv returns a config with values from the environment. It falls
// back to default values for any missing non-required environment variables.
//
// It does a best effort to validate provided values, so that mistakes are
// caught ASAP. However, there is no guarantee that the returned config
// is valid and will work.
func configFromEnv() (config, error) {
	c := defaultConfig()

	var errs []error

	for key, mf := range envMap {
		if val, ok := os.LookupEnv(key); ok {
			if err := mf(val, &c); err != nil {
				errs = append(errs, fmt.Errorf("invalid env variable %s: %w", key, err))
			}
		}
	}

	for _, key := range requiredEnvKeys {
		if _, ok := os.LookupEnv(key); !ok {
			errs = append(errs, fmt.Errorf("missing required env variable %s", key))
		}
	}

	if len(errs) > 0 {
		return c, errors.Join(errs...)
	}

	return c, nil
}

// confDuration attempts to parse v into tgt and checks if the result is in
// the provided range (inclusive).
func confDuration(v string, tgt *time.Duration, min, max time.Duration) error {
	dur, err := time.ParseDuration(v)
	if err != nil {
		return err
	}

	if dur < min || dur > max {
		return fmt.Errorf("duration %s not in range [%s, %s] (inclusive)", dur, min, max)
	}

	*tgt = dur

	return nil
}

func confBool(v string, tgt *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}

	*tgt = b

	return nil
}

func confUint32(v string, tgt *uint32, min uint32) error {
	u, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return err
	}

	if uint32(u) < min {
		return fmt.Errorf("value %d is below minimum %d", u, min)
	}

	*tgt = uint32(u)

	return nil
}

func confUint8(v string, tgt *uint8, min uint8) error {
	u, err := strconv.ParseUint(v, 10, 8)
	if err != nil {
		return err
	}

	if uint8(u) < min {
		return fmt.Errorf("value %d is below minimum %d", u, min)
	}

	*tgt = uint8(u)

	return nil
}
