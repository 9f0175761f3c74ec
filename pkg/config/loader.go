package config

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load parses environment variables into the provided struct using its `env` tags.
//
//	type Config struct {
//	    Port            int           `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`
//	    SessionDuration time.Duration `env:"SESSION_DURATION" envDefault:"120"`
//	}
//
// Bare integers are accepted for time.Duration fields and read as minutes,
// which is how SESSION_DURATION is expressed by storefront deployments.
func Load(cfg any) error {
	return LoadWithPrefix(cfg, "")
}

// LoadWithPrefix is Load with every variable name prefixed.
func LoadWithPrefix(cfg any, prefix string) error {
	opts := env.Options{
		Prefix: prefix,
		FuncMap: map[reflect.Type]env.ParserFunc{
			durationType: parseMinutesOrDuration,
		},
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// parseMinutesOrDuration accepts "90" (minutes) or a time.ParseDuration string ("1h30m").
func parseMinutesOrDuration(v string) (any, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Minute, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return nil, fmt.Errorf("invalid duration %q: %w", v, err)
	}
	return d, nil
}
