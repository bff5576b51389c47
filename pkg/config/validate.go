package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level validator instance; go-playground/validator
// caches struct metadata internally so reuse across calls is cheap and the
// recommended usage pattern.
var validate = validator.New()

// Validate checks cfg against its struct tags and the handful of
// cross-field rules the tags alone can't express.
//
// The teacher's own pkg/config package has no Validate function of its own
// to ground this on (its validation_test.go calls one, but no definition
// ships in this pack) — this is authored directly against
// go-playground/validator/v10's idiom and the `validate:"..."` tags already
// present on Config's fields.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w", err)
	}

	for i, share := range cfg.Shares {
		if !share.ReadAllowed && !share.WriteAllowed {
			return fmt.Errorf("share %q (index %d): at least one of read_allowed or write_allowed must be true", share.Name, i)
		}
	}

	return nil
}
