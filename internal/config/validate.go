package config

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var streamNameRE = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report yaml names so errors point at the config file keys.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("streamname", func(fl validator.FieldLevel) bool {
		return streamNameRE.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// Validate checks field constraints and the cross-field rules that struct
// tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(cfg.Streams))
	for _, s := range cfg.Streams {
		if seen[s.Name] {
			return fmt.Errorf("invalid config: duplicate stream %q", s.Name)
		}
		seen[s.Name] = true

		if s.Disabled {
			continue
		}
		switch s.Kind {
		case "http":
			if !strings.HasPrefix(s.Path, "/") {
				return fmt.Errorf("invalid config: stream %q: path must start with /", s.Name)
			}
		case "alpaca_positions", "alpaca_orders":
			if !cfg.Alpaca.Enabled() {
				return fmt.Errorf("invalid config: stream %q needs alpaca credentials", s.Name)
			}
		case "replay":
			if !cfg.Journal.Enabled {
				return fmt.Errorf("invalid config: stream %q replays the journal but it is disabled", s.Name)
			}
		}
	}

	if len(cfg.Enabled()) == 0 {
		return errors.New("invalid config: no enabled streams")
	}
	return nil
}
