package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Discover when no config file exists.
	ErrNotFound = errors.New("config not found")

	// ErrExists is returned by WriteDefault when it would overwrite a file.
	ErrExists = errors.New("config already exists")

	// ErrInvalid matches every *ConfigError.
	ErrInvalid = errors.New("invalid config")
)

// ConfigError lists everything wrong with one config file.
type ConfigError struct {
	Path    string
	Missing []string // unresolved ${VAR} references
	Errors  []string // "field: reason" validation failures
}

// Problems returns missing variables and validation failures as one list.
func (e *ConfigError) Problems() []string {
	problems := make([]string, 0, len(e.Missing)+len(e.Errors))
	for _, m := range e.Missing {
		problems = append(problems, "unset environment variable "+m)
	}
	return append(problems, e.Errors...)
}

// HasErrors reports whether anything is wrong.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}

func (e *ConfigError) Error() string {
	problems := e.Problems()
	if len(problems) == 0 {
		return ""
	}
	where := "config"
	if e.Path != "" {
		where = "config " + e.Path
	}
	if len(problems) == 1 {
		return fmt.Sprintf("%s: %s", where, problems[0])
	}
	return fmt.Sprintf("%s: %d problems:\n  - %s", where, len(problems), strings.Join(problems, "\n  - "))
}

func (e *ConfigError) Is(target error) bool { return target == ErrInvalid }
