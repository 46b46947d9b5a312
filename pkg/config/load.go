package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func load(path string, target any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Error{Op: "load", Path: path, Err: fmt.Errorf("%w: copy %s.example and configure it", ErrConfigNotFound, path)}
		}

		return &Error{Op: "load", Path: path, Err: err}
	}

	if err := yaml.Unmarshal(data, target); err != nil {
		return &Error{Op: "parse", Path: path, Err: fmt.Errorf("%w: %w", ErrInvalidConfig, err)}
	}

	return nil
}

func validateEntry(path, section, key string, entry any) error {
	if err := validate.Struct(entry); err != nil {
		return &Error{Op: "validate", Path: path, Err: fmt.Errorf("%w: %s.%s: %w", ErrInvalidConfig, section, key, err)}
	}

	return nil
}
