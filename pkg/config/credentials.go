package config

import (
	"fmt"
	"strings"
)

// DefaultCredentialsPath is where the credential/environment document is read from.
const DefaultCredentialsPath = "credentials.yaml"

// Environments of the two-tier model.
const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"
)

// CredentialDefinition declares one credential to create on restore.
type CredentialDefinition struct {
	Key  string         `yaml:"-"`
	Name string         `yaml:"name" validate:"required"`
	Type string         `yaml:"type" validate:"required"`
	Data map[string]any `yaml:"data"`
}

// Environment is a deployment target with its own credential variants.
type Environment struct {
	Key         string                         `yaml:"-"`
	Name        string                         `yaml:"name"`
	Postfix     string                         `yaml:"postfix"`
	Credentials Ordered[*CredentialDefinition] `yaml:"credentials"`
}

// DisplayName falls back to the capitalized key.
func (e *Environment) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}

	if e.Key == "" {
		return ""
	}

	return strings.ToUpper(e.Key[:1]) + e.Key[1:]
}

// Definitions returns the credential declarations in document order.
func (e *Environment) Definitions() []*CredentialDefinition {
	out := make([]*CredentialDefinition, 0, e.Credentials.Len())

	for _, key := range e.Credentials.Keys() {
		def, _ := e.Credentials.Get(key)
		out = append(out, def)
	}

	return out
}

// ReplacementGroup binds one environment-specific literal per environment.
type ReplacementGroup struct {
	Values Ordered[string] `yaml:"values"`
}

// Credentials is the credential/environment document.
type Credentials struct {
	Environments Ordered[*Environment]      `yaml:"environments"`
	Replacements Ordered[*ReplacementGroup] `yaml:"replacements"`
}

// LoadCredentials reads and validates the credential/environment document.
func LoadCredentials(path string) (*Credentials, error) {
	var creds Credentials
	if err := load(path, &creds); err != nil {
		return nil, err
	}

	for _, envKey := range creds.Environments.Keys() {
		env, _ := creds.Environments.Get(envKey)
		if env == nil {
			env = &Environment{}
			creds.Environments.Set(envKey, env)
		}

		env.Key = envKey
		env.Postfix = strings.TrimSpace(env.Postfix)

		for _, credKey := range env.Credentials.Keys() {
			def, _ := env.Credentials.Get(credKey)
			if def == nil {
				return nil, &Error{Op: "validate", Path: path, Err: fmt.Errorf("%w: %s.credentials.%s is empty", ErrInvalidConfig, envKey, credKey)}
			}

			def.Key = credKey

			if err := validateEntry(path, envKey+".credentials", credKey, def); err != nil {
				return nil, err
			}
		}
	}

	return &creds, nil
}

// Environment returns the environment declared under key.
func (c *Credentials) Environment(key string) (*Environment, error) {
	env, ok := c.Environments.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEnvironmentNotFound, key)
	}

	return env, nil
}

// Postfixes lists every non-empty environment postfix.
func (c *Credentials) Postfixes() []string {
	var out []string

	for _, key := range c.Environments.Keys() {
		env, _ := c.Environments.Get(key)
		if env.Postfix != "" {
			out = append(out, env.Postfix)
		}
	}

	return out
}

// ReplacementTable maps every other environment's literal to the target's literal,
// for each group that declares a value for target.
func (c *Credentials) ReplacementTable(target string) map[string]string {
	table := map[string]string{}

	for _, name := range c.Replacements.Keys() {
		group, _ := c.Replacements.Get(name)
		if group == nil {
			continue
		}

		want, ok := group.Values.Get(target)
		if !ok {
			continue
		}

		for _, env := range group.Values.Keys() {
			if env == target {
				continue
			}

			if value, _ := group.Values.Get(env); value != "" {
				table[value] = want
			}
		}
	}

	return table
}
