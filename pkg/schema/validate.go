package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidCredential indicates credential data does not satisfy its type's schema.
var ErrInvalidCredential = errors.New("credential data does not match schema")

// ValidationError lists every schema violation of one credential.
type ValidationError struct {
	Credential string
	Problems   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Credential, ErrInvalidCredential, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCredential
}

// Validate checks data against a credential-type schema.
func Validate(credential string, schema []byte, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}

	schemaLoader := gojsonschema.NewBytesLoader(schema)
	dataLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("failed to validate %s: %w", credential, err)
	}

	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		problems = append(problems, desc.String())
	}

	return &ValidationError{Credential: credential, Problems: problems}
}
