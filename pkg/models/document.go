package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// splitObject decodes a JSON object into its raw members so unknown fields can be
// carried through a decode/encode cycle untouched.
func splitObject(data []byte) (map[string]json.RawMessage, error) {
	fields := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return fields, nil
	}

	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	return fields, nil
}

// takeField removes key from fields and decodes it into target when present.
func takeField(fields map[string]json.RawMessage, key string, target any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}

	delete(fields, key)

	if err := decodeNumbers(raw, target); err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}

	return nil
}

// putField encodes value into fields[key].
func putField(fields map[string]json.RawMessage, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("field %q: %w", key, err)
	}

	fields[key] = raw

	return nil
}

// decodeNumbers keeps numeric literals as json.Number so large ids and exact
// decimals survive a round trip through map[string]any.
func decodeNumbers(raw []byte, target any) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	return decoder.Decode(target)
}

func cloneFields(fields map[string]json.RawMessage) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		out[k] = append(json.RawMessage(nil), v...)
	}

	return out
}
