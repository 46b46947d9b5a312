package models

import (
	"encoding/json"
	"fmt"
)

// Defaults applied to workflow settings that are absent on restore.
const (
	DefaultSaveDataErrorExecution = "all"
	DefaultExecutionTimeout       = 3600
)

// settingDefaults lists the settings the migration normalizes. n8n stores several of
// them either as their typed value or as the string "DEFAULT", so values are kept raw
// and only presence is interpreted.
var settingDefaults = []struct {
	key   string
	value json.RawMessage
}{
	{"saveExecutionProgress", json.RawMessage(`true`)},
	{"saveManualExecutions", json.RawMessage(`true`)},
	{"saveDataErrorExecution", mustRaw(DefaultSaveDataErrorExecution)},
	{"executionTimeout", mustRaw(DefaultExecutionTimeout)},
	{"errorWorkflow", json.RawMessage(`""`)},
}

// Settings holds workflow settings as raw JSON members. Every value, normalized or
// not, is carried through unchanged.
type Settings struct {
	fields map[string]json.RawMessage
}

func (s *Settings) UnmarshalJSON(data []byte) error {
	fields, err := splitObject(data)
	if err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}

	s.fields = fields

	return nil
}

func (s Settings) MarshalJSON() ([]byte, error) {
	return json.Marshal(cloneFields(s.fields))
}

// ApplyDefaults fills every normalized setting that is absent. Explicit values win,
// whatever their type.
func (s *Settings) ApplyDefaults() {
	if s.fields == nil {
		s.fields = make(map[string]json.RawMessage, len(settingDefaults))
	}

	for _, def := range settingDefaults {
		if _, ok := s.fields[def.key]; !ok {
			s.fields[def.key] = append(json.RawMessage(nil), def.value...)
		}
	}
}

func (s Settings) clone() Settings {
	if s.fields == nil {
		return Settings{}
	}

	return Settings{fields: cloneFields(s.fields)}
}

func mustRaw(value any) json.RawMessage {
	raw, err := json.Marshal(value)
	if err != nil {
		panic(err)
	}

	return raw
}
