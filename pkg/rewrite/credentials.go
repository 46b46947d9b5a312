package rewrite

import (
	"strings"

	"golang.org/x/text/cases"
)

var folder = cases.Fold()

// NormalizeCredentialKey is the credential matching policy: underscores count as
// spaces, only the first word is kept (dropping any environment postfix) and the
// result is case-folded. "My Postgres DB Prod" and "my_postgres_db" both become "my".
func NormalizeCredentialKey(name string) string {
	words := strings.Fields(strings.ReplaceAll(name, "_", " "))
	if len(words) == 0 {
		return ""
	}

	return folder.String(words[0])
}

type credentialEntry struct {
	key string
	id  string
}

// CredentialMapping maps credential keys to the ids created on the target instance.
// Lookups walk the keys in insertion order so the first match is stable.
type CredentialMapping struct {
	entries []credentialEntry
	index   map[string]int
}

func NewCredentialMapping() *CredentialMapping {
	return &CredentialMapping{index: map[string]int{}}
}

// Add records id under key. A key is written once per run; later writes are ignored.
func (m *CredentialMapping) Add(key, id string) bool {
	if _, exists := m.index[key]; exists {
		return false
	}

	m.index[key] = len(m.entries)
	m.entries = append(m.entries, credentialEntry{key: key, id: id})

	return true
}

// Resolve finds the first key whose normalized form equals the normalized name.
func (m *CredentialMapping) Resolve(name string) (id, key string, ok bool) {
	if m == nil {
		return "", "", false
	}

	want := NormalizeCredentialKey(name)
	if want == "" {
		return "", "", false
	}

	for _, entry := range m.entries {
		if NormalizeCredentialKey(entry.key) == want {
			return entry.id, entry.key, true
		}
	}

	return "", "", false
}

func (m *CredentialMapping) Len() int {
	if m == nil {
		return 0
	}

	return len(m.entries)
}
