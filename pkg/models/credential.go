package models

import "strings"

// Credential types the tool knows schemas for out of the box.
var KnownCredentialTypes = []string{
	"telegramApi",
	"postgres",
	"openAiApi",
	"httpHeaderAuth",
}

// CredentialPayload is the create-credential request body.
type CredentialPayload struct {
	Name string         `json:"name"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// Credential is a credential as returned by the n8n API after creation.
type Credential struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// CredentialDisplayName strips any known environment postfix from name and appends
// the target postfix, so "Slack Token Prod" becomes "Slack Token Dev" for postfix "Dev".
func CredentialDisplayName(name string, knownPostfixes []string, postfix string) string {
	name = strings.TrimSpace(name)

	for _, known := range knownPostfixes {
		known = strings.TrimSpace(known)
		if known == "" {
			continue
		}

		if strings.HasSuffix(name, " "+known) {
			name = strings.TrimSpace(strings.TrimSuffix(name, " "+known))

			break
		}
	}

	postfix = strings.TrimSpace(postfix)
	if postfix == "" {
		return name
	}

	return name + " " + postfix
}
