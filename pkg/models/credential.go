package models

import "time"

// CredentialType names the provider a stored secret belongs to.
type CredentialType string

const (
	CredentialTypeGemini    CredentialType = "GEMINI"
	CredentialTypeOpenAI    CredentialType = "OPENAI"
	CredentialTypeAnthropic CredentialType = "ANTHROPIC"
	CredentialTypeGrok      CredentialType = "GROK"
	CredentialTypeDeepSeek  CredentialType = "DEEPSEEK"
)

// Credential is a user-scoped secret. Value is already decrypted by the store.
type Credential struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Name      string         `json:"name"`
	Type      CredentialType `json:"type"`
	Value     string         `json:"value"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
