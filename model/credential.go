package model

import "time"

// Provider identifies the cloud platform a credential grants access to.
type Provider string

const (
	ProviderAWS   Provider = "aws"
	ProviderAzure Provider = "azure"
	ProviderGCP   Provider = "gcp"
)

// Credential is an active (provider, credential-bundle) pair for a tenant.
// The Env map holds the already-decrypted bundle as environment variables for
// the engine subprocess; encryption at rest is handled upstream.
type Credential struct {
	Key       string            `json:"_key,omitempty"`
	TenantID  string            `json:"tenant_id"`
	Provider  Provider          `json:"provider"`
	Name      string            `json:"name"`
	Env       map[string]string `json:"env,omitempty"`
	Active    bool              `json:"active"`
	ObjType   string            `json:"objtype,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
