package domain

import "strings"

// Verification describes a successfully authenticated delivery.
type Verification struct {
	Provider string
	Method   AuthMethod
	// Presented is the signature as sent by the caller. It is empty for plain-secret deliveries.
	Presented string
	// Computed is the hex HMAC-SHA256 of the body under the secret that matched.
	Computed string
	// Downgraded is set when the delivery relied on the plain shared secret.
	Downgraded bool
}

// SecretConfig holds the shared generic secret and the per-provider signing secrets.
type SecretConfig struct {
	Generic   string
	Providers map[string]string
}

// ProviderSecret returns the provider's dedicated secret, falling back to the generic one.
func (c SecretConfig) ProviderSecret(provider string) string {
	if s := c.Providers[strings.ToLower(provider)]; s != "" {
		return s
	}
	return c.Generic
}
