package service

import (
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// Signature headers.
const (
	GenericSignatureHeader = "X-Webhook-Signature"
	PlainSecretHeader      = "X-Webhook-Secret"
)

type hmacStrategy struct {
	name   string
	header string
}

func (s hmacStrategy) Name() string       { return s.name }
func (s hmacStrategy) HeaderName() string { return s.header }

func (s hmacStrategy) ResolveSecret(cfg webhookDomain.SecretConfig) string {
	return cfg.ProviderSecret(s.name)
}

// NewHMACStrategy returns a strategy for a provider that signs the raw body with
// HMAC-SHA256 and sends the hex digest in header.
func NewHMACStrategy(name, header string) ProviderStrategy {
	return hmacStrategy{name: name, header: header}
}

// DefaultStrategies returns the strategies of the supported Ethiopian payment providers.
func DefaultStrategies() []ProviderStrategy {
	return []ProviderStrategy{
		NewHMACStrategy("telebirr", "X-Telebirr-Signature"),
		NewHMACStrategy("cbe", "X-CBE-Signature"),
		NewHMACStrategy("awash", "X-Awash-Signature"),
		NewHMACStrategy("chapa", "Chapa-Signature"),
	}
}
