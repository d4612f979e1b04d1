// Package service provides webhook authentication and secret handling.
package service

import (
	"context"
	"net/http"

	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// ProviderStrategy describes how a single payment provider signs its deliveries.
type ProviderStrategy interface {
	// Name is the lower-cased provider name as it appears in the payload.
	Name() string
	// HeaderName is the header carrying the provider's hex HMAC-SHA256 signature.
	HeaderName() string
	// ResolveSecret picks the signing secret for this provider.
	ResolveSecret(cfg webhookDomain.SecretConfig) string
}

// SignatureVerifier authenticates a raw webhook delivery.
type SignatureVerifier interface {
	Verify(provider string, headers http.Header, body []byte) (*webhookDomain.Verification, error)
}

// SecretResolver turns configured webhook secrets into usable plaintext.
type SecretResolver interface {
	// Resolve decrypts every secret in cfg with the keeper behind keyURI.
	// An empty keyURI returns cfg unchanged.
	Resolve(ctx context.Context, keyURI string, cfg webhookDomain.SecretConfig) (webhookDomain.SecretConfig, error)

	// Encrypt wraps a plaintext secret with the keeper behind keyURI and returns base64 ciphertext.
	Encrypt(ctx context.Context, keyURI, plaintext string) (string, error)
}
