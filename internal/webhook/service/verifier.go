package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// Verifier checks provider signatures first, then the generic signature, then the
// plain shared secret when that method is allowed.
type Verifier struct {
	secrets          webhookDomain.SecretConfig
	strategies       map[string]ProviderStrategy
	allowPlainSecret bool
	logger           *slog.Logger
}

// NewVerifier creates a Verifier. DefaultStrategies are used when none are given.
func NewVerifier(
	secrets webhookDomain.SecretConfig,
	allowPlainSecret bool,
	logger *slog.Logger,
	strategies ...ProviderStrategy,
) *Verifier {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	byName := make(map[string]ProviderStrategy, len(strategies))
	for _, s := range strategies {
		byName[s.Name()] = s
	}
	return &Verifier{
		secrets:          secrets,
		strategies:       byName,
		allowPlainSecret: allowPlainSecret,
		logger:           logger,
	}
}

// Verify authenticates body. provider is the lower-cased provider read from the body and
// only selects which provider header to look at; it is never trusted on its own.
// Each presented method is tried in order and a failed one falls through to the next;
// the delivery is rejected only when every presented method failed.
func (v *Verifier) Verify(provider string, headers http.Header, body []byte) (*webhookDomain.Verification, error) {
	if v.secrets.Generic == "" {
		return nil, webhookDomain.ErrWebhookSecretMissing
	}

	attempted := false

	if strategy, ok := v.strategies[provider]; ok {
		if presented := headers.Get(strategy.HeaderName()); presented != "" {
			attempted = true
			result, ok := v.checkHMAC(provider, webhookDomain.AuthMethodProviderHMAC, presented, strategy.ResolveSecret(v.secrets), body)
			if ok {
				return result, nil
			}
			v.logger.Debug("provider signature mismatch, trying generic methods",
				slog.String("provider", provider),
			)
		}
	}

	if presented := headers.Get(GenericSignatureHeader); presented != "" {
		attempted = true
		if result, ok := v.checkHMAC(provider, webhookDomain.AuthMethodGenericHMAC, presented, v.secrets.Generic, body); ok {
			return result, nil
		}
	}

	if presented := headers.Get(PlainSecretHeader); presented != "" {
		if !v.allowPlainSecret {
			if attempted {
				return nil, webhookDomain.ErrInvalidSignature
			}
			return nil, webhookDomain.ErrPlainSecretDisabled
		}
		if subtle.ConstantTimeCompare([]byte(presented), []byte(v.secrets.Generic)) != 1 {
			return nil, webhookDomain.ErrInvalidSignature
		}
		v.logger.Warn("webhook authenticated with plain shared secret",
			slog.String("provider", provider),
			slog.Bool("signature_rejected", attempted),
		)
		return &webhookDomain.Verification{
			Provider:   provider,
			Method:     webhookDomain.AuthMethodPlainSecret,
			Computed:   Sign(v.secrets.Generic, body),
			Downgraded: true,
		}, nil
	}

	if attempted {
		return nil, webhookDomain.ErrInvalidSignature
	}
	return nil, webhookDomain.ErrMissingSignature
}

func (v *Verifier) checkHMAC(
	provider string,
	method webhookDomain.AuthMethod,
	presented, secret string,
	body []byte,
) (*webhookDomain.Verification, bool) {
	computed := Sign(secret, body)
	if !hmac.Equal([]byte(normalizeSignature(presented)), []byte(computed)) {
		return nil, false
	}
	return &webhookDomain.Verification{
		Provider:  provider,
		Method:    method,
		Presented: presented,
		Computed:  computed,
	}, true
}

// Sign returns the lower-case hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// normalizeSignature accepts an optional "sha256=" prefix and upper-case hex.
func normalizeSignature(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "sha256=")
	return strings.ToLower(s)
}
