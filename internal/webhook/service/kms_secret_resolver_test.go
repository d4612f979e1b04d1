package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
)

// generateLocalSecretsURI generates a base64key:// URI for testing.
func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestKMSSecretResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	resolver := NewKMSSecretResolver()

	t.Run("Success_EmptyURIPassesThrough", func(t *testing.T) {
		cfg := webhookDomain.SecretConfig{Generic: "plain", Providers: map[string]string{"cbe": "cbe"}}

		resolved, err := resolver.Resolve(ctx, "", cfg)

		require.NoError(t, err)
		assert.Equal(t, cfg, resolved)
	})

	t.Run("Success_RoundTrip", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)

		generic, err := resolver.Encrypt(ctx, keyURI, "generic-secret")
		require.NoError(t, err)
		chapa, err := resolver.Encrypt(ctx, keyURI, "chapa-secret")
		require.NoError(t, err)
		assert.NotEqual(t, "generic-secret", generic)

		resolved, err := resolver.Resolve(ctx, keyURI, webhookDomain.SecretConfig{
			Generic:   generic,
			Providers: map[string]string{"chapa": chapa},
		})

		require.NoError(t, err)
		assert.Equal(t, "generic-secret", resolved.Generic)
		assert.Equal(t, "chapa-secret", resolved.Providers["chapa"])
	})

	t.Run("Error_NotBase64", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)

		_, err := resolver.Resolve(ctx, keyURI, webhookDomain.SecretConfig{Generic: "not base64!"})

		assert.ErrorIs(t, err, apperrors.ErrMisconfigured)
	})

	t.Run("Error_WrongKey", func(t *testing.T) {
		ciphertext, err := resolver.Encrypt(ctx, generateLocalSecretsURI(t), "generic-secret")
		require.NoError(t, err)

		_, err = resolver.Resolve(ctx, generateLocalSecretsURI(t), webhookDomain.SecretConfig{Generic: ciphertext})

		assert.ErrorIs(t, err, apperrors.ErrMisconfigured)
		assert.Contains(t, err.Error(), "failed to decrypt")
	})

	t.Run("Error_InvalidURI", func(t *testing.T) {
		_, err := resolver.Resolve(ctx, "invalid://uri", webhookDomain.SecretConfig{Generic: "x"})

		assert.ErrorIs(t, err, apperrors.ErrMisconfigured)
		assert.Contains(t, err.Error(), "failed to open KMS keeper")
	})
}
