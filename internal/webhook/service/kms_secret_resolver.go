package service

import (
	"context"
	"encoding/base64"
	"fmt"

	validation "github.com/jellydator/validation"
	"gocloud.dev/secrets"

	apperrors "github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
	customValidation "github.com/getachewzemene/minalesh-amplify-sub001/internal/validation"
	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// kmsSecretResolver implements SecretResolver using gocloud.dev/secrets.
type kmsSecretResolver struct{}

// NewKMSSecretResolver creates a SecretResolver backed by gocloud.dev/secrets.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func NewKMSSecretResolver() SecretResolver {
	return &kmsSecretResolver{}
}

func (r *kmsSecretResolver) openKeeper(ctx context.Context, keyURI string) (*secrets.Keeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, fmt.Sprintf("failed to open KMS keeper: %v", err))
	}
	return keeper, nil
}

// Resolve decrypts the generic secret and each provider secret.
func (r *kmsSecretResolver) Resolve(
	ctx context.Context,
	keyURI string,
	cfg webhookDomain.SecretConfig,
) (webhookDomain.SecretConfig, error) {
	if keyURI == "" {
		return cfg, nil
	}

	keeper, err := r.openKeeper(ctx, keyURI)
	if err != nil {
		return webhookDomain.SecretConfig{}, err
	}
	defer func() {
		_ = keeper.Close()
	}()

	resolved := webhookDomain.SecretConfig{Providers: make(map[string]string, len(cfg.Providers))}

	if cfg.Generic != "" {
		resolved.Generic, err = decryptSecret(ctx, keeper, cfg.Generic)
		if err != nil {
			return webhookDomain.SecretConfig{}, apperrors.Wrap(err, "generic webhook secret")
		}
	}

	for provider, ciphertext := range cfg.Providers {
		plaintext, err := decryptSecret(ctx, keeper, ciphertext)
		if err != nil {
			return webhookDomain.SecretConfig{}, apperrors.Wrapf(err, "%s webhook secret", provider)
		}
		resolved.Providers[provider] = plaintext
	}

	return resolved, nil
}

// Encrypt wraps plaintext and returns standard base64 ciphertext.
func (r *kmsSecretResolver) Encrypt(ctx context.Context, keyURI, plaintext string) (string, error) {
	keeper, err := r.openKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = keeper.Close()
	}()

	ciphertext, err := keeper.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encrypt webhook secret")
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptSecret(ctx context.Context, keeper *secrets.Keeper, encoded string) (string, error) {
	if err := validation.Validate(encoded, customValidation.Base64); err != nil {
		return "", apperrors.Wrap(apperrors.ErrMisconfigured, err.Error())
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrMisconfigured, err.Error())
	}

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrMisconfigured, fmt.Sprintf("failed to decrypt: %v", err))
	}
	return string(plaintext), nil
}
