package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	webhookService "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/service"
)

// RunEncryptSecret encrypts a webhook secret with the keeper behind keyURI and prints the
// base64 ciphertext to place in PAYMENT_WEBHOOK_SECRET or a provider secret variable.
func RunEncryptSecret(
	ctx context.Context,
	resolver webhookService.SecretResolver,
	logger *slog.Logger,
	writer io.Writer,
	keyURI string,
	plaintext string,
) error {
	if keyURI == "" {
		return errors.New("kms key URI is required (--kms-key-uri or WEBHOOK_SECRETS_KMS_KEY_URI)")
	}
	if plaintext == "" {
		return errors.New("secret is required")
	}

	ciphertext, err := resolver.Encrypt(ctx, keyURI, plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt secret: %w", err)
	}

	logger.Info("webhook secret encrypted")
	_, err = fmt.Fprintln(writer, ciphertext)
	return err
}
