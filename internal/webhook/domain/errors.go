package domain

import (
	"github.com/getachewzemene/minalesh-amplify-sub001/internal/errors"
)

// Webhook-specific error definitions.
var (
	// ErrMissingSignature indicates the delivery carried none of the accepted signature headers.
	ErrMissingSignature = errors.Wrap(errors.ErrUnauthorized, "missing webhook signature")

	// ErrInvalidSignature indicates the presented signature or secret did not match.
	ErrInvalidSignature = errors.Wrap(errors.ErrUnauthorized, "invalid webhook signature")

	// ErrPlainSecretDisabled indicates a plain-secret delivery while that method is turned off.
	ErrPlainSecretDisabled = errors.Wrap(errors.ErrUnauthorized, "plain secret authentication is disabled")

	// ErrWebhookSecretMissing indicates the generic webhook secret is not configured.
	ErrWebhookSecretMissing = errors.Wrap(errors.ErrMisconfigured, "webhook secret is not configured")

	// ErrInvalidPayload indicates the body is not a well-formed payment payload.
	ErrInvalidPayload = errors.Wrap(errors.ErrInvalidInput, "invalid webhook payload")

	// ErrMissingEventKey indicates no idempotency key could be derived from the payload.
	ErrMissingEventKey = errors.Wrap(errors.ErrInvalidInput, "webhook payload has no event key")

	// ErrEventNotFound indicates the ledger row does not exist.
	ErrEventNotFound = errors.Wrap(errors.ErrNotFound, "webhook event not found")

	// ErrEventAlreadyFinalized indicates the ledger row left received/processing before this
	// run could finalize it, usually because a later delivery reclaimed it.
	ErrEventAlreadyFinalized = errors.Wrap(errors.ErrConflict, "webhook event already finalized")
)
