// Package dto provides the request and response shapes of the webhook endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	webhookDomain "github.com/getachewzemene/minalesh-amplify-sub001/internal/webhook/domain"
	customValidation "github.com/getachewzemene/minalesh-amplify-sub001/internal/validation"
)

// ListEventsRequest holds the ledger listing filters taken from the query string.
type ListEventsRequest struct {
	Status          string `form:"status"`
	Provider        string `form:"provider"`
	IncludeArchived bool   `form:"include_archived"`
}

// Validate checks the listing filters.
func (r *ListEventsRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Status,
			validation.In(
				string(webhookDomain.EventStatusReceived),
				string(webhookDomain.EventStatusProcessing),
				string(webhookDomain.EventStatusProcessed),
				string(webhookDomain.EventStatusFailed),
				string(webhookDomain.EventStatusError),
			),
		),
		validation.Field(&r.Provider,
			validation.Length(0, 64),
			customValidation.NoWhitespace,
		),
	)
	return customValidation.WrapValidationError(err)
}

// Filter converts the request into a ledger filter.
func (r *ListEventsRequest) Filter() webhookDomain.ListFilter {
	return webhookDomain.ListFilter{
		Status:          webhookDomain.EventStatus(r.Status),
		Provider:        r.Provider,
		IncludeArchived: r.IncludeArchived,
	}
}
