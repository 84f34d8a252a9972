// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/pklabs/keygate/internal/validation"
)

// CreateKeyRequest contains the parameters for creating or rotating a key.
type CreateKeyRequest struct {
	OwnerLogin string `json:"owner_login"`
}

// Validate checks if the create key request is valid.
func (r *CreateKeyRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OwnerLogin,
			validation.Required,
			customValidation.Login,
			validation.Length(1, 60),
		),
	)
}

// IssueTokenRequest contains the parameters for the self-service issuance endpoint.
type IssueTokenRequest struct {
	Email string `json:"email"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
			validation.Length(3, 255),
		),
	)
}
