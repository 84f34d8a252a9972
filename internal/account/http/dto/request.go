// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	accountDomain "github.com/pklabs/keygate/internal/account/domain"
	customValidation "github.com/pklabs/keygate/internal/validation"
)

// CreateAccountRequest contains the parameters for creating a new account.
type CreateAccountRequest struct {
	Login        string   `json:"login"`
	Email        string   `json:"email"`
	DisplayName  string   `json:"display_name"`
	Capabilities []string `json:"capabilities"`
}

// Validate checks if the create account request is valid.
func (r *CreateAccountRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Login,
			validation.Required,
			customValidation.Login,
			validation.Length(1, 60),
		),
		validation.Field(&r.Email,
			validation.Required,
			customValidation.Email,
			validation.Length(3, 255),
		),
		validation.Field(&r.DisplayName,
			validation.Length(0, 255),
		),
		validation.Field(&r.Capabilities,
			validation.Each(validation.In(
				accountDomain.CapabilityRead,
				accountDomain.CapabilityManageKeys,
			)),
		),
	)
}
