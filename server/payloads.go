package server

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// LoginPayload is the body of POST /login.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs validation rules.
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

// SignupPayload is the body of POST /signup.
type SignupPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// Validate runs validation rules.
func (p SignupPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&p.Name, validation.Length(0, 200)),
	)
}

// ResetPayload is the body of POST /reset-password.
type ResetPayload struct {
	Email string `json:"email"`
}

// Validate runs validation rules.
func (p ResetPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

// ValidatePayload is the body of POST /validate.
type ValidatePayload struct {
	Token string `json:"token"`
}

// Validate runs validation rules.
func (p ValidatePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
	)
}

// ProfilePayload is the body of POST /user-data.
type ProfilePayload struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Validate runs validation rules.
func (p ProfilePayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(0, 200)),
		validation.Field(&p.Phone, validation.Length(0, 20)),
	)
}
