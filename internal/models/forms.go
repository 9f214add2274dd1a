package models

import "fmt"

// ValidationError reports a missing or malformed form field. Handlers treat
// it like any other client error: log and redirect back to the form.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid form: missing field %q", e.Field)
}

// CredentialsForm is the urlencoded body of POST /login and POST /register.
type CredentialsForm struct {
	Username string
	Password string
}

func (f *CredentialsForm) Validate() error {
	if f.Username == "" {
		return &ValidationError{Field: "username"}
	}
	if f.Password == "" {
		return &ValidationError{Field: "password"}
	}
	return nil
}

// SecretForm is the urlencoded body of POST /submit.
type SecretForm struct {
	Secret string
}

func (f *SecretForm) Validate() error {
	if f.Secret == "" {
		return &ValidationError{Field: "secret"}
	}
	return nil
}
