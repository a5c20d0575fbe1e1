package request

import "fmt"

type ValidateEmailRequest struct {
	Email string `json:"email"`
}

func (r *ValidateEmailRequest) Validate() error {
	if r.Email == "" {
		return fmt.Errorf("email is required")
	}
	return nil
}
