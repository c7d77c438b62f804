package dto

type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// UniqueEmailRequest checks an email; SelfID names the profile being edited
// so its own unchanged email is not reported as taken.
type UniqueEmailRequest struct {
	Email  string `json:"email" validate:"required,email"`
	SelfID string `json:"selfId"`
}

type UniquePhoneRequest struct {
	Phone  string `json:"phone" validate:"required"`
	SelfID string `json:"selfId"`
}

type UniquenessResponse struct {
	Unique bool `json:"unique"`
}
