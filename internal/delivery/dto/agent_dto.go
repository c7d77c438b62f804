package dto

type AgentRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,phone10"`
	Company       string `json:"company" validate:"required"`
	LicenseNumber string `json:"licenseNumber" validate:"required"`
}
