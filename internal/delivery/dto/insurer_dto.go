package dto

type InsurerRequest struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,phone10"`
	FiscalID      string `json:"fiscalId" validate:"required"`
	Direction     string `json:"direction"`
	LicenseNumber string `json:"licenseNumber" validate:"required"`
	CompanyName   string `json:"companyName" validate:"required"`
	Description   string `json:"description"`
	BirthDate     string `json:"birthDate" validate:"required,adult"`
	Image         string `json:"image" validate:"omitempty,url"`
}
