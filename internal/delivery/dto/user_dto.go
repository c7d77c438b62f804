package dto

type UserRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone10"`
	Role      string `json:"role" validate:"required,oneof=Admin Editor insurer client"`
	BirthDate string `json:"birthDate" validate:"required,adult"`
	Image     string `json:"image" validate:"omitempty,url"`
}
