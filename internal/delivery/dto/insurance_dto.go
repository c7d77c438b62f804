package dto

// InsuranceRequest is read from multipart form fields; the optional image
// travels in the "image" file part.
type InsuranceRequest struct {
	Name        string `validate:"required"`
	Type        string `validate:"required,excludesall=/"`
	Price       string `validate:"required,numeric"`
	Description string
	Active      bool
	// Image keeps the current URL on update when no file is sent.
	Image string `validate:"omitempty,url"`
}
