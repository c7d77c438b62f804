package dto

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}
