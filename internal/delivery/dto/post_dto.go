package dto

import "insurance-marketplace/internal/domain/entity"

// PostRequest is read from multipart form fields; the optional image
// travels in the "image" file part.
type PostRequest struct {
	Titulo      string `validate:"required"`
	Descripcion string `validate:"required"`
	Tipo        string `validate:"required,oneof=Autos Personal Empresarial"`
	Date        string `validate:"omitempty,datetime=2006-01-02"`
	Image       string `validate:"omitempty,url"`
}

// FeedItemResponse is a post with its author resolved for display.
type FeedItemResponse struct {
	entity.Post
	AuthorName  string `json:"authorName"`
	AuthorImage string `json:"authorImage"`
}
