package converter

import (
	"strings"

	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/domain/entity"

	"github.com/shopspring/decimal"
)

func InsuranceRequestToEntity(req *dto.InsuranceRequest) (*entity.Insurance, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(req.Price))
	if err != nil {
		return nil, err
	}
	return &entity.Insurance{
		Name:        strings.TrimSpace(req.Name),
		Type:        strings.TrimSpace(req.Type),
		Price:       price,
		Description: req.Description,
		Image:       req.Image,
		Active:      req.Active,
	}, nil
}

func PostRequestToEntity(req *dto.PostRequest, userID string) *entity.Post {
	return &entity.Post{
		Titulo:      strings.TrimSpace(req.Titulo),
		Descripcion: req.Descripcion,
		UserID:      userID,
		Tipo:        entity.PostTipo(req.Tipo),
		Image:       req.Image,
		Date:        req.Date,
	}
}
