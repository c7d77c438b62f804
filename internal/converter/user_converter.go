package converter

import (
	"strings"

	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/domain/entity"
)

// UserRequestToEntity builds a profile from a request. The id is left for
// the caller to set on updates.
func UserRequestToEntity(req *dto.UserRequest) *entity.User {
	return &entity.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Role:      entity.Role(req.Role),
		BirthDate: req.BirthDate,
		Image:     req.Image,
	}
}

func RegisterRequestToUser(req *dto.RegisterRequest) *entity.User {
	return &entity.User{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     req.Phone,
		Role:      entity.Role(req.Role),
		BirthDate: req.BirthDate,
	}
}

// AccountToResponse converts an Account entity to AccountResponse DTO
func AccountToResponse(account *entity.Account) *dto.AccountResponse {
	if account == nil {
		return nil
	}

	return &dto.AccountResponse{
		ID:            account.ID,
		Email:         account.Email,
		Role:          account.Role,
		ProfileID:     account.ProfileID,
		EmailVerified: account.EmailVerified,
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}

func AgentRequestToEntity(req *dto.AgentRequest) *entity.Agent {
	return &entity.Agent{
		Name:          strings.TrimSpace(req.Name),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         req.Phone,
		Company:       strings.TrimSpace(req.Company),
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
	}
}

// UserToInsurer seeds the directory record of an insurer profile. Company
// fields start empty and share the profile id.
func UserToInsurer(user *entity.User) *entity.Insurer {
	return &entity.Insurer{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		BirthDate: user.BirthDate,
		Image:     user.Image,
		Role:      entity.RoleInsurer,
	}
}

func InsurerRequestToEntity(req *dto.InsurerRequest) *entity.Insurer {
	return &entity.Insurer{
		FirstName:     strings.TrimSpace(req.FirstName),
		LastName:      strings.TrimSpace(req.LastName),
		Email:         strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:         req.Phone,
		FiscalID:      strings.TrimSpace(req.FiscalID),
		Direction:     req.Direction,
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
		CompanyName:   strings.TrimSpace(req.CompanyName),
		Description:   req.Description,
		BirthDate:     req.BirthDate,
		Image:         req.Image,
		Role:          entity.RoleInsurer,
	}
}
