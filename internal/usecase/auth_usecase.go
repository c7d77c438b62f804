package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"insurance-marketplace/config"
	"insurance-marketplace/internal/converter"
	"insurance-marketplace/internal/delivery/dto"
	"insurance-marketplace/internal/domain/entity"
	"insurance-marketplace/internal/domain/repository"
	"insurance-marketplace/internal/infrastructure/cache"
	"insurance-marketplace/internal/service"
	"insurance-marketplace/pkg/apperror"
	"insurance-marketplace/pkg/jwt"
	"insurance-marketplace/pkg/validator"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists       = apperror.New(apperror.KindConflict, "auth", "email already exists")
	ErrPhoneAlreadyExists       = apperror.New(apperror.KindConflict, "auth", "phone already exists")
	ErrInvalidCredentials       = apperror.New(apperror.KindPermission, "auth", "invalid email or password")
	ErrInvalidToken             = apperror.New(apperror.KindPermission, "auth", "invalid or expired token")
	ErrTokenRevoked             = apperror.New(apperror.KindPermission, "auth", "token has been revoked")
	ErrAccountNotFound          = apperror.New(apperror.KindNotFound, "auth", "account not found")
	ErrPasswordMismatch         = apperror.New(apperror.KindValidation, "auth", "password confirmation does not match")
	ErrWeakPassword             = apperror.New(apperror.KindValidation, "auth", "password does not meet the strength requirements")
	ErrUnderage                 = apperror.New(apperror.KindValidation, "auth", "must be at least 18 years old")
	ErrRoleNotAllowed           = apperror.New(apperror.KindValidation, "auth", "role cannot self-register")
	ErrReauthenticationRequired = apperror.New(apperror.KindPermission, "auth", "current password is required for this change")
)

const tokenValid = "valid"

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AccountResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, accountID uuid.UUID, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, accountID uuid.UUID) (*dto.CurrentUserResponse, error)
	RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) error
	ConfirmPasswordReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error
	SendVerification(ctx context.Context, accountID uuid.UUID) error
	VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error
	EmailStatus(ctx context.Context, accountID uuid.UUID) (*dto.EmailStatusResponse, error)
	ChangeEmail(ctx context.Context, accountID uuid.UUID, req *dto.ChangeEmailRequest) error
	ChangePassword(ctx context.Context, accountID uuid.UUID, req *dto.ChangePasswordRequest) error
	SessionActive(ctx context.Context, accountID uuid.UUID) (bool, error)
}

type authUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	cfg         config.AuthConfig
	accountRepo repository.AccountRepository
	userRepo    repository.UserRepository
	insurerRepo repository.InsurerRepository
	identity    IdentityUsecase
	audit       service.AuditService
	mailer      Mailer
	jwtService  *jwt.JWTService
	tokens      cache.Store
	hashCost    int
	now         func() time.Time
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.AuthConfig,
	accountRepo repository.AccountRepository,
	userRepo repository.UserRepository,
	insurerRepo repository.InsurerRepository,
	identity IdentityUsecase,
	audit service.AuditService,
	mailer Mailer,
	jwtService *jwt.JWTService,
	tokens cache.Store,
) AuthUsecase {
	return &authUsecase{
		db:          db,
		log:         log,
		cfg:         cfg,
		accountRepo: accountRepo,
		userRepo:    userRepo,
		insurerRepo: insurerRepo,
		identity:    identity,
		audit:       audit,
		mailer:      mailer,
		jwtService:  jwtService,
		tokens:      tokens,
		hashCost:    bcrypt.DefaultCost,
		now:         time.Now,
	}
}

func checkNewPassword(password, confirmation string) error {
	if password != confirmation {
		return ErrPasswordMismatch
	}
	if !validator.PasswordStrength(password).Valid() {
		return ErrWeakPassword
	}
	return nil
}

func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AccountResponse, error) {
	role, err := entity.ParseRole(req.Role)
	if err != nil || role.IsStaff() {
		return nil, ErrRoleNotAllowed
	}
	if err := checkNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	birth, err := time.Parse(validator.DateLayout, req.BirthDate)
	if err != nil || !validator.IsAdult(birth, u.now()) {
		return nil, ErrUnderage
	}

	profile := converter.RegisterRequestToUser(req)

	unique, err := u.identity.IsEmailUnique(ctx, profile.Email, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrEmailAlreadyExists
	}
	existing, err := u.accountRepo.FindByEmail(ctx, u.db, profile.Email)
	if err != nil {
		u.log.Warnf("Failed to find account by email: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	unique, err = u.identity.IsPhoneUnique(ctx, profile.Phone, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, ErrPhoneAlreadyExists
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), u.hashCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	if err := u.userRepo.Add(ctx, profile); err != nil {
		u.log.Warnf("Failed to create profile: %+v", err)
		return nil, err
	}

	// insurers also get a directory record under the profile id
	var listing *entity.Insurer
	if role == entity.RoleInsurer {
		listing = converter.UserToInsurer(profile)
		if err := u.insurerRepo.Add(ctx, listing); err != nil {
			u.log.Warnf("Failed to create insurer record: %+v", err)
			u.removeProfile(ctx, profile, nil)
			return nil, err
		}
	}

	account := &entity.Account{
		ID:        uuid.New(),
		Email:     profile.Email,
		Password:  string(hashedPassword),
		Role:      role,
		ProfileID: profile.ID,
	}
	if err := u.accountRepo.Create(ctx, u.db, account); err != nil {
		// the profile and the account live in different stores
		u.removeProfile(ctx, profile, listing)
		if errors.Is(err, apperror.ErrConflict) {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create account: %+v", err)
		return nil, err
	}

	if err := u.sendVerification(ctx, account); err != nil {
		u.log.Warnf("Failed to send verification email: %+v", err)
	}

	u.audit.Record(ctx, &account.ID, entity.AuditActionAccountRegister, entity.JSON{
		"role":       string(role),
		"profile_id": profile.ID,
	})

	return converter.AccountToResponse(account), nil
}

// removeProfile undoes the documents of a registration that failed later on.
func (u *authUsecase) removeProfile(ctx context.Context, profile *entity.User, listing *entity.Insurer) {
	if listing != nil {
		if err := u.insurerRepo.Delete(ctx, listing.ID); err != nil {
			u.log.Warnf("Failed to remove orphan insurer record %s: %+v", listing.ID, err)
		}
	}
	if err := u.userRepo.Delete(ctx, profile); err != nil {
		u.log.Warnf("Failed to remove orphan profile %s: %+v", profile.ID, err)
	}
}

func (u *authUsecase) issueTokens(ctx context.Context, account *entity.Account) (*dto.TokenResponse, error) {
	sub := jwt.Subject{
		AccountID: account.ID,
		ProfileID: account.ProfileID,
		Email:     account.Email,
		Role:      account.Role,
	}

	// Generate tokens
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(sub)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	// Store tokens in Redis
	accountID := account.ID.String()
	if err := u.tokens.Set(ctx, cache.AccessTokenKey(accountID, accessTokenID), tokenValid, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.tokens.Set(ctx, cache.RefreshTokenKey(accountID, refreshTokenID), tokenValid, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	// Find account by email (read-only, no transaction needed)
	account, err := u.accountRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find account by email: %+v", err)
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	if err := u.tokens.Set(ctx, cache.SessionFlagKey(account.ID.String()), "1", u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to set session flag: %+v", err)
	}

	profile, err := u.userRepo.FindByID(ctx, account.ProfileID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", account.ProfileID, err)
	}

	u.audit.Record(ctx, &account.ID, entity.AuditActionAccountLogin, nil)

	return &dto.LoginResponse{
		Tokens:              *tokens,
		RedirectTarget:      entity.RedirectTarget(account.Role),
		EmailVerified:       account.EmailVerified,
		ProfileEmailMatches: profile != nil && strings.EqualFold(profile.Email, account.Email),
		Account:             *converter.AccountToResponse(account),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, accountID uuid.UUID, accessTokenID, refreshTokenID string) error {
	id := accountID.String()
	keys := []string{cache.AccessTokenKey(id, accessTokenID), cache.SessionFlagKey(id)}
	if refreshTokenID != "" {
		keys = append(keys, cache.RefreshTokenKey(id, refreshTokenID))
	}

	if err := u.tokens.Delete(ctx, keys...); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}

	u.audit.Record(ctx, &accountID, entity.AuditActionAccountLogout, nil)
	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// Validate refresh token
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Check if refresh token exists in Redis
	refreshKey := cache.RefreshTokenKey(claims.AccountID.String(), claims.TokenID)
	exists, err := u.tokens.Exists(ctx, refreshKey)
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrTokenRevoked
	}

	// Delete old refresh token
	if err := u.tokens.Delete(ctx, refreshKey); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	account, err := u.accountRepo.FindByID(ctx, u.db, claims.AccountID)
	if err != nil {
		u.log.Warnf("Failed to find account by ID: %+v", err)
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return u.issueTokens(ctx, account)
}

func (u *authUsecase) findAccount(ctx context.Context, accountID uuid.UUID) (*entity.Account, error) {
	account, err := u.accountRepo.FindByID(ctx, u.db, accountID)
	if err != nil {
		u.log.Warnf("Failed to find account by ID: %+v", err)
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, accountID uuid.UUID) (*dto.CurrentUserResponse, error) {
	account, err := u.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	profile, err := u.userRepo.FindByID(ctx, account.ProfileID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", account.ProfileID, err)
		return nil, err
	}

	return &dto.CurrentUserResponse{
		Account: *converter.AccountToResponse(account),
		Profile: profile,
	}, nil
}

// RequestPasswordReset mails a one-time token. Unknown emails succeed
// silently so the endpoint does not reveal which accounts exist.
func (u *authUsecase) RequestPasswordReset(ctx context.Context, req *dto.PasswordResetRequest) error {
	account, err := u.accountRepo.FindByEmail(ctx, u.db, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find account by email: %+v", err)
		return err
	}
	if account == nil {
		return nil
	}

	token := uuid.NewString()
	if err := u.tokens.Set(ctx, cache.PasswordResetKey(token), account.ID.String(), u.cfg.ResetTokenTTL); err != nil {
		u.log.Warnf("Failed to store password reset token: %+v", err)
		return err
	}

	mail := Mail{
		To:      account.Email,
		Subject: "Restablece tu contraseña",
		Body:    fmt.Sprintf("%s/password-reset?token=%s", u.cfg.LinkBaseURL, token),
	}
	if err := u.mailer.Send(ctx, mail); err != nil {
		u.log.Warnf("Failed to send password reset email: %+v", err)
		return err
	}

	u.audit.Record(ctx, &account.ID, entity.AuditActionPasswordResetRequest, nil)
	return nil
}

// consumeToken resolves a one-time token to its account and deletes it.
func (u *authUsecase) consumeToken(ctx context.Context, key string) (*entity.Account, error) {
	value, err := u.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return nil, ErrInvalidToken
		}
		u.log.Warnf("Failed to read token: %+v", err)
		return nil, err
	}

	accountID, err := uuid.Parse(value)
	if err != nil {
		return nil, ErrInvalidToken
	}
	account, err := u.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := u.tokens.Delete(ctx, key); err != nil {
		u.log.Warnf("Failed to delete used token: %+v", err)
	}
	return account, nil
}

func (u *authUsecase) ConfirmPasswordReset(ctx context.Context, req *dto.PasswordResetConfirmRequest) error {
	if err := checkNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	account, err := u.consumeToken(ctx, cache.PasswordResetKey(req.Token))
	if err != nil {
		return err
	}

	if err := u.setPassword(ctx, account, req.NewPassword); err != nil {
		return err
	}

	u.audit.Record(ctx, &account.ID, entity.AuditActionPasswordReset, nil)
	return nil
}

func (u *authUsecase) setPassword(ctx context.Context, account *entity.Account, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return err
	}
	account.Password = string(hashedPassword)

	if err := u.accountRepo.Update(ctx, u.db, account); err != nil {
		u.log.Warnf("Failed to update account: %+v", err)
		return err
	}

	return u.RevokeAllTokens(ctx, account.ID)
}

func (u *authUsecase) sendVerification(ctx context.Context, account *entity.Account) error {
	token := uuid.NewString()
	if err := u.tokens.Set(ctx, cache.EmailVerifyKey(token), account.ID.String(), u.cfg.VerifyTokenTTL); err != nil {
		return err
	}

	return u.mailer.Send(ctx, Mail{
		To:      account.Email,
		Subject: "Verifica tu correo",
		Body:    fmt.Sprintf("%s/verify-email?token=%s", u.cfg.LinkBaseURL, token),
	})
}

func (u *authUsecase) SendVerification(ctx context.Context, accountID uuid.UUID) error {
	account, err := u.findAccount(ctx, accountID)
	if err != nil {
		return err
	}
	if account.EmailVerified {
		return nil
	}

	if err := u.sendVerification(ctx, account); err != nil {
		u.log.Warnf("Failed to send verification email: %+v", err)
		return err
	}
	return nil
}

func (u *authUsecase) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	account, err := u.consumeToken(ctx, cache.EmailVerifyKey(req.Token))
	if err != nil {
		return err
	}

	account.EmailVerified = true
	if err := u.accountRepo.Update(ctx, u.db, account); err != nil {
		u.log.Warnf("Failed to update account: %+v", err)
		return err
	}

	u.audit.Record(ctx, &account.ID, entity.AuditActionEmailVerify, entity.JSON{"email": account.Email})
	return nil
}

func (u *authUsecase) EmailStatus(ctx context.Context, accountID uuid.UUID) (*dto.EmailStatusResponse, error) {
	account, err := u.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &dto.EmailStatusResponse{Email: account.Email, Verified: account.EmailVerified}, nil
}

// reauthenticate loads the account and checks the current password.
func (u *authUsecase) reauthenticate(ctx context.Context, accountID uuid.UUID, password string) (*entity.Account, error) {
	account, err := u.findAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(password)); err != nil {
		return nil, ErrReauthenticationRequired
	}
	return account, nil
}

// ChangeEmail moves the account and its profile to a new email. The new
// address starts unverified.
func (u *authUsecase) ChangeEmail(ctx context.Context, accountID uuid.UUID, req *dto.ChangeEmailRequest) error {
	account, err := u.reauthenticate(ctx, accountID, req.CurrentPassword)
	if err != nil {
		return err
	}

	newEmail := strings.ToLower(strings.TrimSpace(req.NewEmail))
	if newEmail == account.Email {
		return nil
	}

	unique, err := u.identity.IsEmailUnique(ctx, newEmail, account.ProfileID)
	if err != nil {
		return err
	}
	if !unique {
		return ErrEmailAlreadyExists
	}

	oldEmail := account.Email
	account.Email = newEmail
	account.EmailVerified = false
	if err := u.accountRepo.Update(ctx, u.db, account); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to update account: %+v", err)
		return err
	}

	profile, err := u.userRepo.FindByID(ctx, account.ProfileID)
	if err != nil {
		u.log.Warnf("Failed to find profile %s: %+v", account.ProfileID, err)
		return err
	}
	if profile != nil {
		profile.Email = newEmail
		if err := u.userRepo.Update(ctx, profile); err != nil {
			u.log.Warnf("Failed to update profile email: %+v", err)
			return err
		}
	}

	if account.Role == entity.RoleInsurer {
		listing, err := u.insurerRepo.FindByID(ctx, account.ProfileID)
		if err != nil {
			u.log.Warnf("Failed to find insurer record %s: %+v", account.ProfileID, err)
			return err
		}
		if listing != nil {
			listing.Email = newEmail
			if err := u.insurerRepo.Update(ctx, listing); err != nil {
				u.log.Warnf("Failed to update insurer record email: %+v", err)
				return err
			}
		}
	}

	if err := u.sendVerification(ctx, account); err != nil {
		u.log.Warnf("Failed to send verification email: %+v", err)
	}

	u.audit.Record(ctx, &account.ID, entity.AuditActionEmailChange, entity.JSON{
		"old_email": oldEmail,
		"new_email": newEmail,
	})
	return nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, accountID uuid.UUID, req *dto.ChangePasswordRequest) error {
	account, err := u.reauthenticate(ctx, accountID, req.CurrentPassword)
	if err != nil {
		return err
	}
	if err := checkNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	if err := u.setPassword(ctx, account, req.NewPassword); err != nil {
		return err
	}

	u.audit.Record(ctx, &account.ID, entity.AuditActionPasswordChange, nil)
	return nil
}

// SessionActive reports the local "logged in" flag. It only speeds up the
// landing screen; requests are still authorized by their access token.
func (u *authUsecase) SessionActive(ctx context.Context, accountID uuid.UUID) (bool, error) {
	active, err := u.tokens.Exists(ctx, cache.SessionFlagKey(accountID.String()))
	if err != nil {
		u.log.Warnf("Failed to read session flag: %+v", err)
		return false, err
	}
	return active, nil
}

// RevokeAllTokens revokes all tokens for an account (password changed or account compromised)
func (u *authUsecase) RevokeAllTokens(ctx context.Context, accountID uuid.UUID) error {
	id := accountID.String()
	for _, kind := range []string{"access", "refresh"} {
		if err := u.tokens.DeleteMatching(ctx, cache.AccountTokensPattern(kind, id)); err != nil {
			u.log.Warnf("Failed to delete %s tokens: %+v", kind, err)
			return err
		}
	}
	return u.tokens.Delete(ctx, cache.SessionFlagKey(id))
}
