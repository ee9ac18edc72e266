package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/lexdesk-api/internal/domain/entity"
	"github.com/sangkips/lexdesk-api/internal/domain/repository"
	"github.com/sangkips/lexdesk-api/pkg/apperror"
	"github.com/sangkips/lexdesk-api/pkg/logger"
	"github.com/sangkips/lexdesk-api/pkg/oauth"
	"github.com/sangkips/lexdesk-api/pkg/utils"
)

var errInvalidResetToken = apperror.NewBadRequestError("Invalid or expired reset token")

// GoogleAuthenticator is the subset of the Google OAuth client used to sign in
type GoogleAuthenticator interface {
	IsConfigured() bool
	AuthURL(state string) string
	Authenticate(ctx context.Context, code string) (*oauth.Identity, error)
}

// AuthService handles authentication-related operations
type AuthService struct {
	userRepo          repository.UserRepository
	roleRepo          repository.RoleRepository
	passwordResetRepo repository.PasswordResetTokenRepository
	jwtManager        *utils.JWTManager
	mailer            Mailer
	google            GoogleAuthenticator
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	passwordResetRepo repository.PasswordResetTokenRepository,
	jwtManager *utils.JWTManager,
	mailer Mailer,
	google GoogleAuthenticator,
) *AuthService {
	return &AuthService{
		userRepo:          userRepo,
		roleRepo:          roleRepo,
		passwordResetRepo: passwordResetRepo,
		jwtManager:        jwtManager,
		mailer:            mailer,
		google:            google,
	}
}

// LoginInput represents the login input. Login accepts the email or the username.
type LoginInput struct {
	Login    string
	Password string
}

// LoginOutput represents the login output
type LoginOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	login := strings.TrimSpace(input.Login)

	var user *entity.User
	var err error
	if strings.Contains(login, "@") {
		user, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}
	if user == nil || !utils.CheckPasswordHash(input.Password, user.Password) {
		return nil, apperror.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountInactive
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("last login not saved")
	}

	return s.issueTokens(ctx, user.ID)
}

// RegisterInput represents the registration input
type RegisterInput struct {
	Name     string
	Username string
	Email    string
	Password string
	Area     string
}

// Register creates an inactive account that an administrator must approve
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existingUser, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existingUser != nil {
		return nil, apperror.NewConflictError("Email already registered")
	}

	username := strings.TrimSpace(input.Username)
	if username == "" {
		username = email
		if at := strings.IndexByte(email, '@'); at > 0 {
			username = email[:at]
		}
	}
	taken, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, apperror.NewConflictError("Username already taken")
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:       uuid.New(),
		Name:     input.Name,
		Username: username,
		Email:    email,
		Password: hashedPassword,
		Area:     input.Area,
		Provider: "local",
		IsActive: false,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	defaultRole, err := s.roleRepo.GetByName(ctx, entity.RoleDefault)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("default role lookup failed")
		return user, nil
	}
	if defaultRole != nil {
		if err := s.userRepo.AssignRole(ctx, user.ID, defaultRole.ID); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("user_id", user.ID.String()).Msg("default role not assigned")
		}
	}

	logger.FromContext(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered, pending approval")
	return user, nil
}

// RefreshToken generates new tokens from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*LoginOutput, error) {
	userID, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.ErrInvalidToken
	}
	return s.issueTokens(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID) (*LoginOutput, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountInactive
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.GetRoleNames(), user.GetPermissions(), user.IsSuperAdmin)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginOutput{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// GetCurrentUser returns the current user by ID
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.userRepo.GetWithRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.ErrNotFound
	}
	return user, nil
}

// ChangePasswordInput represents the change password input
type ChangePasswordInput struct {
	UserID          uuid.UUID
	CurrentPassword string
	NewPassword     string
}

// ChangePassword changes the user's password
func (s *AuthService) ChangePassword(ctx context.Context, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.ErrNotFound
	}

	if !utils.CheckPasswordHash(input.CurrentPassword, user.Password) {
		return apperror.NewFieldError("current_password", "Current password is incorrect")
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	user.Password = hashedPassword
	return s.userRepo.Update(ctx, user)
}

// ForgotPassword emails a single-use reset link. Unknown emails succeed
// silently so accounts cannot be enumerated.
func (s *AuthService) ForgotPassword(ctx context.Context, emailAddr string) error {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	user, err := s.userRepo.GetByEmail(ctx, emailAddr)
	if err != nil {
		logger.FromContext(ctx).Error().Err(err).Msg("forgot password lookup failed")
		return nil
	}
	if user == nil {
		return nil
	}

	_ = s.passwordResetRepo.DeleteByUser(ctx, user.ID)

	token, err := utils.RandomToken(32)
	if err != nil {
		return err
	}

	resetToken := &entity.PasswordResetToken{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     token,
		ExpiresAt: time.Now().Add(entity.PasswordResetTTL),
	}
	if err := s.passwordResetRepo.Create(ctx, resetToken); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, token); err != nil {
		return apperror.NewExternalError("Could not send the reset email", err)
	}
	return nil
}

// ResetPasswordInput represents the reset password input
type ResetPasswordInput struct {
	Email       string
	Token       string
	NewPassword string
}

// ResetPassword resets the user's password using a valid token
func (s *AuthService) ResetPassword(ctx context.Context, input *ResetPasswordInput) error {
	resetToken, err := s.passwordResetRepo.GetByToken(ctx, input.Token)
	if err != nil {
		return err
	}
	if resetToken == nil || !strings.EqualFold(resetToken.Email, input.Email) || !resetToken.IsValid(time.Now()) {
		return errInvalidResetToken
	}

	user, err := s.userRepo.GetByID(ctx, resetToken.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return errInvalidResetToken
	}

	hashedPassword, err := utils.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if err := s.passwordResetRepo.MarkAsUsed(ctx, resetToken.ID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("reset token not marked as used")
	}
	_ = s.passwordResetRepo.DeleteByUser(ctx, user.ID)
	return nil
}

// GoogleAuthURL returns the consent URL for the given state.
func (s *AuthService) GoogleAuthURL(state string) (string, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return "", apperror.NewBadRequestError(oauth.ErrOAuthNotConfigured.Error())
	}
	return s.google.AuthURL(state), nil
}

// GoogleLogin signs in an already registered user through Google.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*LoginOutput, error) {
	if s.google == nil || !s.google.IsConfigured() {
		return nil, apperror.NewBadRequestError(oauth.ErrOAuthNotConfigured.Error())
	}

	info, err := s.google.Authenticate(ctx, code)
	switch {
	case errors.Is(err, oauth.ErrInvalidCode):
		return nil, apperror.NewBadRequestError("Invalid authorization code")
	case errors.Is(err, oauth.ErrEmailNotVerified), errors.Is(err, oauth.ErrForeignDomain):
		return nil, apperror.NewForbiddenError(err.Error())
	case err != nil:
		return nil, apperror.NewExternalError("Google sign-in failed", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NewForbiddenError("No account is registered for this email")
	}
	if !user.IsActive {
		return nil, apperror.ErrAccountInactive
	}

	if user.ProviderID == nil {
		user.Provider = "google"
		user.ProviderID = &info.Subject
	}
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user.ID)
}
