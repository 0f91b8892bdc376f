package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gallery-api/internal/apperr"
	"gallery-api/internal/auth"
	"gallery-api/internal/domain/users"
	"gallery-api/internal/logging"
	"gallery-api/internal/repository"
)

type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	Phone       *string
	DateOfBirth *time.Time
}

type AuthService struct {
	admins repository.AdminRepository
	users  repository.UserRepository
	tokens *auth.TokenService
	now    func() time.Time
}

func NewAuthService(admins repository.AdminRepository, usersRepo repository.UserRepository, tokens *auth.TokenService) *AuthService {
	return &AuthService{admins: admins, users: usersRepo, tokens: tokens, now: time.Now}
}

func invalidCredentials() *apperr.Error {
	return apperr.Unauthorized(apperr.CodeInvalidCredentials, "Invalid email or password")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdminLogin never says whether the account or the password was wrong.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*users.AdminUser, *auth.TokenPair, error) {
	admin, err := s.admins.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !isNotFound(err) {
		return nil, nil, wrap("find admin", err)
	}
	if admin == nil || !admin.IsActive {
		auth.BurnCompare(password)
		return nil, nil, invalidCredentials()
	}
	if !auth.CheckPassword(&admin.PasswordHash, password) {
		return nil, nil, invalidCredentials()
	}

	pair, err := s.tokens.IssuePair(admin.ID, admin.Email, users.RoleAdmin)
	if err != nil {
		return nil, nil, wrap("issue tokens", err)
	}
	now := s.now().UTC()
	if err := s.admins.UpdateLastLogin(ctx, admin.ID, now); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("admin_id", admin.ID).Msg("could not record last login")
	}
	admin.LastLogin = &now
	return admin, pair, nil
}

// AdminRefresh trades a refresh token for a new pair.
func (s *AuthService) AdminRefresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil || claims.Role != users.RoleAdmin {
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "Invalid or expired refresh token")
	}
	admin, err := s.admins.FindByID(ctx, claims.Subject)
	if isNotFound(err) || (err == nil && !admin.IsActive) {
		return nil, apperr.Unauthorized(apperr.CodeInvalidToken, "Invalid or expired refresh token")
	}
	if err != nil {
		return nil, wrap("find admin", err)
	}
	pair, err := s.tokens.IssuePair(admin.ID, admin.Email, users.RoleAdmin)
	if err != nil {
		return nil, wrap("issue tokens", err)
	}
	return pair, nil
}

func (s *AuthService) Admin(ctx context.Context, id string) (*users.AdminUser, error) {
	admin, err := s.admins.FindByID(ctx, id)
	if isNotFound(err) || (err == nil && !admin.IsActive) {
		return nil, apperr.Unauthorized(apperr.CodeUnauthorized, "Account no longer exists")
	}
	if err != nil {
		return nil, wrap("find admin", err)
	}
	return admin, nil
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*users.User, string, error) {
	email := normalizeEmail(in.Email)
	if !auth.IsEmailValid(email) {
		return nil, "", apperr.Validation("Invalid email format")
	}
	if !auth.IsPasswordStrong(in.Password) {
		return nil, "", apperr.Validation("Password must be at least 8 characters long and contain both letters and numbers")
	}
	first, last := trimmed(in.FirstName), trimmed(in.LastName)
	if first == "" || last == "" {
		return nil, "", apperr.Validation("firstName and lastName are required")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, "", apperr.BadRequest(apperr.CodeEmailExists, "Email is already registered")
	} else if !isNotFound(err) {
		return nil, "", wrap("find user", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", wrap("hash password", err)
	}
	u := &users.User{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		Phone:        in.Phone,
		PasswordHash: &hash,
		DateOfBirth:  in.DateOfBirth,
		AuthProvider: users.ProviderLocal,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperr.BadRequest(apperr.CodeEmailExists, "Email is already registered")
		}
		return nil, "", wrap("create user", err)
	}

	token, err := s.tokens.IssueAccess(u.ID, u.Email, users.RoleUser)
	if err != nil {
		return nil, "", wrap("issue token", err)
	}
	return u, token, nil
}

// Login treats unknown, inactive, Google-only and wrong-password accounts alike.
func (s *AuthService) Login(ctx context.Context, email, password string) (*users.User, string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !isNotFound(err) {
		return nil, "", wrap("find user", err)
	}
	if u == nil || !u.IsActive {
		auth.BurnCompare(password)
		return nil, "", invalidCredentials()
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", invalidCredentials()
	}

	token, err := s.tokens.IssueAccess(u.ID, u.Email, users.RoleUser)
	if err != nil {
		return nil, "", wrap("issue token", err)
	}
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("could not record last login")
	}
	u.LastLogin = &now
	return u, token, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*users.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if isNotFound(err) || (err == nil && !u.IsActive) {
		return nil, apperr.Unauthorized(apperr.CodeUnauthorized, "Account no longer exists")
	}
	if err != nil {
		return nil, wrap("find user", err)
	}
	return u, nil
}

// RequestPasswordReset stores a reset token for the account, if any, and
// returns it. An unknown email yields "" and no error.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if isNotFound(err) || (err == nil && !u.IsActive) {
		return "", nil
	}
	if err != nil {
		return "", wrap("find user", err)
	}

	token, err := s.tokens.IssueReset(u.ID)
	if err != nil {
		return "", wrap("issue reset token", err)
	}
	if err := s.users.SetResetToken(ctx, u.ID, &token); err != nil {
		return "", wrap("store reset token", err)
	}
	logging.Ctx(ctx).Info().Str("user_id", u.ID).Msg("password reset requested")
	return token, nil
}

// CompletePasswordReset accepts only the most recently issued token and
// burns it.
func (s *AuthService) CompletePasswordReset(ctx context.Context, token, password string) error {
	invalid := apperr.BadRequest(apperr.CodeInvalidToken, "Invalid or expired reset token")

	claims, err := s.tokens.ParseReset(token)
	if err != nil {
		return invalid
	}
	if !auth.IsPasswordStrong(password) {
		return apperr.Validation("Password must be at least 8 characters long and contain both letters and numbers")
	}
	u, err := s.users.FindByID(ctx, claims.Subject)
	if isNotFound(err) {
		return invalid
	}
	if err != nil {
		return wrap("find user", err)
	}
	if u.ResetToken == nil || *u.ResetToken != token {
		return invalid
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return wrap("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return wrap("update password", err)
	}
	return nil
}

// GoogleSignIn finds the user by Google subject, then by email (linking the
// subject), and otherwise creates one. Matching or creating by email needs
// an email Google has verified.
func (s *AuthService) GoogleSignIn(ctx context.Context, id *auth.GoogleIdentity) (*users.User, string, error) {
	u, err := s.users.FindByGoogleSub(ctx, id.Subject)
	if err != nil && !isNotFound(err) {
		return nil, "", wrap("find user by google subject", err)
	}

	if u == nil {
		if !id.EmailVerified {
			return nil, "", apperr.Unauthorized(apperr.CodeInvalidCredentials, "Google account email is not verified")
		}
		email := normalizeEmail(id.Email)
		u, err = s.users.FindByEmail(ctx, email)
		switch {
		case err == nil:
			if err := s.users.LinkGoogle(ctx, u.ID, id.Subject); err != nil {
				return nil, "", wrap("link google account", err)
			}
			sub := id.Subject
			u.GoogleSub = &sub
			u.IsEmailVerified = true
		case isNotFound(err):
			sub := id.Subject
			u = &users.User{
				FirstName:       firstNonEmpty(id.GivenName, id.Name, email),
				LastName:        id.FamilyName,
				Email:           email,
				AuthProvider:    users.ProviderGoogle,
				GoogleSub:       &sub,
				IsActive:        true,
				IsEmailVerified: true,
			}
			if err := s.users.Create(ctx, u); err != nil {
				return nil, "", wrap("create google user", err)
			}
		default:
			return nil, "", wrap("find user", err)
		}
	}
	if !u.IsActive {
		return nil, "", invalidCredentials()
	}

	token, err := s.tokens.IssueAccess(u.ID, u.Email, users.RoleUser)
	if err != nil {
		return nil, "", wrap("issue token", err)
	}
	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("could not record last login")
	}
	u.LastLogin = &now
	return u, token, nil
}

func firstNonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
