package service

import (
	"context"
	"regexp"
	"strings"

	"fintrack-service/internal/domain"
	"fintrack-service/internal/repository"
	"fintrack-service/pkg/jwtutil"
	"fintrack-service/pkg/utils"
	"fintrack-service/pkg/xerrors"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthService struct {
	users     repository.UserRepository
	generator *jwtutil.Generator
}

func NewAuthService(users repository.UserRepository, generator *jwtutil.Generator) *AuthService {
	return &AuthService{users: users, generator: generator}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*domain.User, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, xerrors.ErrNameRequired
	}
	if req.Email == "" {
		return nil, xerrors.ErrEmailRequired
	}
	if !emailRe.MatchString(req.Email) {
		return nil, xerrors.ErrInvalidEmailFormat
	}
	if req.Password == "" {
		return nil, xerrors.ErrPasswordRequired
	}
	if len(req.Password) < 8 {
		return nil, xerrors.ErrPasswordTooShort
	}

	role := domain.RoleMember
	if req.Role != "" {
		parsed, err := domain.ParseRole(req.Role)
		if err != nil {
			return nil, err
		}
		role = parsed
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a signed token carrying {id, role}.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", xerrors.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		// Do not reveal whether the email exists.
		return nil, "", xerrors.ErrInvalidCredentials
	}

	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", xerrors.ErrInvalidCredentials
	}

	token, _, err := s.generator.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) ListUsers(ctx context.Context, p domain.Principal) ([]*domain.User, error) {
	if !p.HasCapability(domain.CapManageUsers) {
		return nil, xerrors.ErrForbidden
	}
	return s.users.List(ctx)
}

// DeleteUser removes another user's account. The self-action guard runs
// before any mutating effect.
func (s *AuthService) DeleteUser(ctx context.Context, p domain.Principal, targetID int64) error {
	if !p.HasCapability(domain.CapManageUsers) {
		return xerrors.ErrForbidden
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return err
	}

	if err := domain.GuardSelfAction(p, targetID); err != nil {
		return err
	}

	return s.users.Delete(ctx, targetID)
}

// UpdateUserRole changes another user's role within the closed role set.
func (s *AuthService) UpdateUserRole(ctx context.Context, p domain.Principal, targetID int64, roleStr string) (*domain.User, error) {
	if !p.HasCapability(domain.CapManageUsers) {
		return nil, xerrors.ErrForbidden
	}

	role, err := domain.ParseRole(roleStr)
	if err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	if err := domain.GuardSelfAction(p, targetID); err != nil {
		return nil, err
	}

	if err := s.users.UpdateRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, targetID)
}
