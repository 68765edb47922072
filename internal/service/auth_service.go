package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"

	"github.com/smallbiznis/jobboard/internal/domain"
	"github.com/smallbiznis/jobboard/internal/jwt"
	pw "github.com/smallbiznis/jobboard/internal/password"
	"github.com/smallbiznis/jobboard/internal/repository"
)

// RegisterInput is the registration payload.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"required,oneof=jobseeker employer"`
	Company  string `json:"company" validate:"required_if=Role employer"`
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

const invalidCredentials = "invalid email or password"

// AuthService registers accounts and issues bearer tokens.
type AuthService struct {
	instrumentation
	users     repository.UserRepository
	snowflake *snowflake.Node
	jwt       *jwt.Generator
}

// NewAuthService wires dependencies.
func NewAuthService(users repository.UserRepository, node *snowflake.Node, generator *jwt.Generator, logger *zap.Logger) *AuthService {
	return &AuthService{
		instrumentation: newInstrumentation(logger),
		users:           users,
		snowflake:       node,
		jwt:             generator,
	}
}

// Register creates an account and returns it with a fresh token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Register")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	in.Company = strings.TrimSpace(in.Company)
	if err := validateInput(in); err != nil {
		return AuthResult{}, fail(span, err)
	}
	role, _ := domain.ParseRole(in.Role)

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return AuthResult{}, fail(span, Validation("user already exists"))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, fail(span, fmt.Errorf("check existing user: %w", err))
	}

	hashed, err := pw.Hash(in.Password)
	if err != nil {
		return AuthResult{}, fail(span, fmt.Errorf("hash password: %w", err))
	}

	user := domain.User{
		ID:           s.snowflake.Generate().Int64(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Phone:        in.Phone,
		Role:         role,
		Company:      in.Company,
		CreatedAt:    time.Now().UTC(),
	}
	if role != domain.RoleEmployer {
		user.Company = ""
	}

	created, err := s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrConflict) {
		return AuthResult{}, fail(span, Validation("user already exists"))
	}
	if err != nil {
		return AuthResult{}, fail(span, fmt.Errorf("create user: %w", err))
	}

	result, err := s.issue(created)
	if err != nil {
		return AuthResult{}, fail(span, err)
	}
	s.audit("user.registered", "user_id", created.ID, "role", created.Role)
	return result, nil
}

// Login verifies credentials. Unknown emails and wrong passwords produce the
// same Unauthenticated error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (AuthResult, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return AuthResult{}, fail(span, err)
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return AuthResult{}, fail(span, newError(KindUnauthenticated, invalidCredentials))
	}
	if err != nil {
		return AuthResult{}, fail(span, fmt.Errorf("load user: %w", err))
	}

	valid, err := pw.Verify(in.Password, user.PasswordHash)
	if err != nil {
		s.log().Warn("stored password hash is unreadable", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if err != nil || !valid {
		return AuthResult{}, fail(span, newError(KindUnauthenticated, invalidCredentials))
	}

	result, err := s.issue(user)
	if err != nil {
		return AuthResult{}, fail(span, err)
	}
	s.audit("user.login", "user_id", user.ID)
	return result, nil
}

// Me returns the profile of the authenticated caller.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (UserView, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Me")
	defer span.End()

	user, err := s.users.GetByID(ctx, identity.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return UserView{}, fail(span, newError(KindNotFound, "user not found"))
	}
	if err != nil {
		return UserView{}, fail(span, fmt.Errorf("load user: %w", err))
	}
	return newUserView(user), nil
}

// Authenticate resolves a bearer token into the identity it carries.
func (s *AuthService) Authenticate(token string) (domain.Identity, error) {
	identity, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return domain.Identity{}, newError(KindInvalidToken, "invalid or expired token")
	}
	return identity, nil
}

func (s *AuthService) issue(user domain.User) (AuthResult, error) {
	token, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("generate access token: %w", err)
	}
	return AuthResult{User: newUserView(user), Token: token}, nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
