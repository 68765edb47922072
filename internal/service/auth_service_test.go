package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/jobboard/internal/domain"
	"github.com/smallbiznis/jobboard/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res, err := h.auth.Register(ctx, service.RegisterInput{
		Name: "Jane", Email: "  Jane@Example.com ", Password: "secret123", Role: "jobseeker",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "jane@example.com", res.User.Email)
	require.Equal(t, "jobseeker", res.User.Role)

	stored, err := h.store.Users().GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "secret123", stored.PasswordHash)

	login, err := h.auth.Login(ctx, service.LoginInput{Email: "JANE@example.com", Password: "secret123"})
	require.NoError(t, err)
	require.Equal(t, res.User.ID, login.User.ID)

	identity, err := h.auth.Authenticate(login.Token)
	require.NoError(t, err)
	require.Equal(t, res.User.ID, identity.UserID)
	require.Equal(t, domain.RoleJobseeker, identity.Role)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cases := map[string]service.RegisterInput{
		"missing name":     {Email: "a@b.co", Password: "secret123", Role: "jobseeker"},
		"bad email":        {Name: "A", Email: "not-an-email", Password: "secret123", Role: "jobseeker"},
		"short password":   {Name: "A", Email: "a@b.co", Password: "12345", Role: "jobseeker"},
		"unknown role":     {Name: "A", Email: "a@b.co", Password: "secret123", Role: "admin"},
		"employer company": {Name: "A", Email: "a@b.co", Password: "secret123", Role: "employer"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := h.auth.Register(ctx, in)
			require.ErrorIs(t, err, service.ErrValidation)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newHarness(t)
	h.register(t, "dup@example.com", domain.RoleJobseeker)

	_, err := h.auth.Register(context.Background(), service.RegisterInput{
		Name: "Other", Email: "DUP@example.com", Password: "secret123", Role: "jobseeker",
	})
	require.ErrorIs(t, err, service.ErrValidation)
	require.ErrorContains(t, err, "user already exists")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	h := newHarness(t)
	h.register(t, "jane@example.com", domain.RoleJobseeker)
	ctx := context.Background()

	_, wrongPassword := h.auth.Login(ctx, service.LoginInput{Email: "jane@example.com", Password: "nope-nope"})
	_, unknownEmail := h.auth.Login(ctx, service.LoginInput{Email: "ghost@example.com", Password: "secret123"})

	require.ErrorIs(t, wrongPassword, service.ErrUnauthenticated)
	require.ErrorIs(t, unknownEmail, service.ErrUnauthenticated)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestMe(t *testing.T) {
	h := newHarness(t)
	employer := h.register(t, "boss@acme.test", domain.RoleEmployer)

	me, err := h.auth.Me(context.Background(), employer)
	require.NoError(t, err)
	require.Equal(t, "Acme", me.Company)

	_, err = h.auth.Me(context.Background(), domain.Identity{UserID: 424242, Role: domain.RoleJobseeker})
	require.ErrorIs(t, err, service.ErrNotFound)
}

func TestAuthenticateRejectsGarbage(t *testing.T) {
	h := newHarness(t)
	_, err := h.auth.Authenticate("not.a.token")
	require.ErrorIs(t, err, service.ErrInvalidToken)
}
