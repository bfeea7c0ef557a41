package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quizmaker/internal/models"
	"quizmaker/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.Memory) {
	t.Helper()

	st := store.NewMemory()
	require.NoError(t, store.Seed(context.Background(), st, HashPassword))

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(st, "test-secret", log), st
}

func TestLogin_DemoAccounts(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	admin, err := service.Login(ctx, store.DemoAdminEmail, store.DemoAdminPassword)
	require.NoError(t, err)
	assert.Equal(t, store.DemoAdminID, admin.ID)
	assert.True(t, service.IsInRole(admin, "admin"))

	user, err := service.Login(ctx, "JOHN@example.COM", store.DemoUserPassword)
	require.NoError(t, err)
	assert.Equal(t, store.DemoUserID, user.ID)
	assert.False(t, service.IsInRole(user, models.RoleAdmin))
	assert.True(t, service.IsInRole(user, "USER"))
}

func TestLogin_GenericFailure(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, errWrongPassword := service.Login(ctx, store.DemoUserEmail, "wrong-password1")
	_, errUnknownEmail := service.Login(ctx, "ghost@example.com", store.DemoUserPassword)

	for _, err := range []error{errWrongPassword, errUnknownEmail} {
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
		assert.Equal(t, "Invalid email or password", Message(err))
	}
}

func TestLogin_ValidatesInput(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Login(context.Background(), "", "")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestRegister(t *testing.T) {
	service, st := newTestService(t)
	ctx := context.Background()

	user, err := service.Register(ctx, models.RegisterRequest{
		FirstName:       " Grace ",
		LastName:        "Hopper",
		Email:           "Grace@Navy.mil",
		Password:        "cobol59",
		ConfirmPassword: "cobol59",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "grace@navy.mil", user.Email)
	assert.Equal(t, "Grace", user.FirstName)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "cobol59", user.PasswordHash)

	stored, err := st.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, stored.Email)

	loggedIn, err := service.Login(ctx, "grace@navy.mil", "cobol59")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegister_PasswordMismatchCreatesNothing(t *testing.T) {
	service, st := newTestService(t)
	ctx := context.Background()

	before, err := st.ListUsers(ctx)
	require.NoError(t, err)

	_, err = service.Register(ctx, models.RegisterRequest{
		FirstName:       "Alan",
		LastName:        "Turing",
		Email:           "alan@example.com",
		Password:        "enigma1",
		ConfirmPassword: "enigma2",
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Problems, "Passwords do not match")

	after, err := st.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Register(context.Background(), models.RegisterRequest{
		FirstName:       "John",
		LastName:        "Again",
		Email:           "JOHN@EXAMPLE.COM",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})
	assert.True(t, errors.Is(err, ErrEmailTaken))
	assert.Equal(t, "Email address is already registered", Message(err))
}

func TestIsInRole_NilUser(t *testing.T) {
	service, _ := newTestService(t)
	assert.False(t, service.IsInRole(nil, models.RoleAdmin))
}

func TestTokenRoundTrip(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	user, err := service.Login(ctx, store.DemoAdminEmail, store.DemoAdminPassword)
	require.NoError(t, err)

	token, err := service.IssueToken(user)
	require.NoError(t, err)

	claims, err := service.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.Id)

	resolved, err := service.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.Email, resolved.Email)
}

func TestParseToken_Rejects(t *testing.T) {
	service, st := newTestService(t)

	other := NewService(st, "another-secret", slog.New(slog.NewTextHandler(io.Discard, nil)))
	user := &models.User{ID: store.DemoUserID, Email: store.DemoUserEmail, Role: models.RoleUser}
	foreign, err := other.IssueToken(user)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", foreign} {
		_, err := service.ParseToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}
