package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthorize(t *testing.T) {
	member := &Identity{UserID: uuid.New(), Username: "alice"}
	owner := &Identity{UserID: uuid.New(), Username: "owner", Owner: true}

	tests := []struct {
		name     string
		identity *Identity
		role     Role
		check    func(error) bool
	}{
		{"anonymous member", nil, RoleMember, errs.IsUnauthorized},
		{"anonymous owner", nil, RoleOwner, errs.IsForbidden},
		{"member as owner", member, RoleOwner, errs.IsForbidden},
		{"member", member, RoleMember, nil},
		{"owner as member", owner, RoleMember, nil},
		{"owner", owner, RoleOwner, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.identity, tt.role)
			if tt.check == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{
		Username:        "alice",
		Email:           "alice@example.com",
		FullName:        "Alice",
		Password:        "secret123",
		ConfirmPassword: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "/", res.Redirect)
	assert.False(t, res.User.IsOwner)
	assert.NotEqual(t, "secret123", res.User.PasswordHash)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{
			Username: "alice", Email: "other@example.com", FullName: "Other", Password: "secret123",
		})
		require.Error(t, err)
		assert.True(t, errs.IsConflict(err))
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "username", apiErr.Field)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := env.auth.Register(ctx, RegisterInput{
			Username: "alice2", Email: "alice@example.com", FullName: "Other", Password: "secret123",
		})
		require.Error(t, err)
		assert.True(t, errs.IsConflict(err))
	})

	t.Run("validation", func(t *testing.T) {
		cases := map[string]RegisterInput{
			"username":         {Username: "abc", Email: "x@example.com", FullName: "Xavier", Password: "secret123"},
			"email":            {Username: "xavier", Email: "not-an-email", FullName: "Xavier", Password: "secret123"},
			"full_name":        {Username: "xavier", Email: "x@example.com", FullName: "X", Password: "secret123"},
			"password":         {Username: "xavier", Email: "x@example.com", FullName: "Xavier", Password: "12345"},
			"confirm_password": {Username: "xavier", Email: "x@example.com", FullName: "Xavier", Password: "secret123", ConfirmPassword: "nope"},
		}
		for field, in := range cases {
			_, err := env.auth.Register(ctx, in)
			require.Error(t, err, field)
			assert.True(t, errs.IsValidationError(err), field)
			var apiErr *errs.ApiErr
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, field, apiErr.Field)
		}
	})
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.member(t, "alice")

	res, err := env.auth.Authenticate(ctx, LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "/", res.Redirect)

	res, err = env.auth.Authenticate(ctx, LoginInput{Username: "owner", Password: "owner-password"})
	require.NoError(t, err)
	assert.Equal(t, "/admin", res.Redirect)

	res, err = env.auth.Authenticate(ctx, LoginInput{Username: "alice", Password: "secret123", Next: "/project/1"})
	require.NoError(t, err)
	assert.Equal(t, "/project/1", res.Redirect)

	res, err = env.auth.Authenticate(ctx, LoginInput{Username: "alice", Password: "secret123", Next: "//evil.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "/", res.Redirect)

	_, wrongPassword := env.auth.Authenticate(ctx, LoginInput{Username: "alice", Password: "wrong"})
	_, unknownUser := env.auth.Authenticate(ctx, LoginInput{Username: "nobody", Password: "secret123"})
	require.Error(t, wrongPassword)
	require.Error(t, unknownUser)
	assert.True(t, errs.IsInvalidCredentialsError(wrongPassword))
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{
		Username: "alice", Email: "alice@example.com", FullName: "Alice", Password: "secret123",
	})
	require.NoError(t, err)

	identity, user, err := env.auth.ResolveSession(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.Equal(t, user.ID, identity.UserID)
	assert.False(t, identity.Owner)

	require.NoError(t, env.auth.Logout(ctx, identity))
	_, _, err = env.auth.ResolveSession(ctx, res.Token)
	require.Error(t, err)
	assert.True(t, errs.IsInvalidTokenError(err))

	// logging out twice or anonymously is harmless
	require.NoError(t, env.auth.Logout(ctx, identity))
	require.NoError(t, env.auth.Logout(ctx, nil))
}

func TestResolveSessionExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.member(t, "alice")

	res, err := env.auth.Authenticate(ctx, LoginInput{Username: "alice", Password: "secret123"})
	require.NoError(t, err)

	env.auth.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = env.auth.ResolveSession(ctx, res.Token)
	require.Error(t, err)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestUpdateProfileTargetsCaller(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.member(t, "alice")
	bob := env.member(t, "bobby")

	updated, err := env.auth.UpdateProfile(ctx, alice, ProfileInput{
		FullName:    "Alice Liddell",
		Bio:         "Down the rabbit hole",
		LinkedinURL: "https://linkedin.com/in/alice",
		Image:       &Upload{Data: pngBytes, Filename: "me.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName)
	require.NotNil(t, updated.ProfileImage)

	other, err := env.db.UserRepo().FindByID(ctx, bob.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Bobby", other.FullName)
	assert.Empty(t, other.Bio)

	_, err = env.auth.UpdateProfile(ctx, nil, ProfileInput{FullName: "Nobody"})
	assert.True(t, errs.IsUnauthorized(err))

	_, err = env.auth.UpdateProfile(ctx, alice, ProfileInput{FullName: "Alice", LinkedinURL: "not a url"})
	assert.True(t, errs.IsValidationError(err))

	_, err = env.auth.UpdateProfileImage(ctx, alice, Upload{Data: []byte("plain text"), Filename: "me.png"})
	assert.True(t, errs.IsUnsupportedMediaTypeError(err))
}

func TestEnsureOwner(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()
	auth := NewAuthService(db, NewSessionTokens("s", time.Hour), &memoryStorage{})
	auth.hashCost = bcrypt.MinCost

	created, err := auth.EnsureOwner(ctx, OwnerBootstrap{Username: "admin", Email: "admin@example.com"})
	require.NoError(t, err)
	assert.True(t, created)

	owner, err := db.UserRepo().FindOwner(ctx)
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.True(t, owner.IsOwner)
	assert.NotEmpty(t, owner.PasswordHash)

	created, err = auth.EnsureOwner(ctx, OwnerBootstrap{Username: "admin2", Email: "admin2@example.com"})
	require.NoError(t, err)
	assert.False(t, created)
}

func TestPasswordByteLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for name, pw := range map[string]string{
		"ascii":     strings.Repeat("a", 80),
		"multibyte": strings.Repeat("é", 40),
	} {
		_, err := env.auth.Register(ctx, RegisterInput{
			Username: "xavier", Email: "x@example.com", FullName: "Xavier", Password: pw,
		})
		require.Error(t, err, name)
		var apiErr *errs.ApiErr
		require.ErrorAs(t, err, &apiErr, name)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode, name)
		assert.Equal(t, "password", apiErr.Field, name)
		assert.True(t, errs.IsValidationError(err), name)
	}

	_, err := env.auth.Register(ctx, RegisterInput{
		Username: "xavier", Email: "x@example.com", FullName: "Xavier", Password: strings.Repeat("a", 72),
	})
	require.NoError(t, err)

	db := newTestDatabase(t)
	auth := NewAuthService(db, NewSessionTokens("s", time.Hour), &memoryStorage{})
	auth.hashCost = bcrypt.MinCost
	created, err := auth.EnsureOwner(ctx, OwnerBootstrap{
		Username: "admin", Email: "admin@example.com", Password: strings.Repeat("a", 73),
	})
	assert.False(t, created)
	assert.True(t, errs.IsValidationError(err))
	owner, err := db.UserRepo().FindOwner(ctx)
	require.NoError(t, err)
	assert.Nil(t, owner)
}

func TestDummyHashMatchesCost(t *testing.T) {
	auth := NewAuthService(newTestDatabase(t), NewSessionTokens("s", time.Hour), &memoryStorage{})
	auth.hashCost = bcrypt.MinCost + 1

	cost, err := bcrypt.Cost(auth.dummyHash())
	require.NoError(t, err)
	assert.Equal(t, auth.hashCost, cost)
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(20)
	require.NoError(t, err)
	b, err := generatePassword(20)
	require.NoError(t, err)
	assert.Len(t, a, 20)
	assert.NotEqual(t, a, b)
}

func TestLandingPage(t *testing.T) {
	owner := &models.User{IsOwner: true}
	member := &models.User{}
	assert.Equal(t, "/admin", landingPage(owner, ""))
	assert.Equal(t, "/", landingPage(member, ""))
	assert.Equal(t, "/about", landingPage(member, "/about"))
	assert.Equal(t, "/", landingPage(member, "https://evil.example.com"))
	assert.Equal(t, "/", landingPage(member, "/\\evil"))
}
