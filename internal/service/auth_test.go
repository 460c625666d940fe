package service

import (
	"context"
	"testing"
	"time"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAccounts(store kv.Store) *Accounts {
	a := NewAccounts(store)
	a.bcryptCost = bcrypt.MinCost
	return a
}

func validRegistration() RegisterInput {
	return RegisterInput{
		Email:           "Siti@Example.com ",
		Password:        "rahasia123",
		ConfirmPassword: "rahasia123",
		FullName:        "Siti Aminah",
		Phone:           "0812",
		UserType:        models.UserTypeFarmer,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	a := newTestAccounts(store)

	user, err := a.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "siti@example.com", user.Email)
	assert.NotEmpty(t, user.ID)

	current, err := a.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	var accounts []models.Account
	_, err = kv.GetJSON(ctx, store, kv.KeyUsers, &accounts)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.NotEqual(t, "rahasia123", accounts[0].PasswordHash)

	require.NoError(t, a.Logout(ctx))
	_, err = a.Current(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = a.Login(ctx, "siti@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = a.Login(ctx, "nobody@example.com", "rahasia123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn, err := a.Login(ctx, "SITI@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	a := newTestAccounts(kv.NewMemory())

	in := validRegistration()
	in.ConfirmPassword = "different"
	_, err := a.Register(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validRegistration()
	in.UserType = "admin"
	_, err = a.Register(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	in = validRegistration()
	in.Email = ""
	_, err = a.Register(ctx, in)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = a.Register(ctx, validRegistration())
	require.NoError(t, err)
	_, err = a.Register(ctx, validRegistration())
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	a := newTestAccounts(store)

	name := "Siti A."
	user, err := a.UpdateProfile(ctx, UserPatch{FullName: &name})
	require.NoError(t, err)
	assert.Nil(t, user)

	_, err = a.Register(ctx, validRegistration())
	require.NoError(t, err)

	user, err = a.UpdateProfile(ctx, UserPatch{FullName: &name})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Siti A.", user.FullName)
	assert.Equal(t, "0812", user.Phone)

	require.NoError(t, a.Logout(ctx))
	again, err := a.Login(ctx, "siti@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, "Siti A.", again.FullName)
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	user := models.User{ID: "u-1", UserType: models.UserTypeBuyer}
	token, exp, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), exp)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.Equal(t, models.UserTypeBuyer, claims.Role)

	other := NewTokenIssuer([]byte("other"), time.Hour)
	other.now = issuer.now
	_, err = other.Parse(token)
	assert.Error(t, err)

	issuer.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = issuer.Parse(token)
	assert.Error(t, err)
}
