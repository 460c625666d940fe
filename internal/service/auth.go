package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"marketplace-service/internal/kv"
	"marketplace-service/internal/models"
	"marketplace-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the sign-up form
type RegisterInput struct {
	Email           string          `json:"email"`
	Password        string          `json:"password"`
	ConfirmPassword string          `json:"confirmPassword"`
	FullName        string          `json:"fullName"`
	Phone           string          `json:"phone"`
	UserType        models.UserType `json:"userType"`
}

// UserPatch carries profile changes; nil fields are left alone
type UserPatch struct {
	FullName *string `json:"fullName"`
	Phone    *string `json:"phone"`
	Photo    *string `json:"photo"`
}

// Accounts keeps the user directory under kv.KeyUsers and the signed-in user
// under kv.KeyUser.
type Accounts struct {
	mu         sync.Mutex
	kv         kv.Store
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

func NewAccounts(store kv.Store) *Accounts {
	return &Accounts{
		kv:         store,
		bcryptCost: bcrypt.DefaultCost,
		logger:     util.Named("accounts"),
		now:        time.Now,
	}
}

// Register creates an account and signs it in
func (a *Accounts) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" || strings.TrimSpace(in.FullName) == "" {
		return nil, fmt.Errorf("email, password and full name are required: %w", ErrValidation)
	}
	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("passwords do not match: %w", ErrValidation)
	}
	if !in.UserType.Valid() {
		return nil, fmt.Errorf("unknown user type %q: %w", in.UserType, ErrValidation)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	accounts, err := a.readAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if acc.Email == email {
			return nil, ErrEmailTaken
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), a.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Email:     email,
		FullName:  strings.TrimSpace(in.FullName),
		Phone:     strings.TrimSpace(in.Phone),
		UserType:  in.UserType,
		CreatedAt: a.now(),
	}
	accounts = append(accounts, models.Account{User: user, PasswordHash: string(hash)})

	if err := kv.SetJSON(ctx, a.kv, kv.KeyUsers, accounts); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		return nil, err
	}
	if err := a.setSession(ctx, user); err != nil {
		return nil, err
	}

	a.logger.Info("User registered",
		zap.String("user_id", user.ID),
		zap.String("user_type", string(user.UserType)))
	return &user, nil
}

// Login checks the credentials and stores the session
func (a *Accounts) Login(ctx context.Context, email, password string) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	accounts, err := a.readAccounts(ctx)
	if err != nil {
		return nil, err
	}

	email = normalizeEmail(email)
	for _, acc := range accounts {
		if acc.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
			break
		}
		if err := a.setSession(ctx, acc.User); err != nil {
			return nil, err
		}
		user := acc.User
		return &user, nil
	}

	a.logger.Warn("Login rejected", zap.String("email", email))
	return nil, ErrInvalidCredentials
}

// Logout clears the session
func (a *Accounts) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.kv.Remove(ctx, kv.KeyUser); err != nil {
		util.StorageErrorsTotal.WithLabelValues("remove").Inc()
		return err
	}
	return nil
}

// Current returns the signed-in user or ErrNotFound
func (a *Accounts) Current(ctx context.Context) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current(ctx)
}

// UpdateProfile merges patch into the session and the directory entry.
// Without a session it returns nil, nil.
func (a *Accounts) UpdateProfile(ctx context.Context, patch UserPatch) (*models.User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	user, err := a.current(ctx)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if patch.FullName != nil {
		user.FullName = strings.TrimSpace(*patch.FullName)
	}
	if patch.Phone != nil {
		user.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Photo != nil {
		photo := *patch.Photo
		user.Photo = &photo
	}

	accounts, err := a.readAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		if accounts[i].ID == user.ID {
			accounts[i].User = *user
		}
	}
	if err := kv.SetJSON(ctx, a.kv, kv.KeyUsers, accounts); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		return nil, err
	}
	if err := a.setSession(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *Accounts) current(ctx context.Context) (*models.User, error) {
	var user models.User
	ok, err := kv.GetJSON(ctx, a.kv, kv.KeyUser, &user)
	if err != nil {
		util.StorageErrorsTotal.WithLabelValues("read").Inc()
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (a *Accounts) readAccounts(ctx context.Context) ([]models.Account, error) {
	accounts := []models.Account{}
	if _, err := kv.GetJSON(ctx, a.kv, kv.KeyUsers, &accounts); err != nil {
		util.StorageErrorsTotal.WithLabelValues("read").Inc()
		return nil, err
	}
	return accounts, nil
}

func (a *Accounts) setSession(ctx context.Context, user models.User) error {
	if err := kv.SetJSON(ctx, a.kv, kv.KeyUser, user); err != nil {
		util.StorageErrorsTotal.WithLabelValues("write").Inc()
		return err
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
