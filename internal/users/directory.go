package users

import (
	"context"
	"crop-auction/internal/auctionerrors"
	model "crop-auction/internal/models"
	"crop-auction/internal/repository"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Directory resolves user ids to identity records
type Directory interface {
	GetUser(ctx context.Context, id string) (model.User, error)
}

// Registration is the input for a new account
type Registration struct {
	Username   string
	Password   string
	Name       string
	Location   string
	ProfilePic string
	Role       string
}

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt ignores bytes past 72
	defaultRole    = "farmer"
)

// MemoryDirectory is a concurrency-safe in-memory Directory that also owns credentials
type MemoryDirectory struct {
	mu         sync.RWMutex
	ids        repository.IDGenerator
	users      map[string]model.User
	byUsername map[string]string
	cost       int
}

// NewMemoryDirectory creates an empty directory allocating ids from ids
func NewMemoryDirectory(ids repository.IDGenerator) *MemoryDirectory {
	return &MemoryDirectory{
		ids:        ids,
		users:      make(map[string]model.User),
		byUsername: make(map[string]string),
		cost:       bcrypt.DefaultCost,
	}
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost
func (d *MemoryDirectory) WithHashCost(cost int) *MemoryDirectory {
	d.cost = cost
	return d
}

// GetUser returns the user with the given id
func (d *MemoryDirectory) GetUser(_ context.Context, id string) (model.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return model.User{}, fmt.Errorf("get user %s: %w", id, auctionerrors.ErrUserNotFound)
	}
	return u, nil
}

// Register validates and stores a new account with a hashed password
func (d *MemoryDirectory) Register(_ context.Context, reg Registration) (model.User, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	if err := validateRegistration(reg); err != nil {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), d.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	role := reg.Role
	if role == "" {
		role = defaultRole
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	key := strings.ToLower(reg.Username)
	if _, taken := d.byUsername[key]; taken {
		return model.User{}, fmt.Errorf("register %s: %w", reg.Username, auctionerrors.ErrUsernameTaken)
	}

	u := model.User{
		ID:           d.ids.NewID(),
		Username:     reg.Username,
		Name:         reg.Name,
		Location:     reg.Location,
		ProfilePic:   reg.ProfilePic,
		Role:         role,
		PasswordHash: string(hash),
	}
	d.users[u.ID] = u
	d.byUsername[key] = u.ID
	return u, nil
}

// Seed stores a user with a caller-chosen id, replacing any user with the same id or username
func (d *MemoryDirectory) Seed(u model.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return fmt.Errorf("hash password for %s: %w", u.Username, err)
	}
	u.PasswordHash = string(hash)
	if u.Role == "" {
		u.Role = defaultRole
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
	d.byUsername[strings.ToLower(u.Username)] = u.ID
	return nil
}

// Authenticate returns the user whose username and password match
func (d *MemoryDirectory) Authenticate(_ context.Context, username, password string) (model.User, error) {
	d.mu.RLock()
	id, ok := d.byUsername[strings.ToLower(strings.TrimSpace(username))]
	u := d.users[id]
	d.mu.RUnlock()

	if !ok {
		return model.User{}, fmt.Errorf("authenticate %s: %w", username, auctionerrors.ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return model.User{}, fmt.Errorf("authenticate %s: %w", username, auctionerrors.ErrInvalidCredentials)
		}
		return model.User{}, fmt.Errorf("authenticate %s: %w", username, err)
	}
	return u, nil
}

func validateRegistration(reg Registration) error {
	fields := map[string]string{}
	if reg.Username == "" {
		fields["username"] = "is required"
	} else if len(reg.Username) > 50 {
		fields["username"] = "must be at most 50 characters"
	}
	if l := len(reg.Password); l < minPasswordLen || l > maxPasswordLen {
		fields["password"] = fmt.Sprintf("must be between %d and %d characters", minPasswordLen, maxPasswordLen)
	}
	if len(fields) > 0 {
		return auctionerrors.NewValidationError(fields)
	}
	return nil
}
