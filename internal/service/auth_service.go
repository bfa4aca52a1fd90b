package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"smartgrid/internal/models"
	"smartgrid/internal/password"
)

var (
	// ErrEmailInUse is returned when registering an email that already
	// has an account.
	ErrEmailInUse = errors.New("user already exists with this email")
	// ErrInvalidCredentials is the single login failure. It never reveals
	// whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserRepository defines the storage contract used by AuthService.
type UserRepository interface {
	Insert(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Replace(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]models.User, error)
	ListActiveSince(ctx context.Context, cutoff time.Time) ([]models.User, error)
}

// RegisterInput is the registration payload after handler-level shape
// checks.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AuthService contains registration, login, and profile logic.
type AuthService struct {
	repo   UserRepository
	hasher password.Hasher
	logger *zap.Logger
}

// NewAuthService builds AuthService.
func NewAuthService(repo UserRepository, hasher password.Hasher, logger *zap.Logger) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, logger: logger}
}

// Register creates a new account. The duplicate check is a lookup before
// the insert; concurrent registrations for the same email can both pass
// it (there is no storage-level uniqueness constraint).
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailInUse
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		LoginCount:   0,
		PartitionKey: emailDomain(email),
	}

	if err := s.repo.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("id", user.ID), zap.String("email", user.Email))
	return user, nil
}

// Login authenticates an account. On success the last-login update is
// dispatched in the background; its failure is logged and never surfaces
// to the caller.
func (s *AuthService) Login(ctx context.Context, email, plain string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Compare(user.PasswordHash, plain) {
		return nil, ErrInvalidCredentials
	}

	go func() {
		trackCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.UpdateLogin(trackCtx, email); err != nil {
			s.logger.Warn("login activity tracking failed", zap.String("email", email), zap.Error(err))
		}
	}()

	return user, nil
}

// UpdateLogin increments the login counter and stamps the last-login
// time for the account with the given email.
func (s *AuthService) UpdateLogin(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	now := time.Now().UTC()
	user.LastLogin = &now
	user.LoginCount++
	return s.repo.Replace(ctx, user)
}

// GetByID returns an account or nil when the id is unknown.
func (s *AuthService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns a page of accounts.
func (s *AuthService) List(ctx context.Context, offset, limit int) ([]models.User, error) {
	return s.repo.List(ctx, offset, limit)
}

// ListActive returns accounts that logged in within the last daysBack
// days.
func (s *AuthService) ListActive(ctx context.Context, daysBack int) ([]models.User, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	return s.repo.ListActiveSince(ctx, cutoff)
}

// UpdateProfile merges the patch onto the existing account. A supplied
// password is re-hashed before storage; the partition key is never
// changed. A nil result without error means the id is unknown.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, patch map[string]any) (*models.User, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if v, ok := patch["firstName"].(string); ok && v != "" {
		existing.FirstName = strings.TrimSpace(v)
	}
	if v, ok := patch["lastName"].(string); ok && v != "" {
		existing.LastName = strings.TrimSpace(v)
	}
	if v, ok := patch["email"].(string); ok && v != "" {
		existing.Email = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := patch["password"].(string); ok && v != "" {
		hash, err := s.hasher.Hash(v)
		if err != nil {
			return nil, err
		}
		existing.PasswordHash = hash
	}
	now := time.Now().UTC()
	existing.UpdatedAt = &now

	if err := s.repo.Replace(ctx, existing); err != nil {
		return nil, err
	}

	s.logger.Info("user updated", zap.String("id", id))
	return existing, nil
}

// Delete removes an account by id; false means there was nothing to
// delete.
func (s *AuthService) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("user deleted", zap.String("id", id))
	}
	return deleted, nil
}

func emailDomain(email string) string {
	if i := strings.LastIndex(email, "@"); i >= 0 {
		return email[i+1:]
	}
	return email
}
