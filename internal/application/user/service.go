package user

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Recurse-ML/logfire-example/internal/domain"
	"github.com/Recurse-ML/logfire-example/internal/pkg/id"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmail        = "email"
	fieldFullName     = "full_name"
	fieldIsActive     = "is_active"
	fieldIsSuperuser  = "is_superuser"
	fieldPasswordHash = "password_hash"
)

type Service interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error)
	UpdateMe(ctx context.Context, userID string, req domain.UpdateMeRequest) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Delete(ctx context.Context, userID string) error
	SeedFirstSuperuser(ctx context.Context, email, password string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, userID string) error
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

// Register is public self-signup. It can never grant superuser.
func (s *service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	return s.create(ctx, req.Email, req.Password, req.FullName, true, false)
}

// Create is the admin form: active and superuser are caller-controlled.
func (s *service) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return s.create(ctx, req.Email, req.Password, req.FullName, active, req.Superuser)
}

func (s *service) create(ctx context.Context, email, password, fullName string, active, superuser bool) (*domain.User, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Active:       active,
		Superuser:    superuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	updates := map[string]interface{}{}
	if req.Email != nil {
		if existing, err := s.repo.GetByEmail(ctx, *req.Email); err == nil && existing.UserID != userID {
			return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		updates[fieldEmail] = *req.Email
	}
	if req.FullName != nil {
		updates[fieldFullName] = *req.FullName
	}
	if req.Active != nil {
		updates[fieldIsActive] = *req.Active
	}
	if req.Superuser != nil {
		updates[fieldIsSuperuser] = *req.Superuser
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates[fieldPasswordHash] = string(hash)
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}

func (s *service) UpdateMe(ctx context.Context, userID string, req domain.UpdateMeRequest) (*domain.User, error) {
	upd := domain.UpdateUserRequest{Email: req.Email, FullName: req.FullName}
	return s.Update(ctx, userID, upd)
}

func (s *service) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", domain.ErrUnauthorized)
	}
	if currentPassword == newPassword {
		return fmt.Errorf("new password must differ from the current one: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, userID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

func (s *service) Delete(ctx context.Context, userID string) error {
	return s.repo.SoftDelete(ctx, userID)
}

// SeedFirstSuperuser creates the initial superuser account if it does not
// exist yet. Called on every startup; existing accounts are left alone.
func (s *service) SeedFirstSuperuser(ctx context.Context, email, password string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil
	}
	u, err := s.create(ctx, email, password, "Initial Superuser", true, true)
	if err != nil {
		return fmt.Errorf("seed first superuser: %w", err)
	}
	slog.Info("created first superuser", "user_id", u.UserID, "email", email)
	return nil
}
