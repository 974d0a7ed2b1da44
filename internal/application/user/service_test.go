package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Recurse-ML/logfire-example/internal/domain"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	args := m.Called(ctx, limit, cursor)
	users, _ := args.Get(0).([]domain.User)
	return users, args.String(1), args.Error(2)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}
func (m *mockUserStore) SoftDelete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestRegister_NewUser(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByEmail", mock.Anything, "bob@example.com").Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := NewService(repo).Register(context.Background(), domain.RegisterRequest{
		Email: "bob@example.com", Password: "long-enough-pw", FullName: "Bob",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, u.UserID)
	assert.True(t, u.Active)
	assert.False(t, u.Superuser, "signup must never grant superuser")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("long-enough-pw")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByEmail", mock.Anything, "bob@example.com").Return(&domain.User{UserID: "u1"}, nil)

	_, err := NewService(repo).Register(context.Background(), domain.RegisterRequest{
		Email: "bob@example.com", Password: "long-enough-pw",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCreate_SuperuserFlagHonoured(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	u, err := NewService(repo).Create(context.Background(), domain.CreateUserRequest{
		Email: "root@example.com", Password: "long-enough-pw", Superuser: true,
	})

	require.NoError(t, err)
	assert.True(t, u.Superuser)
}

func TestUpdate_EmailTakenByAnotherUser(t *testing.T) {
	repo := &mockUserStore{}
	taken := "taken@example.com"
	repo.On("GetByEmail", mock.Anything, taken).Return(&domain.User{UserID: "other"}, nil)

	_, err := NewService(repo).Update(context.Background(), "u1", domain.UpdateUserRequest{Email: &taken})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestUpdate_NoFieldsReturnsCurrent(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1"}, nil)

	u, err := NewService(repo).Update(context.Background(), "u1", domain.UpdateUserRequest{})

	require.NoError(t, err)
	assert.Equal(t, "u1", u.UserID)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdatePassword_WrongCurrent(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", PasswordHash: hashOf(t, "actual-password"),
	}, nil)

	err := NewService(repo).UpdatePassword(context.Background(), "u1", "wrong", "new-password-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestUpdatePassword_SameAsCurrent(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", PasswordHash: hashOf(t, "actual-password"),
	}, nil)

	err := NewService(repo).UpdatePassword(context.Background(), "u1", "actual-password", "actual-password")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdatePassword_Rotates(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", PasswordHash: hashOf(t, "actual-password"),
	}, nil)
	repo.On("Update", mock.Anything, "u1", mock.Anything).Return(nil)

	err := NewService(repo).UpdatePassword(context.Background(), "u1", "actual-password", "new-password-1")

	require.NoError(t, err)
	repo.AssertCalled(t, "Update", mock.Anything, "u1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		hash, ok := updates["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password-1")) == nil
	}))
}

func TestSeedFirstSuperuser_CreatesWhenMissing(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByEmail", mock.Anything, "admin@example.com").Return(nil, domain.ErrNotFound)
	repo.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)

	err := NewService(repo).SeedFirstSuperuser(context.Background(), "admin@example.com", "changethis")

	require.NoError(t, err)
	repo.AssertCalled(t, "Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "admin@example.com" && u.Superuser && u.Active
	}))
}

func TestSeedFirstSuperuser_SkipsWhenPresent(t *testing.T) {
	repo := &mockUserStore{}
	repo.On("GetByEmail", mock.Anything, "admin@example.com").Return(&domain.User{UserID: "u1"}, nil)

	err := NewService(repo).SeedFirstSuperuser(context.Background(), "admin@example.com", "changethis")

	require.NoError(t, err)
	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}
