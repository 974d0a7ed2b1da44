package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Recurse-ML/logfire-example/internal/domain"
	"github.com/Recurse-ML/logfire-example/internal/faultpoint"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockRecoveryStore struct{ mock.Mock }

func (m *mockRecoveryStore) Put(ctx context.Context, t *domain.RecoveryToken) error {
	return m.Called(ctx, t).Error(0)
}
func (m *mockRecoveryStore) GetByToken(ctx context.Context, token string) (*domain.RecoveryToken, error) {
	args := m.Called(ctx, token)
	if t, _ := args.Get(0).(*domain.RecoveryToken); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockRecoveryStore) Delete(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type mockLoginEventStore struct{ mock.Mock }

func (m *mockLoginEventStore) Put(ctx context.Context, ev *domain.LoginEvent) error {
	return m.Called(ctx, ev).Error(0)
}
func (m *mockLoginEventStore) ListByEmail(ctx context.Context, email string, limit int32) ([]domain.LoginEvent, error) {
	args := m.Called(ctx, email, limit)
	events, _ := args.Get(0).([]domain.LoginEvent)
	return events, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendPasswordRecovery(to, token string, ttl time.Duration) error {
	return m.Called(to, token, ttl).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID string, superuser bool) (string, error) {
	args := m.Called(userID, superuser)
	return args.String(0), args.Error(1)
}

// --- helpers ---

func newSvc(us *mockUserStore, rs *mockRecoveryStore, ls *mockLoginEventStore, ml *mockMailer, jwt *mockJWTSigner, faults *faultpoint.Registry) Service {
	return NewService(ServiceDeps{
		UserRepo:     us,
		RecoveryRepo: rs,
		LoginEvents:  ls,
		Mailer:       ml,
		JWTProvider:  jwt,
		Faults:       faults,
		RecoveryTTL:  48 * time.Hour,
	})
}

func activeUser(t *testing.T, password string) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return &domain.User{
		UserID:       "user-123",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
		Active:       true,
	}
}

func loginReq() LoginRequest {
	return LoginRequest{Email: "alice@example.com", Password: "secret-password", RemoteIP: "10.0.0.1"}
}

// --- Login tests ---

func TestLogin_Success(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(activeUser(t, "secret-password"), nil)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginEvent")).Return(nil)
	jwt.On("Sign", "user-123", false).Return("access-token", nil)

	result, err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).Login(context.Background(), loginReq())

	require.NoError(t, err)
	assert.Equal(t, "access-token", result.AccessToken)
	assert.Equal(t, "user-123", result.User.UserID)
	ls.AssertCalled(t, "Put", mock.Anything, mock.MatchedBy(func(ev *domain.LoginEvent) bool {
		return ev.Outcome == domain.LoginOutcomeSuccess && ev.UserID == "user-123"
	}))
}

func TestLogin_UnknownEmail(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginEvent")).Return(nil)

	_, err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).Login(context.Background(), loginReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	ls.AssertCalled(t, "Put", mock.Anything, mock.MatchedBy(func(ev *domain.LoginEvent) bool {
		return ev.Outcome == domain.LoginOutcomeBadCredentials
	}))
}

func TestLogin_WrongPassword(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(activeUser(t, "secret-password"), nil)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginEvent")).Return(nil)

	req := loginReq()
	req.Password = "wrong"
	_, err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).Login(context.Background(), req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	jwt.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}

func TestLogin_InactiveUser(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	u := activeUser(t, "secret-password")
	u.Active = false
	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(u, nil)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginEvent")).Return(nil)

	_, err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).Login(context.Background(), loginReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

// The documented login defect: with the fault point armed, credentials that
// verify correctly abort the request instead of yielding a token.
func TestLogin_ArmedFaultPointFiresAfterAuth(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(activeUser(t, "secret-password"), nil)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginEvent")).Return(nil)

	svc := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry([]string{FaultPointLogin}))

	defer func() {
		rec := recover()
		require.NotNil(t, rec, "armed login fault point must abort the request")
		f, ok := rec.(*faultpoint.Fault)
		require.True(t, ok)
		assert.Equal(t, FaultPointLogin, f.Point)
		// The attempt is recorded before the fault fires, token never issued.
		ls.AssertCalled(t, "Put", mock.Anything, mock.MatchedBy(func(ev *domain.LoginEvent) bool {
			return ev.Outcome == domain.LoginOutcomeFault && ev.UserID == "user-123"
		}))
		jwt.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
	}()
	_, _ = svc.Login(context.Background(), loginReq())
	t.Fatal("login must not return normally with the fault point armed")
}

// Bad credentials never reach the fault point: the defect only fires on
// logins that would otherwise succeed.
func TestLogin_ArmedFaultPointSkippedOnBadCredentials(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(activeUser(t, "secret-password"), nil)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginEvent")).Return(nil)

	svc := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry([]string{FaultPointLogin}))

	req := loginReq()
	req.Password = "wrong"
	assert.NotPanics(t, func() {
		_, err := svc.Login(context.Background(), req)
		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})
}

func TestLogin_EventStoreFailureDoesNotBlockLogin(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(activeUser(t, "secret-password"), nil)
	ls.On("Put", mock.Anything, mock.AnythingOfType("*domain.LoginEvent")).Return(errors.New("dynamo down"))
	jwt.On("Sign", "user-123", false).Return("access-token", nil)

	result, err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).Login(context.Background(), loginReq())

	require.NoError(t, err)
	assert.Equal(t, "access-token", result.AccessToken)
}

// --- password recovery tests ---

func TestRequestPasswordRecovery_SendsToken(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "alice@example.com").Return(activeUser(t, "x"), nil)
	rs.On("Put", mock.Anything, mock.AnythingOfType("*domain.RecoveryToken")).Return(nil)
	ml.On("SendPasswordRecovery", "alice@example.com", mock.Anything, 48*time.Hour).Return(nil)

	err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).RequestPasswordRecovery(context.Background(), "alice@example.com")

	require.NoError(t, err)
	rs.AssertCalled(t, "Put", mock.Anything, mock.MatchedBy(func(tok *domain.RecoveryToken) bool {
		return tok.UserID == "user-123" && len(tok.Token) == 64 && tok.ExpiresAt > time.Now().Unix()
	}))
}

func TestRequestPasswordRecovery_UnknownEmail(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, domain.ErrNotFound)

	err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).RequestPasswordRecovery(context.Background(), "nobody@example.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	ml.AssertNotCalled(t, "SendPasswordRecovery", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_ConsumesToken(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	rs.On("GetByToken", mock.Anything, "tok").Return(&domain.RecoveryToken{
		UserID: "user-123", Token: "tok", ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	us.On("Update", mock.Anything, "user-123", mock.Anything).Return(nil)
	rs.On("Delete", mock.Anything, "tok").Return(nil)

	err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).ResetPassword(context.Background(), "tok", "new-password-1")

	require.NoError(t, err)
	us.AssertCalled(t, "Update", mock.Anything, "user-123", mock.MatchedBy(func(updates map[string]interface{}) bool {
		hash, ok := updates["password_hash"].(string)
		return ok && bcrypt.CompareHashAndPassword([]byte(hash), []byte("new-password-1")) == nil
	}))
	rs.AssertCalled(t, "Delete", mock.Anything, "tok")
}

func TestResetPassword_ExpiredToken(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	rs.On("GetByToken", mock.Anything, "tok").Return(&domain.RecoveryToken{
		UserID: "user-123", Token: "tok", ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	}, nil)

	err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).ResetPassword(context.Background(), "tok", "new-password-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	us.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestResetPassword_UnknownToken(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	rs.On("GetByToken", mock.Anything, "tok").Return(nil, domain.ErrNotFound)

	err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).ResetPassword(context.Background(), "tok", "new-password-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestLoginHistory_DefaultsLimit(t *testing.T) {
	us, rs, ls, ml, jwt := &mockUserStore{}, &mockRecoveryStore{}, &mockLoginEventStore{}, &mockMailer{}, &mockJWTSigner{}

	ls.On("ListByEmail", mock.Anything, "bob@example.com", int32(50)).Return([]domain.LoginEvent{
		{EventID: "ev1", Outcome: domain.LoginOutcomeFault},
	}, nil)

	events, err := newSvc(us, rs, ls, ml, jwt, faultpoint.NewRegistry(nil)).
		LoginHistory(context.Background(), "bob@example.com", 0)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.LoginOutcomeFault, events[0].Outcome)
}
