package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Recurse-ML/logfire-example/internal/domain"
	"github.com/Recurse-ML/logfire-example/internal/faultpoint"
	"github.com/Recurse-ML/logfire-example/internal/pkg/id"
	pkgtoken "github.com/Recurse-ML/logfire-example/internal/pkg/token"
)

// FaultPointLogin is the named fault point on the UI login path. It fires
// after credential verification succeeds, so only logins that would otherwise
// work trigger the defect.
const FaultPointLogin = "login.access-token"

type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	RemoteIP string
}

type LoginResult struct {
	AccessToken string
	User        *domain.User
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	LoginHistory(ctx context.Context, email string, limit int32) ([]domain.LoginEvent, error)
	RequestPasswordRecovery(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type recoveryStore interface {
	Put(ctx context.Context, t *domain.RecoveryToken) error
	GetByToken(ctx context.Context, token string) (*domain.RecoveryToken, error)
	Delete(ctx context.Context, token string) error
}

type loginEventStore interface {
	Put(ctx context.Context, ev *domain.LoginEvent) error
	ListByEmail(ctx context.Context, email string, limit int32) ([]domain.LoginEvent, error)
}

type mailer interface {
	SendPasswordRecovery(to, token string, ttl time.Duration) error
}

type jwtSigner interface {
	Sign(userID string, superuser bool) (string, error)
}

type service struct {
	userRepo     userStore
	recoveryRepo recoveryStore
	loginEvents  loginEventStore
	mailer       mailer
	jwtProvider  jwtSigner
	faults       *faultpoint.Registry
	recoveryTTL  time.Duration
}

type ServiceDeps struct {
	UserRepo     userStore
	RecoveryRepo recoveryStore
	LoginEvents  loginEventStore
	Mailer       mailer
	JWTProvider  jwtSigner
	Faults       *faultpoint.Registry
	RecoveryTTL  time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		userRepo:     deps.UserRepo,
		recoveryRepo: deps.RecoveryRepo,
		loginEvents:  deps.LoginEvents,
		mailer:       deps.Mailer,
		jwtProvider:  deps.JWTProvider,
		faults:       deps.Faults,
		recoveryTTL:  deps.RecoveryTTL,
	}
}

// Login authenticates a user and issues an access token.
//
// When the login fault point is armed, every login that passes credential
// verification aborts abnormally instead of returning a token. The attempt is
// recorded first so the alert can be correlated with it. Do not move the Hit
// call or guard it with recover: surfacing this failure is the point.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		s.recordLogin(ctx, req, nil, domain.LoginOutcomeBadCredentials)
		return nil, fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized)
	}
	if !u.Active {
		s.recordLogin(ctx, req, u, domain.LoginOutcomeBadCredentials)
		return nil, fmt.Errorf("inactive user: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.recordLogin(ctx, req, u, domain.LoginOutcomeBadCredentials)
		return nil, fmt.Errorf("incorrect email or password: %w", domain.ErrUnauthorized)
	}

	if s.faults.Armed(FaultPointLogin) {
		s.recordLogin(ctx, req, u, domain.LoginOutcomeFault)
		s.faults.Hit(FaultPointLogin)
	}

	token, err := s.jwtProvider.Sign(u.UserID, u.Superuser)
	if err != nil {
		return nil, err
	}
	s.recordLogin(ctx, req, u, domain.LoginOutcomeSuccess)
	return &LoginResult{AccessToken: token, User: u}, nil
}

func (s *service) recordLogin(ctx context.Context, req LoginRequest, u *domain.User, outcome string) {
	ev := &domain.LoginEvent{
		EventID:   id.New(),
		Email:     req.Email,
		Outcome:   outcome,
		RemoteIP:  req.RemoteIP,
		CreatedAt: time.Now().UTC(),
	}
	if u != nil {
		ev.UserID = u.UserID
	}
	if err := s.loginEvents.Put(ctx, ev); err != nil {
		slog.Warn("failed to record login event", "email", req.Email, "outcome", outcome, "err", err)
	}
}

// LoginHistory returns the recorded attempts for one email, newest first.
func (s *service) LoginHistory(ctx context.Context, email string, limit int32) ([]domain.LoginEvent, error) {
	if limit < 1 {
		limit = 50
	}
	return s.loginEvents.ListByEmail(ctx, email, limit)
}

// RequestPasswordRecovery emails a single-use recovery token. Unknown emails
// return ErrNotFound; the handler decides how much to reveal.
func (s *service) RequestPasswordRecovery(ctx context.Context, email string) error {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	tok, err := pkgtoken.NewRecoveryToken()
	if err != nil {
		return err
	}
	rec := &domain.RecoveryToken{
		UserID:    u.UserID,
		Token:     tok,
		ExpiresAt: time.Now().Add(s.recoveryTTL).Unix(),
	}
	if err := s.recoveryRepo.Put(ctx, rec); err != nil {
		return err
	}
	return s.mailer.SendPasswordRecovery(u.Email, tok, s.recoveryTTL)
}

func (s *service) ResetPassword(ctx context.Context, token, newPassword string) error {
	rec, err := s.recoveryRepo.GetByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", domain.ErrBadRequest)
	}
	if rec.ExpiresAt < time.Now().Unix() {
		return fmt.Errorf("token expired: %w", domain.ErrBadRequest)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, rec.UserID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return err
	}
	if err := s.recoveryRepo.Delete(ctx, token); err != nil {
		slog.Warn("failed to delete consumed recovery token", "user_id", rec.UserID, "err", err)
	}
	return nil
}
