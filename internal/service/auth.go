package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nextbet/platform/internal/auth"
	"github.com/nextbet/platform/internal/domain"
	"github.com/nextbet/platform/internal/guard"
	"github.com/nextbet/platform/internal/ledger"
	"github.com/nextbet/platform/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles player registration and login.
type AuthService struct {
	pool     *pgxpool.Pool
	users    repository.AuthUserRepository
	profiles repository.ProfileRepository
	outbox   repository.OutboxRepository
	ledger   *ledger.Engine
	jwtMgr   *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.AuthUserRepository,
	profiles repository.ProfileRepository,
	outbox repository.OutboxRepository,
	ledgerEngine *ledger.Engine,
	jwtMgr *auth.JWTManager,
) *AuthService {
	return &AuthService{
		pool:     pool,
		users:    users,
		profiles: profiles,
		outbox:   outbox,
		ledger:   ledgerEngine,
		jwtMgr:   jwtMgr,
	}
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token    string    `json:"token"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
	Points   int64     `json:"points"`
}

// Register creates a new account within a single transaction: auth user,
// profile, and the signup bonus credited through the ledger so the very
// first balance already has a traceable entry.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateUsername(input.Username); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}

	existing, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	userID := uuid.New()

	authUser := &domain.AuthUser{
		ID:           userID,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, tx, authUser); err != nil {
		return nil, domain.ErrInternal("create auth user", err)
	}

	profile := &domain.Profile{
		ID:       userID,
		Username: input.Username,
	}
	if err := s.profiles.Create(ctx, tx, profile); err != nil {
		return nil, domain.ErrInternal("create profile", err)
	}

	bonus, err := s.ledger.ExecuteCredit(ctx, tx, domain.CreditParams{
		UserID:    userID,
		Type:      domain.TxSignupBonus,
		Amount:    domain.SignupBonusPoints,
		Reference: fmt.Sprintf("signup-%s", userID),
	})
	if err != nil {
		return nil, err
	}

	if err := s.outbox.Insert(ctx, tx, domain.NewProfileCreatedEvent(userID, input.Email)); err != nil {
		return nil, domain.ErrInternal("profile created event", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmPlayer, userID, input.Email, "")
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:    token,
		UserID:   userID,
		Email:    input.Email,
		Username: input.Username,
		Points:   bonus.Profile.Points,
	}, nil
}

// LoginInput holds the login request fields. IP is filled in by the
// handler, not the client.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IP       string `json:"-"`
}

// Login authenticates a player and returns a JWT. Failed attempts are
// recorded and repeated failures lock the account for a window.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := guard.CheckLocked(ctx, s.pool, input.Email); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		guard.RecordAttempt(ctx, s.pool, input.Email, input.IP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		guard.RecordAttempt(ctx, s.pool, input.Email, input.IP, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	guard.RecordAttempt(ctx, s.pool, input.Email, input.IP, true)

	profile, err := s.profiles.FindByID(ctx, s.pool, user.ID)
	if err != nil {
		return nil, domain.ErrInternal("find profile", err)
	}
	if profile == nil {
		return nil, domain.ErrInternal("profile record missing", fmt.Errorf("no profiles row for %s", user.ID))
	}
	if profile.IsBanned {
		return nil, domain.ErrForbidden("account is banned")
	}

	realm := auth.RealmPlayer
	role := ""
	if profile.IsAdmin {
		realm = auth.RealmAdmin
		role = auth.RoleAdmin
	}
	token, err := s.jwtMgr.GenerateToken(realm, user.ID, user.Email, role)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Username: profile.Username,
		Points:   profile.Points,
	}, nil
}

// ChangePasswordInput holds the password change request fields.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password and stores a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if len(input.NewPassword) < 8 {
		return domain.ErrValidation("password must be at least 8 characters")
	}

	user, err := s.users.FindByID(ctx, s.pool, userID)
	if err != nil {
		return domain.ErrInternal("find user", err)
	}
	if user == nil {
		return domain.ErrNotFound("user", userID.String())
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return domain.ErrUnauthorized("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.ErrInternal("hash password", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, s.pool, userID, string(hash)); err != nil {
		return domain.ErrInternal("update password", err)
	}
	return nil
}
