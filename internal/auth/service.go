// Package auth registers users, checks passwords and issues the bearer
// tokens that guard portfolio endpoints.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/dgnsrekt/stockfolio/internal/ledger"
	"github.com/dgnsrekt/stockfolio/internal/types"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const issuer = "stockfolio"

// Options configures token signing and password hashing.
type Options struct {
	Secret   []byte
	TokenTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Session is the result of a successful login.
type Session struct {
	Token string     `json:"token"`
	User  types.User `json:"user"`
}

type Service struct {
	users   UserStore
	ledgers ledger.Store
	opts    Options
	now     func() time.Time
}

func NewService(users UserStore, ledgers ledger.Store, opts Options) *Service {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	return &Service{users: users, ledgers: ledgers, opts: opts, now: time.Now}
}

// Register creates an account and provisions its empty ledger.
func (s *Service) Register(ctx context.Context, username, email, password string) (types.User, error) {
	return s.create(ctx, 0, username, email, password)
}

// Import creates an account with a fixed id. Seeding uses it so that seeded
// portfolios line up with their owners.
func (s *Service) Import(ctx context.Context, id int64, username, email, password string) (types.User, error) {
	return s.create(ctx, id, username, email, password)
}

func (s *Service) create(ctx context.Context, id int64, username, email, password string) (types.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return types.User{}, types.Errorf(types.CodeValidation, "username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return types.User{}, types.NewError(types.CodeValidation, "password cannot be hashed", err)
	}
	user, err := s.users.Create(ctx, Account{
		User:         types.User{ID: id, Username: username, Email: email},
		PasswordHash: string(hash),
	})
	if err != nil {
		return types.User{}, err
	}
	if err := s.ledgers.Provision(ctx, user.ID); err != nil {
		// An account without a ledger cannot trade, so undo the insert and let
		// the caller retry from scratch.
		if derr := s.users.Delete(context.WithoutCancel(ctx), user.ID); derr != nil {
			slog.Error("orphaned account after ledger failure", "user_id", user.ID, "error", derr)
		}
		return types.User{}, fmt.Errorf("provision ledger for user %d: %w", user.ID, err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	acct, ok, err := s.users.ByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return Session{}, err
	}
	if !ok || bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return Session{}, types.Errorf(types.CodeInvalidCredentials, "invalid credentials")
	}
	// Provision is idempotent; this repairs an account left behind by a failed rollback.
	if err := s.ledgers.Provision(ctx, acct.ID); err != nil {
		return Session{}, fmt.Errorf("provision ledger for user %d: %w", acct.ID, err)
	}

	token, err := s.issue(acct.ID)
	if err != nil {
		return Session{}, err
	}
	slog.Info("user logged in", "user_id", acct.ID)
	return Session{Token: token, User: acct.User}, nil
}

func (s *Service) issue(userID int64) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   strconv.FormatInt(userID, 10),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (types.User, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		reason := "invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			reason = "token expired"
		}
		return types.User{}, types.NewError(types.CodeUnauthorized, reason, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return types.User{}, types.NewError(types.CodeUnauthorized, "invalid token subject", err)
	}
	acct, ok, err := s.users.ByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	if !ok {
		return types.User{}, types.Errorf(types.CodeUnauthorized, "unknown user")
	}
	return acct.User, nil
}
