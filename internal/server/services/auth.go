// Package services contains server-side business logic. This file implements
// AuthService, which handles signup, login, token verification, refresh
// rotation, and logout for access-key accounts with server-revocable
// sessions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/filmood/keygate/internal/common"
	"github.com/filmood/keygate/internal/dbx"
	"github.com/filmood/keygate/internal/logging"
	"github.com/filmood/keygate/internal/server/config"
	"github.com/filmood/keygate/internal/server/models"
	"github.com/filmood/keygate/internal/server/repositories/repomanager"
	"github.com/filmood/keygate/internal/server/token"
	"github.com/google/uuid"
)

// TokenCodec signs and verifies session tokens. *token.Codec is the
// production implementation; the seam exists so the codec can be swapped
// without touching this service.
type TokenCodec interface {
	Encode(accountID, name string, ttl time.Duration) (string, error)
	Decode(tokenString string) (*token.Claims, error)
}

// Profile carries the optional account fields collected at signup.
type Profile struct {
	DisplayName string
	DateOfBirth *time.Time
	Gender      *string
	Purpose     *string
}

// SessionMetadata is audit-only client context recorded with a session.
type SessionMetadata struct {
	UserAgent string
}

// LoginResult bundles an issued token with the owning account's public
// fields. Account.KeyHash is always blank in results.
type LoginResult struct {
	Token   string
	Account models.Account
}

// AuthService provides authentication operations:
//   - Signup: register an account under a key hash
//   - Login: identify by key hash and mint a session token
//   - Verify: check a token against signature, expiry, and its session row
//   - Refresh: rotate a token, revoking its predecessor
//   - Logout: revoke a token's session
//
// The service is stateless per request; all shared state lives behind the
// repositories.
type AuthService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	codec         TokenCodec
	logger        logging.Logger
	sessionTTL    time.Duration
	rememberedTTL time.Duration
	now           func() time.Time
}

// NewAuthService constructs an AuthService using repositories, the token
// codec, and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec TokenCodec, logger logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		db:            db,
		repomanager:   m,
		codec:         codec,
		logger:        logger,
		sessionTTL:    cfg.SessionTTL,
		rememberedTTL: cfg.RememberedSessionTTL,
		now:           time.Now,
	}
}

// Signup registers a new account under the given key hash. No token is
// issued; the caller logs in separately. A key hash that is already
// registered yields common.ErrorConflict.
func (s *AuthService) Signup(ctx context.Context, keyHash string, profile Profile) (*models.Account, error) {
	if keyHash == "" {
		return nil, fmt.Errorf("%w: missing key hash", common.ErrorUnauthorized)
	}

	account := &models.Account{
		ID:          uuid.NewString(),
		KeyHash:     keyHash,
		DisplayName: profile.DisplayName,
		DateOfBirth: profile.DateOfBirth,
		Gender:      profile.Gender,
		Purpose:     profile.Purpose,
	}

	repo := s.repomanager.Accounts(s.db)
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: this key is already registered", common.ErrorConflict)
		}
		s.logger.Error(ctx, "account create failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	created.KeyHash = ""
	return created, nil
}

// Login identifies the account owning keyHash and issues a session token.
// An unknown key hash yields the same generic unauthorized error as any
// other lookup failure, so callers cannot enumerate registered keys.
func (s *AuthService) Login(ctx context.Context, keyHash string, remember bool, meta SessionMetadata) (*LoginResult, error) {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByKeyHash(ctx, keyHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: invalid access key", common.ErrorUnauthorized)
		}
		s.logger.Error(ctx, "account lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	result, err := s.issueSession(ctx, account, remember, meta, s.db)
	if err != nil {
		return nil, err
	}

	// Best-effort: a failed login stamp never fails the login itself.
	if err := repo.TouchLastLogin(ctx, account.ID); err != nil {
		s.logger.Warn(ctx, "last login stamp failed", "account_id", account.ID, "error", err.Error())
	} else {
		now := s.now()
		result.Account.LastLoginAt = &now
	}

	return result, nil
}

// Verify reports whether a token is active: its signature must verify, its
// expiry claim must be in the future, and its session row must still exist
// and be unexpired. Revocation (a deleted row) therefore overrides an
// otherwise valid signature. Backing-store failures surface as
// common.ErrorInternal, never as an invalid token.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (*token.Claims, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	session, err := s.repomanager.Sessions(s.db).Get(ctx, token.Hash(tokenString))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "session lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, common.ErrSessionExpired
	}

	return claims, nil
}

// Refresh exchanges a valid token for a fresh one and revokes the old
// session in the same transaction, so the retired token cannot be replayed.
// The remembered lifetime class carries over to the new session.
func (s *AuthService) Refresh(ctx context.Context, tokenString string, meta SessionMetadata) (*LoginResult, error) {
	claims, err := s.codec.Decode(tokenString)
	if err != nil {
		return nil, err
	}

	oldHash := token.Hash(tokenString)
	session, err := s.repomanager.Sessions(s.db).Get(ctx, oldHash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		s.logger.Error(ctx, "session lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}
	if !session.ExpiresAt.After(s.now()) {
		return nil, common.ErrSessionExpired
	}

	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: account no longer exists", common.ErrorNotFound)
		}
		s.logger.Error(ctx, "account lookup failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	// Delete-old plus insert-new in one transaction. If the transaction
	// fails the old session is kept intact, and a crash mid-rotation can
	// only lose a session, never leave the retired token valid.
	var result *LoginResult
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Sessions(tx).Delete(ctx, oldHash); err != nil {
			return fmt.Errorf("error deleting old session: %w", err)
		}
		var issueErr error
		result, issueErr = s.issueSession(ctx, account, session.Remembered, meta, tx)
		return issueErr
	}); err != nil {
		s.logger.Error(ctx, "session rotation failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	return result, nil
}

// Logout revokes the session behind the given token. It is idempotent and
// succeeds whether or not the token was still valid.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if err := s.repomanager.Sessions(s.db).Delete(ctx, token.Hash(tokenString)); err != nil {
		s.logger.Error(ctx, "session delete failed", "error", err.Error())
		return common.ErrorInternal
	}
	return nil
}

// --- helpers below ---

func (s *AuthService) ttl(remember bool) time.Duration {
	if remember {
		return s.rememberedTTL
	}
	return s.sessionTTL
}

func (s *AuthService) issueSession(ctx context.Context, account *models.Account, remember bool, meta SessionMetadata, db dbx.DBTX) (*LoginResult, error) {
	ttl := s.ttl(remember)

	tok, err := s.codec.Encode(account.ID, account.DisplayName, ttl)
	if err != nil {
		s.logger.Error(ctx, "token encode failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	session := &models.Session{
		TokenHash:  token.Hash(tok),
		AccountID:  account.ID,
		ExpiresAt:  s.now().Add(ttl),
		Remembered: remember,
	}
	if meta.UserAgent != "" {
		session.UserAgent = &meta.UserAgent
	}

	if err := s.repomanager.Sessions(db).Create(ctx, session); err != nil {
		s.logger.Error(ctx, "session create failed", "error", err.Error())
		return nil, common.ErrorInternal
	}

	public := *account
	public.KeyHash = ""
	return &LoginResult{Token: tok, Account: public}, nil
}
