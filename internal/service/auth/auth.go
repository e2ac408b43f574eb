package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/logger"
	"github.com/avolkov/campus/internal/models"
	"github.com/avolkov/campus/internal/service/auth/tokencodec"
	"github.com/avolkov/campus/internal/service/mail"
	"github.com/avolkov/campus/internal/sessioncache"
)

const (
	defaultSessionTTL  = 7 * 24 * time.Hour
	defaultMailTimeout = 10 * time.Second
)

// UserStore is what the protocols need from the persistence collaborator.
// Hashing and password comparison happen behind it, never here.
type UserStore interface {
	// Create confirms password == confirmation, hashes and persists
	// Has to return apperrors.ErrUserAlreadyExists on duplicate email
	Create(ctx context.Context, reg models.PendingRegistration) (models.User, error)

	// Has to return apperrors.ErrUserNotFound when missing
	GetByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)

	// Empty name or email leaves that field unchanged
	UpdateInfo(ctx context.Context, userID uuid.UUID, name string, email string) (models.User, error)

	// Re-hashes and stamps the password-change instant
	ChangePassword(ctx context.Context, userID uuid.UUID, newPassword string) (models.User, error)

	// Nil when candidate matches the stored hash
	VerifyPassword(hashedPassword string, candidate string) error
}

type Config struct {
	// Session entry lifetime in the cache; defaults to 7 days
	SessionTTL time.Duration

	// Budget for one activation mail delivery; defaults to 10s
	MailTimeout time.Duration
}

// Service drives the registration, session and credential-change protocols.
// All state lives in the collaborators; the service itself is safe for
// concurrent use.
type Service struct {
	codec    *tokencodec.Codec
	users    UserStore
	sessions sessioncache.Cache
	mail     mail.Sender
	logger   logger.Logger

	sessionTTL  time.Duration
	mailTimeout time.Duration
}

func NewService(
	cfg Config,
	codec *tokencodec.Codec,
	users UserStore,
	sessions sessioncache.Cache,
	sender mail.Sender,
	log logger.Logger,
) (*Service, error) {
	if codec == nil || users == nil || sessions == nil {
		return nil, errors.New("codec, user store and session cache must not be nil")
	}
	if sender == nil {
		sender = mail.NoOpSender{}
	}
	if log == nil {
		log = logger.NewNoOp()
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.SessionTTL, defaultSessionTTL)
	setDefaultDuration(&cfg.MailTimeout, defaultMailTimeout)

	return &Service{
		codec:       codec,
		users:       users,
		sessions:    sessions,
		mail:        sender,
		logger:      log,
		sessionTTL:  cfg.SessionTTL,
		mailTimeout: cfg.MailTimeout,
	}, nil
}

// AuthResult is returned whenever a session starts: on login and on
// account activation
type AuthResult struct {
	User   models.PublicUser
	Tokens models.TokenPair
}

// Login verifies credentials, issues an access+refresh pair and writes the
// session entry. A missing user and a wrong password are indistinguishable
// to the caller.
func (s *Service) Login(ctx context.Context, email string, password string) (AuthResult, error) {
	if email == "" || password == "" {
		return AuthResult{}, apperrors.ErrMissingCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return AuthResult{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return AuthResult{}, fmt.Errorf("error while looking up user. Err: %w", err)
	}

	if err := s.users.VerifyPassword(user.HashedPassword, password); err != nil {
		return AuthResult{}, apperrors.ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Logout deletes the session entry. This is the authoritative revocation:
// any still-unexpired refresh token for the user dies with the entry.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.sessions.Delete(ctx, userID)
}

// Refresh exchanges a valid refresh token for a fresh access+refresh pair.
// Requires a live session entry; a token minted before the last password
// change is rejected even when its signature is still valid.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	var pair models.TokenPair

	userID, issuedAt, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return pair, err
	}

	snapshot, err := s.sessions.Get(ctx, userID)
	if err != nil {
		return pair, err
	}

	if snapshot.PasswordChangedAfter(issuedAt) {
		return pair, apperrors.ErrPasswordChangedSinceIssuance
	}

	pair, err = s.issuePair(userID)
	if err != nil {
		return pair, err
	}

	// Plain overwrite: concurrent refreshes for one user race
	// last-write-wins, each with a full new pair
	if err := s.sessions.Set(ctx, snapshot, s.sessionTTL); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

func (s *Service) startSession(ctx context.Context, user models.User) (AuthResult, error) {
	pair, err := s.issuePair(user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	if err := s.sessions.Set(ctx, user.Public(), s.sessionTTL); err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user.Public(), Tokens: pair}, nil
}

func (s *Service) issuePair(userID uuid.UUID) (models.TokenPair, error) {
	var pair models.TokenPair

	access, err := s.codec.IssueAccess(userID)
	if err != nil {
		return pair, fmt.Errorf("error while issuing access token. Err: %w", err)
	}

	refresh, err := s.codec.IssueRefresh(userID)
	if err != nil {
		return pair, fmt.Errorf("error while issuing refresh token. Err: %w", err)
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// SessionUser resolves an access token into the cached session snapshot.
// Used by the auth middleware on every protected request.
func (s *Service) SessionUser(ctx context.Context, accessToken string) (models.PublicUser, error) {
	userID, err := s.codec.VerifyAccess(accessToken)
	if err != nil {
		return models.PublicUser{}, err
	}

	return s.sessions.Get(ctx, userID)
}
