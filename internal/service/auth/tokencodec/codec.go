package tokencodec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/models"
)

const (
	defaultSigningMethod = "HS256"
	defaultActivationTTL = 2 * time.Hour
	defaultAccessTTL     = 5 * time.Minute
	defaultRefreshTTL    = 72 * time.Hour
)

// Signing domain names baked into every token as the 'dom' claim.
// Together with per-domain secrets this guarantees a refresh token never
// validates as an access token and vice versa.
const (
	domainActivation = "activation"
	domainAccess     = "access"
	domainRefresh    = "refresh"
)

// Codec configuration with sensible defaults
type Config struct {
	// Per-domain secret keys
	// All three are required to be set and should differ
	ActivationSecret string
	AccessSecret     string
	RefreshSecret    string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set than default is used
	Alg string

	// Token lifetimes per domain
	// If not set than default is used
	ActivationTTL time.Duration
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type signingDomain struct {
	name   string
	secret []byte
	ttl    time.Duration
}

// Codec creates and verifies signed, time-bound tokens. Pure computation:
// no storage, no side effects.
type Codec struct {
	alg jwt.SigningMethod

	activation signingDomain
	access     signingDomain
	refresh    signingDomain
}

func New(cfg Config) (*Codec, error) {
	if cfg.ActivationSecret == "" || cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("all three signing secrets must not be empty")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.ActivationTTL, defaultActivationTTL)
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTTL)

	return &Codec{
		alg:        jwt.GetSigningMethod(cfg.Alg),
		activation: signingDomain{name: domainActivation, secret: []byte(cfg.ActivationSecret), ttl: cfg.ActivationTTL},
		access:     signingDomain{name: domainAccess, secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
		refresh:    signingDomain{name: domainRefresh, secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
	}, nil
}

// SessionClaims carry only the user id plus the signing domain
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"uid"`
	Domain string    `json:"dom"`
}

// ActivationClaims embed the whole pending registration and the one-time
// code; nothing is persisted server side until the token is redeemed
type ActivationClaims struct {
	jwt.RegisteredClaims
	User   models.PendingRegistration `json:"user"`
	Code   string                     `json:"code"`
	Domain string                     `json:"dom"`
}

// IssueActivation signs a pending registration together with its one-time code
func (c *Codec) IssueActivation(reg models.PendingRegistration, code string) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(c.activation.ttl)

	token := jwt.NewWithClaims(
		c.alg,
		ActivationClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			User:   reg,
			Code:   code,
			Domain: domainActivation,
		},
	)

	signed, err := token.SignedString(c.activation.secret)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing activation token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// VerifyActivation returns the embedded registration and code
func (c *Codec) VerifyActivation(tokenString string) (models.PendingRegistration, string, error) {
	claims := &ActivationClaims{}
	if err := c.parse(tokenString, c.activation, claims); err != nil {
		return models.PendingRegistration{}, "", err
	}
	if claims.Domain != domainActivation {
		return models.PendingRegistration{}, "", apperrors.ErrTokenInvalid
	}

	return claims.User, claims.Code, nil
}

func (c *Codec) IssueAccess(userID uuid.UUID) (models.IssuedToken, error) {
	return c.issueSession(userID, c.access)
}

func (c *Codec) IssueRefresh(userID uuid.UUID) (models.IssuedToken, error) {
	return c.issueSession(userID, c.refresh)
}

// VerifyAccess returns the user id from a valid access token
func (c *Codec) VerifyAccess(tokenString string) (uuid.UUID, error) {
	claims := &SessionClaims{}
	if err := c.parse(tokenString, c.access, claims); err != nil {
		return uuid.Nil, err
	}
	if claims.Domain != domainAccess {
		return uuid.Nil, apperrors.ErrTokenInvalid
	}

	return claims.UserID, nil
}

// VerifyRefresh returns the user id and the instant the token was minted;
// callers compare the latter with the user's password-change instant
func (c *Codec) VerifyRefresh(tokenString string) (uuid.UUID, time.Time, error) {
	claims := &SessionClaims{}
	if err := c.parse(tokenString, c.refresh, claims); err != nil {
		return uuid.Nil, time.Time{}, err
	}
	if claims.Domain != domainRefresh || claims.IssuedAt == nil {
		return uuid.Nil, time.Time{}, apperrors.ErrTokenInvalid
	}

	return claims.UserID, claims.IssuedAt.Time, nil
}

func (c *Codec) issueSession(userID uuid.UUID, dom signingDomain) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(dom.ttl)

	token := jwt.NewWithClaims(
		c.alg,
		SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: userID,
			Domain: dom.name,
		},
	)

	signed, err := token.SignedString(dom.secret)
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing %s token. Err: %w", dom.name, err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// parse validates signature, expiry and algorithm against one domain and
// narrows every failure to the codec's two error kinds
func (c *Codec) parse(tokenString string, dom signingDomain, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (any, error) { return dom.secret, nil },
		jwt.WithValidMethods([]string{c.alg.Alg()}),
	)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.ErrTokenExpired
	default:
		return apperrors.ErrTokenInvalid
	}
}
