// Package auth implements the admin login gate: one configured credential pair
// and a signed token that expires after the session TTL.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpired            = errors.New("session expired")
)

// Issuer is written into every token.
const Issuer = "ministry-site"

// Config holds the admin credentials and token settings.
type Config struct {
	Username string
	Password string
	Secret   []byte
	TTL      time.Duration
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Authenticator struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) (*Authenticator, error) {
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("admin username and password are required")
	}
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Authenticator{cfg: cfg, now: time.Now}, nil
}

// Login checks the credentials and issues a token.
func (a *Authenticator) Login(username, password string) (Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.cfg.Password)) == 1
	if !userOK || !passOK {
		return Session{}, ErrInvalidCredentials
	}
	return a.Issue(username)
}

// Issue signs a token for username without checking a password.
func (a *Authenticator) Issue(username string) (Session, error) {
	now := a.now()
	exp := now.Add(a.cfg.TTL)
	claims := jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.cfg.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{Token: token, Username: username, ExpiresAt: exp.UTC().Truncate(time.Second)}, nil
}

// Verify validates token and returns the username it was issued to.
func (a *Authenticator) Verify(token string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)

	var claims jwt.RegisteredClaims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return a.cfg.Secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", ErrExpired
	case err != nil:
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != a.cfg.Username {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
