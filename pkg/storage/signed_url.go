package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const downloadAudience = "export-download"

// SignedURLSigner creates and validates signed download tokens.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type downloadClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SignedURLSigner{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Generate returns an HS256 token referencing the job and file path.
func (s *SignedURLSigner) Generate(jobID, relPath string) (string, time.Time, error) {
	if jobID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("jobID and relPath required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.ttl).Truncate(time.Second)
	claims := downloadClaims{
		Path: relPath,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   jobID,
			Audience:  jwt.ClaimStrings{downloadAudience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign download token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse validates a token and returns the embedded metadata.
// When allowExpired is true the expiry check is skipped (used by cleanup routines).
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(downloadAudience),
		jwt.WithTimeFunc(s.now),
	}
	claims := &downloadClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if !(allowExpired && errors.Is(err, jwt.ErrTokenExpired)) {
			return "", "", time.Time{}, fmt.Errorf("invalid download token: %w", err)
		}
	}
	if claims.Subject == "" || claims.Path == "" {
		return "", "", time.Time{}, fmt.Errorf("invalid download token: missing claims")
	}
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return claims.Subject, claims.Path, expiresAt, nil
}
