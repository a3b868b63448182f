package auth

import (
	"time"

	"SchoolManager/internal/apperr"
	"SchoolManager/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to every password a user chooses.
const MinPasswordLength = 6

type Claims struct {
	UserID    string `json:"userId"`
	Role      Role   `json:"role"`
	FacultyID string `json:"facultyId,omitempty"` // faculty sessions only
	RoleName  string `json:"roleName,omitempty"`  // resolved capability group, faculty sessions only
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies identity tokens. Tokens are never stored;
// validity depends only on the signature and the expiry, so rotating the key
// invalidates every outstanding token.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(cfg *config.AppConfig) *TokenIssuer {
	return NewTokenIssuerWithClock(cfg.JWTKey, cfg.TokenTTL, time.Now)
}

func NewTokenIssuerWithClock(key []byte, ttl time.Duration, now func() time.Time) *TokenIssuer {
	return &TokenIssuer{key: key, ttl: ttl, now: now}
}

func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// Issue signs claims with HS256. Subject, issued-at and expiry are set here.
func (i *TokenIssuer) Issue(claims Claims) (string, error) {
	now := i.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   claims.UserID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)
	return token.SignedString(i.key)
}

// Verify fails with apperr.KindUnauthenticated on a bad signature, an
// unexpected algorithm, a malformed token, or expiry.
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, &apperr.Error{Kind: apperr.KindUnauthenticated, Message: "invalid token", Err: err}
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, apperr.Unauthenticated("invalid token")
	}
	return claims, nil
}

func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(hashed), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
