package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/scenecast/scenecast/pkg/log"
)

var issuer = "scenecast"

var (
	ErrInvalidToken = errors.New("invalid token")
)

// OrgClaims is the per-organization slice of an authorization token.
type OrgClaims struct {
	Permissions []string `json:"p"`
	Brands      []string `json:"b"`
}

// AuthClaims is the compact authorization payload attached to a user
// credential. Orgs maps organization id to encoded permissions and
// brand grants; CV is the claims version counter.
type AuthClaims struct {
	UserId string               `json:"userId"`
	Orgs   map[string]OrgClaims `json:"orgs"`
	CV     int64                `json:"cv"`
	jwt.RegisteredClaims
}

// GenClaimsToken signs the authorization claims for a user.
func GenClaimsToken(userId string, orgs map[string]OrgClaims, cv int64, secretKey []byte, expire time.Duration) (string, error) {
	claims := &AuthClaims{
		UserId: userId,
		Orgs:   orgs,
		CV:     cv,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
	if err != nil {
		log.Errorw("jwt.NewWithClaims err", "error", err)
		return "", err
	}
	return token, nil
}

// ParseClaimsToken verifies and decodes an authorization token.
func ParseClaimsToken(token, secretKey string) (*AuthClaims, error) {
	claims := new(AuthClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
