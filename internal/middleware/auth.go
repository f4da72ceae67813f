package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/jonpan30062/newsaferoute/internal/config"
)

const identityKey = "identity"

// ErrInvalidSubject is returned for tokens whose subject is not a user id.
var ErrInvalidSubject = errors.New("token subject is not a user id")

// Claims are the bearer token claims issued by the campus identity provider.
// The subject carries the numeric user id.
type Claims struct {
	Staff bool `json:"staff"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	UserID int64
	Staff  bool
}

// Authenticator verifies HS256 bearer tokens.
type Authenticator struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

// NewAuthenticator creates an authenticator for cfg. When cfg.JWTIssuer is
// set, tokens from any other issuer are rejected.
func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWTIssuer))
	}

	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
		parser: jwt.NewParser(opts...),
	}
}

// Sign issues a token for identity valid for ttl. Used by the admin CLI to
// mint reviewer tokens and by tests.
func (a *Authenticator) Sign(identity Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Staff: identity.Staff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates tokenString and returns the caller's identity.
func (a *Authenticator) Parse(tokenString string) (*Identity, error) {
	claims := &Claims{}
	_, err := a.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSubject, claims.Subject)
	}
	return &Identity{UserID: userID, Staff: claims.Staff}, nil
}

// Authenticate attaches the caller's identity when a bearer token is sent.
// Requests without an Authorization header continue anonymously; a header
// carrying a bad token is rejected.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authorization header must use the Bearer scheme")
			return
		}

		identity, err := a.Parse(tokenString)
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Warn("Rejected bearer token", map[string]interface{}{
					"error": err.Error(),
					"ip":    c.ClientIP(),
				})
			}
			c.Header("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireReviewer only lets staff callers through. It must run after
// Authenticate.
func RequireReviewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortWithError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
			return
		}
		if !identity.Staff {
			abortWithError(c, http.StatusForbidden, CodeForbidden, "Reviewer access required")
			return
		}
		c.Next()
	}
}

// GetIdentity returns the authenticated caller, if any.
func GetIdentity(c *gin.Context) (*Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*Identity)
	return identity, ok && identity != nil
}

// UserID returns the caller's user id, or nil for anonymous requests.
func UserID(c *gin.Context) *int64 {
	identity, ok := GetIdentity(c)
	if !ok {
		return nil
	}
	id := identity.UserID
	return &id
}
