package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/imyashkale/mcpdashboard/internal/logger"
	"github.com/imyashkale/mcpdashboard/internal/models"
)

var (
	ErrMissingAuthHeader = errors.New("missing or invalid authorization header")
	ErrMissingKeyID      = errors.New("missing kid in token header")
	ErrUnknownKey        = errors.New("unable to find appropriate key")
	ErrMissingUserID     = errors.New("missing user ID in token")
)

// JWKSet represents a JSON Web Key Set
type JWKSet struct {
	Keys []JWK `json:"keys"`
}

// JWK represents a JSON Web Key
type JWK struct {
	Kid string   `json:"kid"`
	Kty string   `json:"kty"`
	Use string   `json:"use"`
	X5c []string `json:"x5c"`
}

// Auth0Config holds Auth0 configuration
type Auth0Config struct {
	Domain   string
	Audience string

	// JWKSURL overrides https://<Domain>/.well-known/jwks.json
	JWKSURL string
	// Issuer overrides https://<Domain>/
	Issuer string

	HTTPClient *http.Client
}

// NewAuth0Config creates a new Auth0 configuration
func NewAuth0Config(domain, audience string) *Auth0Config {
	return &Auth0Config{
		Domain:     domain,
		Audience:   audience,
		JWKSURL:    fmt.Sprintf("https://%s/.well-known/jwks.json", domain),
		Issuer:     fmt.Sprintf("https://%s/", domain),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// keyCache keeps the PEM certificates of a JWKS endpoint by key id.
// Unknown ids trigger a refetch so rotated keys are picked up.
type keyCache struct {
	mu    sync.Mutex
	certs map[string]string
	cfg   *Auth0Config
}

func (k *keyCache) pemCert(kid string) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if cert, ok := k.certs[kid]; ok {
		return cert, nil
	}

	certs, err := fetchPemCerts(k.cfg.HTTPClient, k.cfg.JWKSURL)
	if err != nil {
		return "", err
	}
	k.certs = certs

	cert, ok := certs[kid]
	if !ok {
		return "", ErrUnknownKey
	}
	return cert, nil
}

// AuthenticationWithAuth0 validates Auth0 RS256 bearer tokens: signature,
// expiry, audience and issuer. The subject is stored as user_id.
func AuthenticationWithAuth0(config *Auth0Config) gin.HandlerFunc {
	keys := &keyCache{cfg: config}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(config.Audience),
		jwt.WithIssuer(config.Issuer),
		jwt.WithExpirationRequired(),
	)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) || len(authHeader) == len(prefix) {
			logger.WithField("path", c.Request.URL.Path).Warnf("Authentication failed: %v", ErrMissingAuthHeader)
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Missing or invalid authorization header",
			})
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(authHeader[len(prefix):], claims, func(token *jwt.Token) (interface{}, error) {
			kid, ok := token.Header["kid"].(string)
			if !ok {
				return nil, ErrMissingKeyID
			}
			cert, err := keys.pemCert(kid)
			if err != nil {
				return nil, err
			}
			return jwt.ParseRSAPublicKeyFromPEM([]byte(cert))
		})
		if err != nil || !token.Valid {
			msg := "Token is not valid"
			if err != nil {
				msg = err.Error()
			}
			logger.WithFields(map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": msg,
			}).Warnf("Authentication failed: token validation error")
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_token",
				Message: msg,
			})
			return
		}

		userId, err := claims.GetSubject()
		if err != nil || userId == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "invalid_token",
				Message: ErrMissingUserID.Error(),
			})
			return
		}

		c.Set("user_id", userId)
		c.Set("token_claims", claims)

		logger.WithFields(map[string]interface{}{
			"user_id": userId,
			"path":    c.Request.URL.Path,
		}).Debugf("Authentication successful")

		c.Next()
	}
}

// fetchPemCerts downloads a JWKS document and returns the first x5c
// certificate of every key, PEM-encoded, by key id.
func fetchPemCerts(client *http.Client, jwksURL string) (map[string]string, error) {
	resp, err := client.Get(jwksURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching JWKS: unexpected status %d", resp.StatusCode)
	}

	var jwks JWKSet
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, err
	}

	certs := make(map[string]string, len(jwks.Keys))
	for _, key := range jwks.Keys {
		if key.Kid == "" || len(key.X5c) == 0 {
			continue
		}
		certs[key.Kid] = fmt.Sprintf("-----BEGIN CERTIFICATE-----\n%s\n-----END CERTIFICATE-----", key.X5c[0])
	}
	return certs, nil
}
