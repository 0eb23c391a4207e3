package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "quantumshop"
	tokenAudience = "quantumshop-api"
)

var (
	ErrJWTInvalid = errors.New("jwt invalid")
	ErrJWTExpired = errors.New("jwt expired")
)

// JWTService firma y verifica bearer tokens HS256. Solo identifica al usuario para
// asociar predicciones e historial; el alta de cuentas vive fuera de este servicio.
type JWTService struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// AccessToken es la respuesta de cmd/issue_token.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Claims viajan en el token; UserID repite el subject para los handlers.
type Claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// NewJWTService con secreto vacio queda deshabilitado: la api atiende solo anonimos.
func NewJWTService(secret string, ttl time.Duration) *JWTService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &JWTService{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	return s
}

func (s *JWTService) Enabled() bool {
	return s != nil && len(s.key) > 0
}

func (s *JWTService) GenerateAccessToken(userID string) (AccessToken, error) {
	userID = strings.TrimSpace(userID)
	if !s.Enabled() || userID == "" {
		return AccessToken{}, ErrJWTInvalid
	}
	issuedAt := s.now().UTC()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}).SignedString(s.key)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{AccessToken: signed, ExpiresIn: int64(s.ttl / time.Second)}, nil
}

// ParseAccessToken devuelve ErrJWTExpired para tokens vencidos y ErrJWTInvalid para todo lo demas.
func (s *JWTService) ParseAccessToken(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if !s.Enabled() || raw == "" {
		return Claims{}, ErrJWTInvalid
	}
	var claims Claims
	_, err := s.parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrJWTExpired
	case err != nil:
		return Claims{}, ErrJWTInvalid
	case claims.UserID == "" || claims.Subject != claims.UserID:
		return Claims{}, ErrJWTInvalid
	}
	return claims, nil
}
