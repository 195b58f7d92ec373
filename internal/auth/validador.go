package auth

import (
	"context"
	"errors"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Validador delega ao provedor de identidade a pergunta que importa:
// dado um token, de quem ele é. Nada além do auth_id é confiado ao
// cliente.
type Validador interface {
	Validar(ctx context.Context, token string) (authID string, err error)
}

// Claims mínimas esperadas no access token do provedor.
type ClaimsProvedor struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// ValidadorJWKS valida tokens contra o JWKS publicado pelo provedor
// de identidade, checando assinatura, issuer, audience e expiração.
type ValidadorJWKS struct {
	jwks     *keyfunc.JWKS
	issuer   string
	audience string
}

func NovoValidadorJWKS(jwksURL, issuer, audience string) (*ValidadorJWKS, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval: time.Hour,
		RefreshErrorHandler: func(err error) {
			// A próxima validação tenta de novo com o cache atual.
		},
	})
	if err != nil {
		return nil, err
	}
	return &ValidadorJWKS{jwks: jwks, issuer: issuer, audience: audience}, nil
}

func (v *ValidadorJWKS) Validar(ctx context.Context, raw string) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
	)

	var claims ClaimsProvedor
	token, err := parser.ParseWithClaims(raw, &claims, v.jwks.Keyfunc)
	if err != nil || !token.Valid {
		return "", ErrTokenInvalido
	}
	if claims.Subject == "" {
		return "", errors.New("token sem subject")
	}
	return claims.Subject, nil
}
