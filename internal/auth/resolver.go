package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RedeViva/api-portal/internal/consultor"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver transforma uma credencial de entrada (token bearer ou
// sessão de navegador) em um consultor.Principal, consultando o
// provedor de identidade e o diretório de consultores.
type Resolver struct {
	DB        *gorm.DB
	Repo      consultor.Repository
	Validador Validador
	Logger    *zap.Logger
}

// ResolverBearer é o caminho do servidor: extrai o token do header
// Authorization, valida no provedor e busca o perfil pelo auth_id.
// Quando a identidade é válida mas não há perfil, devolve o Principal
// só com o AuthID junto do erro ErrPerfilNaoEncontrado — o cadastro
// usa esse AuthID para criar o perfil.
func (r *Resolver) ResolverBearer(ctx context.Context, header string) (*consultor.Principal, error) {
	raw, err := ExtrairBearer(header)
	if err != nil {
		return nil, err
	}

	authID, err := r.Validador.Validar(ctx, raw)
	if err != nil {
		if errors.Is(err, ErrTokenInvalido) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalido, err)
	}

	c, err := r.Repo.BuscarPorAuthID(ctx, r.DB, authID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &consultor.Principal{AuthID: authID}, ErrPerfilNaoEncontrado
		}
		return nil, err
	}

	return &consultor.Principal{AuthID: authID, Consultor: c, Papel: c.Papel}, nil
}

// ResolverSessao é o caminho do cliente: sessão ausente vira anônimo
// (nil), e falha de validação ou de diretório também degrada para
// anônimo, apenas logada. Muitas rotas são públicas e o shell do SPA
// não deve quebrar por uma sessão podre; decisão de privilégio nunca
// parte daqui — sempre de ResolverBearer.
func (r *Resolver) ResolverSessao(ctx context.Context, token string) *consultor.Principal {
	if token == "" {
		return nil
	}

	authID, err := r.Validador.Validar(ctx, token)
	if err != nil {
		r.Logger.Warn("sessão inválida, tratando como anônimo", zap.Error(err))
		return nil
	}

	c, err := r.Repo.BuscarPorAuthID(ctx, r.DB, authID)
	if err != nil {
		r.Logger.Warn("falha ao buscar perfil da sessão, tratando como anônimo",
			zap.String("auth_id", authID), zap.Error(err))
		return nil
	}

	return &consultor.Principal{AuthID: authID, Consultor: c, Papel: c.Papel}
}

// ExtrairBearer separa o token do header Authorization.
func ExtrairBearer(header string) (string, error) {
	if header == "" {
		return "", ErrTokenAusente
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", ErrTokenMalformado
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if raw == "" {
		return "", ErrTokenMalformado
	}
	return raw, nil
}
