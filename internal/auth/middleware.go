package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/RedeViva/api-portal/internal/consultor"
	"github.com/RedeViva/api-portal/internal/utils"
	"github.com/gorilla/mux"
)

// MiddlewareAutenticacao resolve o Principal do header Authorization e
// o injeta no contexto. Identidade válida sem perfil no diretório não
// é um principal autorizado — 401, não 404, nas rotas protegidas.
func MiddlewareAutenticacao(res *Resolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			p, err := res.ResolverBearer(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				responderFalhaAuth(w, err, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), consultor.PrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MiddlewareCadastro é a variante usada só pela rota de cadastro:
// exige token válido do provedor, mas tolera ausência de perfil — é
// exatamente o estado de quem ainda vai se cadastrar.
func MiddlewareCadastro(res *Resolver) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			p, err := res.ResolverBearer(r.Context(), r.Header.Get("Authorization"))
			if err != nil && !errors.Is(err, ErrPerfilNaoEncontrado) {
				responderFalhaAuth(w, err, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), consultor.PrincipalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func responderFalhaAuth(w http.ResponseWriter, err error, statusAuth int) {
	switch {
	case errors.Is(err, ErrTokenAusente),
		errors.Is(err, ErrTokenMalformado),
		errors.Is(err, ErrTokenInvalido),
		errors.Is(err, ErrPerfilNaoEncontrado):
		utils.RespondErro(w, statusAuth, err.Error())
	default:
		utils.RespondErro(w, http.StatusInternalServerError, "diretório indisponível")
	}
}

// RequirePapel restringe a rota aos papéis listados, com a herança
// admin ⊇ leader de consultor.PapelPermitido.
func RequirePapel(papeis ...consultor.Papel) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			p := consultor.PrincipalDoContexto(r)
			if p == nil || p.Consultor == nil || !consultor.PapelPermitido(p.Papel, papeis) {
				utils.RespondErro(w, http.StatusForbidden, "acesso negado")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MiddlewarePrazo limita cada requisição a um prazo máximo, propagado
// pelo contexto até o banco — uma árvore patológica ou um backend
// lento não segura o worker indefinidamente.
func MiddlewarePrazo(d time.Duration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
