package auth

import (
	"errors"
	"net/http"

	"github.com/RedeViva/api-portal/internal/consultor"
	"github.com/RedeViva/api-portal/internal/guarda"
	"github.com/RedeViva/api-portal/internal/utils"
)

type Handler struct {
	Resolver *Resolver
}

func NewHandler(res *Resolver) *Handler {
	return &Handler{Resolver: res}
}

// Me retorna a identidade resolvida e o perfil do diretório.
// Identidade válida sem perfil é 404 aqui — é a rota que o cadastro
// usa para descobrir se já existe perfil.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.Resolver.ResolverBearer(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPerfilNaoEncontrado):
			utils.RespondErro(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrTokenAusente),
			errors.Is(err, ErrTokenMalformado),
			errors.Is(err, ErrTokenInvalido):
			utils.RespondErro(w, http.StatusUnauthorized, err.Error())
		default:
			utils.RespondErro(w, http.StatusInternalServerError, "diretório indisponível")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"auth_id":    p.AuthID,
		"consultant": p.Consultor,
	})
}

// ValidarPapel é o contrato do validador de borda: rederiva o papel a
// partir do token apresentado e do diretório, nunca de estado do
// cliente. O shell do SPA chama isto antes de liberar qualquer área
// administrativa.
func (h *Handler) ValidarPapel(w http.ResponseWriter, r *http.Request) {
	p, err := h.Resolver.ResolverBearer(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		switch {
		case errors.Is(err, ErrPerfilNaoEncontrado):
			utils.RespondErro(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrTokenAusente),
			errors.Is(err, ErrTokenMalformado),
			errors.Is(err, ErrTokenInvalido):
			utils.RespondErro(w, http.StatusUnauthorized, err.Error())
		default:
			utils.RespondErro(w, http.StatusInternalServerError, "diretório indisponível")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"role":          p.Papel,
		"consultant_id": p.Consultor.ID,
		"is_admin":      p.Papel == consultor.PapelAdmin,
	})
}

// Guarda expõe a decisão de navegação para um caminho. Token é
// opcional: sessão ausente ou podre degrada para anônimo (caminho do
// cliente), e a decisão sai da mesma tabela usada no servidor.
func (h *Handler) Guarda(w http.ResponseWriter, r *http.Request) {
	caminho := r.URL.Query().Get("path")
	if caminho == "" {
		utils.RespondErro(w, http.StatusBadRequest, "parâmetro path obrigatório")
		return
	}

	var p *consultor.Principal
	if header := r.Header.Get("Authorization"); header != "" {
		if raw, err := ExtrairBearer(header); err == nil {
			p = h.Resolver.ResolverSessao(r.Context(), raw)
		}
	}

	var decisao guarda.Decisao
	if p == nil {
		decisao = guarda.Decidir("", false, caminho)
	} else {
		decisao = guarda.Decidir(p.Papel, true, caminho)
	}

	utils.RespondJSON(w, http.StatusOK, decisao)
}
