package ranking

import (
	"net/http"
	"strconv"

	"github.com/RedeViva/api-portal/internal/utils"
)

type Handler struct {
	Servico *Servico
}

func NewHandler(s *Servico) *Handler {
	return &Handler{Servico: s}
}

// Top devolve o placar de maiores indicadores. ?limite=N, padrão 5.
func (h *Handler) Top(w http.ResponseWriter, r *http.Request) {
	limite := LimitePadrao
	if v := r.URL.Query().Get("limite"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			utils.RespondErro(w, http.StatusBadRequest, "limite inválido")
			return
		}
		limite = n
	}

	entradas, err := h.Servico.TopIndicadores(r.Context(), limite)
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao calcular ranking")
		return
	}

	utils.RespondJSON(w, http.StatusOK, entradas)
}
