package arvore

import (
	"errors"
	"net/http"

	"github.com/RedeViva/api-portal/internal/utils"
	"github.com/gorilla/mux"
)

type Handler struct {
	Construtor *Construtor
}

func NewHandler(c *Construtor) *Handler {
	return &Handler{Construtor: c}
}

// BuscarArvore devolve a subárvore de indicações enraizada no {id}.
// Ciclo ou profundidade estourada é 500 explícito: árvore parcial
// nunca sai daqui.
func (h *Handler) BuscarArvore(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	no, err := h.Construtor.Construir(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrConsultorNaoEncontrado):
			utils.RespondErro(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrCicloDetectado), errors.Is(err, ErrProfundidadeExcedida):
			utils.RespondErro(w, http.StatusInternalServerError, err.Error())
		default:
			utils.RespondErro(w, http.StatusInternalServerError, "erro ao montar árvore")
		}
		return
	}

	utils.RespondJSON(w, http.StatusOK, no)
}
