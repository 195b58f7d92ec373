package consultor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RedeViva/api-portal/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Notificador avisa o consultor indicante sobre um novo cadastro na
// sua rede. A entrega é melhor-esforço e nunca bloqueia o cadastro.
type Notificador interface {
	NovaIndicacao(consultorID, nome, parentID string)
}

type createConsultorRequest struct {
	Nome      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Telefone  string `json:"phone" validate:"required"`
	Documento string `json:"document"`
	Endereco  string `json:"address"`
	Cidade    string `json:"city"`
	UF        string `json:"state" validate:"omitempty,len=2"`
	ParentID  string `json:"parent_id"`

	// Aceitos apenas quando um admin cria a conta.
	AuthID string `json:"auth_id"`
	Papel  Papel  `json:"role"`
}

type atualizarPerfilRequest struct {
	Nome      string `json:"name" validate:"required"`
	Telefone  string `json:"phone" validate:"required"`
	Documento string `json:"document"`
	Endereco  string `json:"address"`
	Cidade    string `json:"city"`
	UF        string `json:"state" validate:"omitempty,len=2"`
}

type atualizarPapelRequest struct {
	Papel  *Papel  `json:"role"`
	Status *Status `json:"status"`
}

// Handler encapsula DB e repository
type Handler struct {
	DB              *gorm.DB
	Repository      Repository
	Notificador     Notificador
	Validate        *validator.Validate
	ProfundidadeMax int
}

// NewHandler retorna um handler inicializado
func NewHandler(db *gorm.DB, notificador Notificador, profundidadeMax int) *Handler {
	return &Handler{
		DB:              db,
		Repository:      NewRepository(),
		Notificador:     notificador,
		Validate:        validator.New(),
		ProfundidadeMax: profundidadeMax,
	}
}

// CriarConsultor cadastra um novo consultor. A rota exige identidade
// válida no provedor (o middleware de cadastro tolera a ausência de
// perfil); o auth_id sai do token, nunca do corpo — exceto quando um
// admin cadastra por outra pessoa.
func (h *Handler) CriarConsultor(w http.ResponseWriter, r *http.Request) {
	p := PrincipalDoContexto(r)
	if p == nil {
		utils.RespondErro(w, http.StatusUnauthorized, "identidade não resolvida")
		return
	}

	var req createConsultorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.RespondErro(w, http.StatusBadRequest, "payload inválido: "+err.Error())
		return
	}

	authID := p.AuthID
	papel := PapelConsultant
	status := StatusPendente

	if p.Consultor != nil {
		if p.Papel != PapelAdmin {
			utils.RespondErro(w, http.StatusConflict, "consultor já cadastrado")
			return
		}
		// Admin cadastrando em nome de outra identidade.
		if req.AuthID == "" {
			utils.RespondErro(w, http.StatusBadRequest, "auth_id obrigatório no cadastro por admin")
			return
		}
		authID = req.AuthID
		status = StatusAtivo
		if req.Papel != "" {
			if !PapelValido(req.Papel) {
				utils.RespondErro(w, http.StatusBadRequest, "papel inválido")
				return
			}
			papel = req.Papel
		}
	}

	// Contas administrativas ficam fora da árvore de indicações.
	var parentID *string
	if papel == PapelAdmin {
		if req.ParentID != "" {
			utils.RespondErro(w, http.StatusBadRequest, "conta administrativa não entra na árvore de indicações")
			return
		}
	} else {
		if req.ParentID == "" {
			utils.RespondErro(w, http.StatusBadRequest, "parent_id obrigatório")
			return
		}
		pai, err := h.Repository.BuscarPorID(r.Context(), h.DB, req.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.RespondErro(w, http.StatusBadRequest, "consultor indicante não encontrado")
				return
			}
			utils.RespondErro(w, http.StatusInternalServerError, "erro ao validar indicante")
			return
		}
		if pai.Papel == PapelAdmin {
			utils.RespondErro(w, http.StatusBadRequest, "conta administrativa não indica consultores")
			return
		}
		pid := pai.ID
		parentID = &pid
	}

	c := Consultor{
		AuthID:    authID,
		Nome:      req.Nome,
		Email:     req.Email,
		Telefone:  req.Telefone,
		Documento: req.Documento,
		Endereco:  req.Endereco,
		Cidade:    req.Cidade,
		UF:        req.UF,
		Papel:     papel,
		ParentID:  parentID,
		Status:    status,
	}

	// Dois cadastros simultâneos podem receber o mesmo número de
	// sequência; o insert do perdedor falha na PK e a alocação é
	// refeita uma vez. Duplicata que persiste é colisão de email ou
	// auth_id, não corrida de ID.
	for tentativa := 0; ; tentativa++ {
		id, err := h.Repository.ProximoID(r.Context(), h.DB)
		if err != nil {
			utils.RespondErro(w, http.StatusInternalServerError, "erro ao gerar identificador")
			return
		}
		c.ID = id

		err = h.Repository.Criar(r.Context(), h.DB, &c)
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if tentativa == 0 {
				continue
			}
			utils.RespondErro(w, http.StatusConflict, "e-mail ou identidade já cadastrados")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao salvar consultor")
		return
	}

	if h.Notificador != nil && parentID != nil {
		h.Notificador.NovaIndicacao(c.ID, c.Nome, *parentID)
	}

	utils.RespondJSON(w, http.StatusCreated, c)
}

// ListarConsultores retorna o diretório completo, mais recentes
// primeiro. Rota de admin.
func (h *Handler) ListarConsultores(w http.ResponseWriter, r *http.Request) {
	consultores, err := h.Repository.ListarTodos(r.Context(), h.DB)
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao listar consultores")
		return
	}
	utils.RespondJSON(w, http.StatusOK, consultores)
}

// BuscarPorID retorna um consultor pelo ID (admin ou o próprio).
func (h *Handler) BuscarPorID(w http.ResponseWriter, r *http.Request) {
	p := PrincipalDoContexto(r)
	id := mux.Vars(r)["id"]

	if p.Papel != PapelAdmin && (p.Consultor == nil || p.Consultor.ID != id) {
		utils.RespondErro(w, http.StatusForbidden, "acesso negado")
		return
	}

	obj, err := h.Repository.BuscarPorID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondErro(w, http.StatusNotFound, "consultor não encontrado")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao buscar consultor")
		return
	}
	utils.RespondJSON(w, http.StatusOK, obj)
}

// AtualizarPerfil altera os dados que o próprio consultor controla.
func (h *Handler) AtualizarPerfil(w http.ResponseWriter, r *http.Request) {
	p := PrincipalDoContexto(r)
	id := mux.Vars(r)["id"]

	if p.Papel != PapelAdmin && (p.Consultor == nil || p.Consultor.ID != id) {
		utils.RespondErro(w, http.StatusForbidden, "acesso negado")
		return
	}

	var req atualizarPerfilRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.RespondErro(w, http.StatusBadRequest, "payload inválido: "+err.Error())
		return
	}

	novos := Consultor{
		Nome:      req.Nome,
		Telefone:  req.Telefone,
		Documento: req.Documento,
		Endereco:  req.Endereco,
		Cidade:    req.Cidade,
		UF:        req.UF,
	}
	if err := h.Repository.AtualizarPerfil(r.Context(), h.DB, id, &novos); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondErro(w, http.StatusNotFound, "consultor não encontrado")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao atualizar consultor")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "atualizado"})
}

// AtualizarPapel altera papel e/ou status. Rota de admin. Promover a
// admin exige desvincular da árvore antes — conta administrativa não
// participa da cadeia de comissão.
func (h *Handler) AtualizarPapel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req atualizarPapelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if req.Papel == nil && req.Status == nil {
		utils.RespondErro(w, http.StatusBadRequest, "nada a atualizar")
		return
	}
	if req.Papel != nil && !PapelValido(*req.Papel) {
		utils.RespondErro(w, http.StatusBadRequest, "papel inválido")
		return
	}
	if req.Status != nil && !StatusValido(*req.Status) {
		utils.RespondErro(w, http.StatusBadRequest, "status inválido")
		return
	}

	existente, err := h.Repository.BuscarPorID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondErro(w, http.StatusNotFound, "consultor não encontrado")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao buscar consultor")
		return
	}
	if req.Papel != nil && *req.Papel == PapelAdmin && existente.ParentID != nil {
		utils.RespondErro(w, http.StatusBadRequest, "desvincule da árvore antes de promover a admin")
		return
	}

	if err := h.Repository.AtualizarPapelStatus(r.Context(), h.DB, id, req.Papel, req.Status); err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao atualizar consultor")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "atualizado"})
}

// Desativar marca o consultor como Inativo. Rota de admin; não existe
// exclusão física no fluxo normal.
func (h *Handler) Desativar(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == RaizID {
		utils.RespondErro(w, http.StatusBadRequest, "a raiz da rede não pode ser desativada")
		return
	}

	if err := h.Repository.Desativar(r.Context(), h.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondErro(w, http.StatusNotFound, "consultor não encontrado")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao desativar consultor")
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": string(StatusInativo)})
}

// ObterResumo constrói o resumo do painel (admin ou o próprio).
func (h *Handler) ObterResumo(w http.ResponseWriter, r *http.Request) {
	p := PrincipalDoContexto(r)
	id := mux.Vars(r)["id"]

	if p.Papel != PapelAdmin && (p.Consultor == nil || p.Consultor.ID != id) {
		utils.RespondErro(w, http.StatusForbidden, "acesso negado")
		return
	}

	obj, err := h.Repository.BuscarPorID(r.Context(), h.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondErro(w, http.StatusNotFound, "consultor não encontrado")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao buscar consultor")
		return
	}

	todos, err := h.Repository.ListarTodos(r.Context(), h.DB)
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao listar diretório")
		return
	}

	utils.RespondJSON(w, http.StatusOK, MontarResumoConsultorDTO(*obj, todos, h.ProfundidadeMax))
}
