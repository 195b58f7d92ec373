// Package admin implementa a superfície break-glass do portal: um
// conjunto fechado de operações parametrizadas, liberado apenas para
// um admin já resolvido pelo servidor, mediante código de uso único, e
// com registro de auditoria a cada invocação. Não existe — de
// propósito — execução de SQL livre por aqui.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/RedeViva/api-portal/internal/consultor"
	"github.com/RedeViva/api-portal/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TTLPadrao dos códigos break-glass.
const TTLPadrao = 15 * time.Minute

// Operações suportadas.
const (
	OperacaoDefinirPapel  = "definir-papel"
	OperacaoDefinirStatus = "definir-status"
	OperacaoDefinirPai    = "definir-pai"
)

type executarRequest struct {
	Codigo      string `json:"code" validate:"required"`
	Operacao    string `json:"operation" validate:"required,oneof=definir-papel definir-status definir-pai"`
	ConsultorID string `json:"consultant_id" validate:"required"`

	Papel  *consultor.Papel  `json:"role,omitempty"`
	Status *consultor.Status `json:"status,omitempty"`
	// Nil em definir-pai remove o vínculo (tira o consultor da árvore).
	ParentID *string `json:"parent_id,omitempty"`
}

// Transator delimita uma transação: a mutação e a sua linha de
// auditoria entram ou saem do banco juntas.
type Transator interface {
	Transacao(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type transatorGorm struct {
	db *gorm.DB
}

func (t *transatorGorm) Transacao(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

var errAuditoria = errors.New("falha ao gravar auditoria")

type Handler struct {
	DB              *gorm.DB
	Repository      Repository
	Consultores     consultor.Repository
	Transator       Transator
	Validate        *validator.Validate
	Logger          *zap.Logger
	TTL             time.Duration
	ProfundidadeMax int
}

func NewHandler(db *gorm.DB, consultores consultor.Repository, logger *zap.Logger, ttl time.Duration, profundidadeMax int) *Handler {
	if ttl <= 0 {
		ttl = TTLPadrao
	}
	return &Handler{
		DB:              db,
		Repository:      NewRepository(),
		Consultores:     consultores,
		Transator:       &transatorGorm{db: db},
		Validate:        validator.New(),
		Logger:          logger,
		TTL:             ttl,
		ProfundidadeMax: profundidadeMax,
	}
}

// EmitirCodigo gera um código break-glass para o admin da requisição.
// O texto puro sai uma única vez na resposta; no banco fica só o hash.
func (h *Handler) EmitirCodigo(w http.ResponseWriter, r *http.Request) {
	p := consultor.PrincipalDoContexto(r)

	codigo, err := utils.GerarCodigo()
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao gerar código")
		return
	}
	hash, err := utils.HashCodigo(codigo)
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao gerar código")
		return
	}

	registro := CodigoBreakGlass{
		ConsultorID: p.Consultor.ID,
		Hash:        hash,
		ExpiraEm:    time.Now().Add(h.TTL),
	}
	if err := h.Repository.SalvarCodigo(r.Context(), h.DB, &registro); err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao salvar código")
		return
	}

	h.Logger.Info("código break-glass emitido",
		zap.String("admin", p.Consultor.ID),
		zap.Time("expira_em", registro.ExpiraEm))

	utils.RespondJSON(w, http.StatusCreated, map[string]any{
		"code":       codigo,
		"expires_at": registro.ExpiraEm,
	})
}

// Executar roda uma operação do conjunto fechado. Exige o principal
// admin da requisição e um código emitido para ele, não usado e dentro
// do prazo; o código é queimado antes da operação. A mutação e a sua
// linha de auditoria (antes e depois) são gravadas na mesma transação:
// sem auditoria, a mutação é revertida.
func (h *Handler) Executar(w http.ResponseWriter, r *http.Request) {
	p := consultor.PrincipalDoContexto(r)

	var req executarRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErro(w, http.StatusBadRequest, "payload inválido")
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		utils.RespondErro(w, http.StatusBadRequest, "payload inválido: "+err.Error())
		return
	}

	if !h.consumirCodigo(w, r, p, req.Codigo) {
		return
	}

	alvo, err := h.Consultores.BuscarPorID(r.Context(), h.DB, req.ConsultorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondErro(w, http.StatusNotFound, "consultor não encontrado")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao buscar consultor")
		return
	}
	antes, _ := json.Marshal(alvo)

	// Validações fora da transação: só leem e já escrevem a resposta.
	switch req.Operacao {
	case OperacaoDefinirPapel:
		if req.Papel == nil || !consultor.PapelValido(*req.Papel) {
			utils.RespondErro(w, http.StatusBadRequest, "papel inválido")
			return
		}
		if *req.Papel == consultor.PapelAdmin && alvo.ParentID != nil {
			utils.RespondErro(w, http.StatusBadRequest, "desvincule da árvore antes de promover a admin")
			return
		}

	case OperacaoDefinirStatus:
		if req.Status == nil || !consultor.StatusValido(*req.Status) {
			utils.RespondErro(w, http.StatusBadRequest, "status inválido")
			return
		}

	case OperacaoDefinirPai:
		if !h.validarNovoPai(w, r, alvo, req.ParentID) {
			return
		}
	}

	var registro RegistroAuditoria
	var depois *consultor.Consultor
	txErr := h.Transator.Transacao(r.Context(), func(tx *gorm.DB) error {
		var err error
		switch req.Operacao {
		case OperacaoDefinirPapel:
			err = h.Consultores.AtualizarPapelStatus(r.Context(), tx, alvo.ID, req.Papel, nil)
		case OperacaoDefinirStatus:
			err = h.Consultores.AtualizarPapelStatus(r.Context(), tx, alvo.ID, nil, req.Status)
		case OperacaoDefinirPai:
			err = h.Consultores.AtualizarPai(r.Context(), tx, alvo.ID, req.ParentID)
		}
		if err != nil {
			return err
		}

		if depois, err = h.Consultores.BuscarPorID(r.Context(), tx, alvo.ID); err != nil {
			return err
		}
		depoisJSON, _ := json.Marshal(depois)
		parametros, _ := json.Marshal(map[string]any{
			"operation":     req.Operacao,
			"consultant_id": req.ConsultorID,
			"role":          req.Papel,
			"status":        req.Status,
			"parent_id":     req.ParentID,
		})

		registro = RegistroAuditoria{
			ID:         uuid.NewString(),
			Ator:       p.Consultor.ID,
			Operacao:   req.Operacao,
			Parametros: string(parametros),
			Antes:      string(antes),
			Depois:     string(depoisJSON),
		}
		if err := h.Repository.SalvarRegistro(r.Context(), tx, &registro); err != nil {
			return fmt.Errorf("%w: %v", errAuditoria, err)
		}
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, errAuditoria) {
			h.Logger.Error("auditoria falhou, operação revertida",
				zap.String("ator", p.Consultor.ID),
				zap.String("operacao", req.Operacao),
				zap.Error(txErr))
			utils.RespondErro(w, http.StatusInternalServerError, "erro ao registrar auditoria")
			return
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao executar operação")
		return
	}

	h.Logger.Info("operação break-glass executada",
		zap.String("ator", p.Consultor.ID),
		zap.String("operacao", req.Operacao),
		zap.String("alvo", alvo.ID),
		zap.String("auditoria", registro.ID))

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"audit_id":   registro.ID,
		"consultant": depois,
	})
}

// consumirCodigo localiza um código ativo do ator que bata com o texto
// apresentado e o queima. Resposta de falha já escrita quando retorna
// false.
func (h *Handler) consumirCodigo(w http.ResponseWriter, r *http.Request, p *consultor.Principal, codigo string) bool {
	ativos, err := h.Repository.ListarCodigosAtivos(r.Context(), h.DB, p.Consultor.ID)
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao verificar código")
		return false
	}
	for _, c := range ativos {
		if utils.VerificarCodigo(c.Hash, codigo) {
			if err := h.Repository.MarcarUsado(r.Context(), h.DB, c.ID); err != nil {
				utils.RespondErro(w, http.StatusInternalServerError, "erro ao consumir código")
				return false
			}
			return true
		}
	}
	utils.RespondErro(w, http.StatusForbidden, "código inválido, usado ou expirado")
	return false
}

// validarNovoPai aplica as invariantes da árvore antes de religar um
// consultor: o novo pai existe, não é admin, não é o próprio e não é
// descendente do alvo (religar para um descendente fecharia um ciclo).
func (h *Handler) validarNovoPai(w http.ResponseWriter, r *http.Request, alvo *consultor.Consultor, novoPai *string) bool {
	if alvo.Papel == consultor.PapelAdmin && novoPai != nil {
		utils.RespondErro(w, http.StatusBadRequest, "conta administrativa não entra na árvore de indicações")
		return false
	}
	if novoPai == nil {
		return true
	}
	if *novoPai == alvo.ID {
		utils.RespondErro(w, http.StatusBadRequest, "consultor não pode indicar a si mesmo")
		return false
	}
	pai, err := h.Consultores.BuscarPorID(r.Context(), h.DB, *novoPai)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondErro(w, http.StatusBadRequest, "novo indicante não encontrado")
			return false
		}
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao validar indicante")
		return false
	}
	if pai.Papel == consultor.PapelAdmin {
		utils.RespondErro(w, http.StatusBadRequest, "conta administrativa não indica consultores")
		return false
	}

	ancestral, err := consultor.EhAncestral(r.Context(), h.DB, h.Consultores, alvo.ID, pai.ID, h.ProfundidadeMax)
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao validar cadeia de indicações")
		return false
	}
	if ancestral {
		utils.RespondErro(w, http.StatusBadRequest, "religação criaria um ciclo na árvore")
		return false
	}
	return true
}

// ListarAuditoria devolve a trilha de auditoria, mais recente primeiro.
func (h *Handler) ListarAuditoria(w http.ResponseWriter, r *http.Request) {
	registros, err := h.Repository.ListarRegistros(r.Context(), h.DB, 100)
	if err != nil {
		utils.RespondErro(w, http.StatusInternalServerError, "erro ao listar auditoria")
		return
	}
	utils.RespondJSON(w, http.StatusOK, registros)
}
