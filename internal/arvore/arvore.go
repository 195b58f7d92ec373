// Package arvore monta a árvore de indicações de um consultor raiz.
package arvore

import (
	"context"
	"errors"
	"time"

	"github.com/RedeViva/api-portal/internal/consultor"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrConsultorNaoEncontrado = errors.New("consultor não encontrado")
	ErrCicloDetectado         = errors.New("ciclo detectado na cadeia de indicações")
	ErrProfundidadeExcedida   = errors.New("profundidade máxima da árvore excedida")
)

// ProfundidadeMaxPadrao limita a recursão quando o diretório viola a
// invariante de aciclicidade — melhor falhar fechado do que estourar
// a pilha.
const ProfundidadeMaxPadrao = 64

// Quantidade de tentativas de leitura do diretório. Só leituras
// idempotentes são retentadas.
const tentativasLeitura = 3

// No é a projeção de um consultor dentro da árvore.
type No struct {
	ID     string           `json:"id"`
	Nome   string           `json:"name"`
	Papel  consultor.Papel  `json:"role"`
	Status consultor.Status `json:"status"`
	Email  string           `json:"email"`
	Filhos []*No            `json:"children"`
}

// Diretorio é o recorte do repositório que o construtor precisa.
type Diretorio interface {
	ListarTodos(ctx context.Context, db *gorm.DB) ([]consultor.Consultor, error)
}

type Construtor struct {
	DB              *gorm.DB
	Diretorio       Diretorio
	ProfundidadeMax int
	Logger          *zap.Logger
}

func NovoConstrutor(db *gorm.DB, dir Diretorio, profundidadeMax int, logger *zap.Logger) *Construtor {
	if profundidadeMax <= 0 {
		profundidadeMax = ProfundidadeMaxPadrao
	}
	return &Construtor{DB: db, Diretorio: dir, ProfundidadeMax: profundidadeMax, Logger: logger}
}

// Construir monta a subárvore enraizada em raizID. Uma única leitura
// em bloco do diretório alimenta um índice pai→filhos; a montagem
// carrega o contador de profundidade explicitamente e marca os nós já
// visitados, então dado corrompido com ciclo aborta com erro em vez
// de devolver árvore parcial ou recursão sem fim. Os filhos ficam na
// ordem em que o diretório os devolveu.
func (c *Construtor) Construir(ctx context.Context, raizID string) (*No, error) {
	todos, err := c.listarComRetentativa(ctx)
	if err != nil {
		return nil, err
	}

	porID := make(map[string]*consultor.Consultor, len(todos))
	filhosPorPai := make(map[string][]*consultor.Consultor, len(todos))
	for i := range todos {
		cons := &todos[i]
		porID[cons.ID] = cons
		if cons.ParentID != nil {
			filhosPorPai[*cons.ParentID] = append(filhosPorPai[*cons.ParentID], cons)
		}
	}

	raiz, ok := porID[raizID]
	if !ok {
		return nil, ErrConsultorNaoEncontrado
	}

	visitados := make(map[string]bool, len(todos))
	return c.montar(raiz, filhosPorPai, visitados, 0)
}

func (c *Construtor) montar(cons *consultor.Consultor, filhosPorPai map[string][]*consultor.Consultor, visitados map[string]bool, profundidade int) (*No, error) {
	if profundidade >= c.ProfundidadeMax {
		return nil, ErrProfundidadeExcedida
	}
	if visitados[cons.ID] {
		return nil, ErrCicloDetectado
	}
	visitados[cons.ID] = true

	no := &No{
		ID:     cons.ID,
		Nome:   cons.Nome,
		Papel:  cons.Papel,
		Status: cons.Status,
		Email:  cons.Email,
		Filhos: []*No{},
	}
	for _, filho := range filhosPorPai[cons.ID] {
		sub, err := c.montar(filho, filhosPorPai, visitados, profundidade+1)
		if err != nil {
			return nil, err
		}
		no.Filhos = append(no.Filhos, sub)
	}
	return no, nil
}

// listarComRetentativa retenta a leitura em bloco algumas vezes antes
// de desistir. Falha de autenticação nunca chega aqui; só erro de
// backend é retentado, e respeitando o prazo da requisição.
func (c *Construtor) listarComRetentativa(ctx context.Context) ([]consultor.Consultor, error) {
	var ultimoErr error
	for tentativa := 1; tentativa <= tentativasLeitura; tentativa++ {
		todos, err := c.Diretorio.ListarTodos(ctx, c.DB)
		if err == nil {
			return todos, nil
		}
		ultimoErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.Logger.Warn("falha ao listar diretório, retentando",
			zap.Int("tentativa", tentativa), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(tentativa) * 100 * time.Millisecond):
		}
	}
	return nil, ultimoErr
}
