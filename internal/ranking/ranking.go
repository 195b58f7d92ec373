// Package ranking calcula o placar de maiores indicadores da rede.
package ranking

import (
	"context"
	"sort"

	"github.com/RedeViva/api-portal/internal/consultor"
	"gorm.io/gorm"
)

// LimitePadrao de entradas do placar.
const LimitePadrao = 5

// Entrada é uma linha do placar.
type Entrada struct {
	ConsultorID string `json:"consultant_id"`
	Nome        string `json:"name"`
	Indicacoes  int    `json:"referral_count"`
}

// Diretorio é o recorte do repositório que o serviço precisa.
type Diretorio interface {
	ListarTodos(ctx context.Context, db *gorm.DB) ([]consultor.Consultor, error)
}

type Servico struct {
	DB        *gorm.DB
	Diretorio Diretorio
}

func NovoServico(db *gorm.DB, dir Diretorio) *Servico {
	return &Servico{DB: db, Diretorio: dir}
}

// TopIndicadores conta as indicações diretas (filhos imediatos) de
// cada consultor e devolve as `limite` maiores, decrescente por
// contagem e, em empate, crescente por ID — ordem determinística
// entre execuções. Consultor sem indicação não entra no placar.
func (s *Servico) TopIndicadores(ctx context.Context, limite int) ([]Entrada, error) {
	if limite <= 0 {
		limite = LimitePadrao
	}

	todos, err := s.Diretorio.ListarTodos(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	contagem := make(map[string]int, len(todos))
	nomes := make(map[string]string, len(todos))
	for _, c := range todos {
		nomes[c.ID] = c.Nome
		if c.ParentID != nil {
			contagem[*c.ParentID]++
		}
	}

	entradas := make([]Entrada, 0, len(contagem))
	for id, n := range contagem {
		entradas = append(entradas, Entrada{ConsultorID: id, Nome: nomes[id], Indicacoes: n})
	}

	sort.Slice(entradas, func(i, j int) bool {
		if entradas[i].Indicacoes != entradas[j].Indicacoes {
			return entradas[i].Indicacoes > entradas[j].Indicacoes
		}
		return entradas[i].ConsultorID < entradas[j].ConsultorID
	})

	if len(entradas) > limite {
		entradas = entradas[:limite]
	}
	return entradas, nil
}
