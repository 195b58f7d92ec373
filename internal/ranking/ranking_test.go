package ranking

import (
	"context"
	"errors"
	"testing"

	"github.com/RedeViva/api-portal/internal/consultor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type diretorioFake struct {
	consultores []consultor.Consultor
	err         error
}

func (d *diretorioFake) ListarTodos(ctx context.Context, db *gorm.DB) ([]consultor.Consultor, error) {
	return d.consultores, d.err
}

func ptr(s string) *string { return &s }

// Sete consultores com contagens conhecidas:
//
//	000000 ← 000001, 000002, 000003  (3 indicações)
//	000001 ← 000004, 000005          (2 indicações)
//	000002 ← 000006                  (1 indicação)
//	000003 ← nenhum                  (fora do placar)
func fixture() []consultor.Consultor {
	return []consultor.Consultor{
		{ID: "000000", Nome: "Raiz"},
		{ID: "000001", Nome: "Ana", ParentID: ptr("000000")},
		{ID: "000002", Nome: "Bia", ParentID: ptr("000000")},
		{ID: "000003", Nome: "Caio", ParentID: ptr("000000")},
		{ID: "000004", Nome: "Duda", ParentID: ptr("000001")},
		{ID: "000005", Nome: "Edu", ParentID: ptr("000001")},
		{ID: "000006", Nome: "Fabi", ParentID: ptr("000002")},
	}
}

func TestTopIndicadores(t *testing.T) {
	s := NovoServico(nil, &diretorioFake{consultores: fixture()})

	entradas, err := s.TopIndicadores(context.Background(), 5)
	require.NoError(t, err)

	// Só três consultores têm indicações; zero-indicação fica de fora.
	require.Len(t, entradas, 3)
	assert.Equal(t, Entrada{ConsultorID: "000000", Nome: "Raiz", Indicacoes: 3}, entradas[0])
	assert.Equal(t, Entrada{ConsultorID: "000001", Nome: "Ana", Indicacoes: 2}, entradas[1])
	assert.Equal(t, Entrada{ConsultorID: "000002", Nome: "Bia", Indicacoes: 1}, entradas[2])
}

func TestTopIndicadoresRespeitaLimite(t *testing.T) {
	s := NovoServico(nil, &diretorioFake{consultores: fixture()})

	entradas, err := s.TopIndicadores(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entradas, 2)
	assert.Equal(t, "000000", entradas[0].ConsultorID)
	assert.Equal(t, "000001", entradas[1].ConsultorID)
}

func TestTopIndicadoresLimiteMaiorQueAPopulacao(t *testing.T) {
	s := NovoServico(nil, &diretorioFake{consultores: fixture()})

	entradas, err := s.TopIndicadores(context.Background(), 50)
	require.NoError(t, err)
	assert.Len(t, entradas, 3)
}

func TestTopIndicadoresDesempatePorID(t *testing.T) {
	// Três consultores empatados com uma indicação cada.
	consultores := []consultor.Consultor{
		{ID: "000010", Nome: "C"},
		{ID: "000002", Nome: "A"},
		{ID: "000007", Nome: "B"},
		{ID: "000020", Nome: "f1", ParentID: ptr("000010")},
		{ID: "000021", Nome: "f2", ParentID: ptr("000002")},
		{ID: "000022", Nome: "f3", ParentID: ptr("000007")},
	}
	s := NovoServico(nil, &diretorioFake{consultores: consultores})

	entradas, err := s.TopIndicadores(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entradas, 3)
	assert.Equal(t, "000002", entradas[0].ConsultorID)
	assert.Equal(t, "000007", entradas[1].ConsultorID)
	assert.Equal(t, "000010", entradas[2].ConsultorID)
}

func TestTopIndicadoresLimitePadrao(t *testing.T) {
	// Seis consultores com indicações; limite 0 cai no padrão (5).
	var consultores []consultor.Consultor
	for i := 1; i <= 6; i++ {
		pai := consultor.FormatarID(i)
		consultores = append(consultores, consultor.Consultor{ID: pai})
		for j := 0; j < i; j++ {
			filhoID := consultor.FormatarID(100 + i*10 + j)
			consultores = append(consultores, consultor.Consultor{ID: filhoID, ParentID: ptr(pai)})
		}
	}
	s := NovoServico(nil, &diretorioFake{consultores: consultores})

	entradas, err := s.TopIndicadores(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entradas, LimitePadrao)
	assert.Equal(t, 6, entradas[0].Indicacoes)
}

func TestTopIndicadoresErroDeBackend(t *testing.T) {
	s := NovoServico(nil, &diretorioFake{err: errors.New("banco fora")})

	_, err := s.TopIndicadores(context.Background(), 5)
	assert.Error(t, err)
}
