package arvore

import (
	"context"
	"errors"
	"testing"

	"github.com/RedeViva/api-portal/internal/consultor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type diretorioFake struct {
	consultores []consultor.Consultor
	falhas      int
	chamadas    int
}

func (d *diretorioFake) ListarTodos(ctx context.Context, db *gorm.DB) ([]consultor.Consultor, error) {
	d.chamadas++
	if d.chamadas <= d.falhas {
		return nil, errors.New("banco fora")
	}
	return d.consultores, nil
}

func ptr(s string) *string { return &s }

func construtor(consultores []consultor.Consultor, profundidadeMax int) (*Construtor, *diretorioFake) {
	fake := &diretorioFake{consultores: consultores}
	return NovoConstrutor(nil, fake, profundidadeMax, zap.NewNop()), fake
}

// Cadastro A sob a raiz, B sob A: a árvore da raiz tem A como único
// filho e B como único neto.
func TestConstruirCenarioCompleto(t *testing.T) {
	c, _ := construtor([]consultor.Consultor{
		{ID: consultor.RaizID, Nome: "Raiz", Papel: consultor.PapelLeader, Status: consultor.StatusAtivo},
		{ID: "000001", Nome: "Ana", Papel: consultor.PapelConsultant, Status: consultor.StatusAtivo, ParentID: ptr(consultor.RaizID), Email: "ana@rede.com"},
		{ID: "000002", Nome: "Bruno", Papel: consultor.PapelConsultant, Status: consultor.StatusPendente, ParentID: ptr("000001")},
	}, 0)

	no, err := c.Construir(context.Background(), consultor.RaizID)
	require.NoError(t, err)

	assert.Equal(t, consultor.RaizID, no.ID)
	require.Len(t, no.Filhos, 1)

	a := no.Filhos[0]
	assert.Equal(t, "000001", a.ID)
	assert.Equal(t, "Ana", a.Nome)
	assert.Equal(t, "ana@rede.com", a.Email)
	require.Len(t, a.Filhos, 1)

	b := a.Filhos[0]
	assert.Equal(t, "000002", b.ID)
	assert.Equal(t, consultor.StatusPendente, b.Status)
	assert.Empty(t, b.Filhos)
}

func TestConstruirSubarvoreDeNoIntermediario(t *testing.T) {
	c, _ := construtor([]consultor.Consultor{
		{ID: consultor.RaizID, Nome: "Raiz"},
		{ID: "000001", Nome: "Ana", ParentID: ptr(consultor.RaizID)},
		{ID: "000002", Nome: "Bruno", ParentID: ptr("000001")},
		{ID: "000003", Nome: "Carla", ParentID: ptr(consultor.RaizID)},
	}, 0)

	no, err := c.Construir(context.Background(), "000001")
	require.NoError(t, err)
	assert.Equal(t, "000001", no.ID)
	require.Len(t, no.Filhos, 1)
	assert.Equal(t, "000002", no.Filhos[0].ID)
}

func TestConstruirRaizInexistente(t *testing.T) {
	c, _ := construtor([]consultor.Consultor{{ID: consultor.RaizID}}, 0)

	no, err := c.Construir(context.Background(), "999999")
	assert.Nil(t, no)
	assert.ErrorIs(t, err, ErrConsultorNaoEncontrado)
}

// Fixture inválida de propósito: viola a invariante de aciclicidade.
// A montagem aborta com erro explícito, nunca devolve árvore parcial.
func TestConstruirComCiclo(t *testing.T) {
	c, _ := construtor([]consultor.Consultor{
		{ID: "000001", ParentID: ptr("000002")},
		{ID: "000002", ParentID: ptr("000001")},
	}, 0)

	no, err := c.Construir(context.Background(), "000001")
	assert.Nil(t, no)
	assert.ErrorIs(t, err, ErrCicloDetectado)
}

func TestConstruirProfundidadeExcedida(t *testing.T) {
	consultores := []consultor.Consultor{{ID: consultor.FormatarID(0)}}
	for i := 1; i < 10; i++ {
		pai := consultor.FormatarID(i - 1)
		consultores = append(consultores, consultor.Consultor{ID: consultor.FormatarID(i), ParentID: ptr(pai)})
	}
	c, _ := construtor(consultores, 4)

	no, err := c.Construir(context.Background(), consultor.FormatarID(0))
	assert.Nil(t, no)
	assert.ErrorIs(t, err, ErrProfundidadeExcedida)
}

// Os filhos ficam na ordem em que o diretório os devolveu.
func TestConstruirPreservaOrdemDoDiretorio(t *testing.T) {
	c, _ := construtor([]consultor.Consultor{
		{ID: consultor.RaizID},
		{ID: "000003", ParentID: ptr(consultor.RaizID)},
		{ID: "000001", ParentID: ptr(consultor.RaizID)},
		{ID: "000002", ParentID: ptr(consultor.RaizID)},
	}, 0)

	no, err := c.Construir(context.Background(), consultor.RaizID)
	require.NoError(t, err)
	require.Len(t, no.Filhos, 3)
	assert.Equal(t, "000003", no.Filhos[0].ID)
	assert.Equal(t, "000001", no.Filhos[1].ID)
	assert.Equal(t, "000002", no.Filhos[2].ID)
}

// Toda folha alcançada pela montagem chega de volta à raiz andando
// pelos parent_id em um número finito de passos.
func TestAciclicidadeDaArvoreMontada(t *testing.T) {
	consultores := []consultor.Consultor{
		{ID: consultor.RaizID},
		{ID: "000001", ParentID: ptr(consultor.RaizID)},
		{ID: "000002", ParentID: ptr(consultor.RaizID)},
		{ID: "000003", ParentID: ptr("000001")},
		{ID: "000004", ParentID: ptr("000003")},
	}
	porID := make(map[string]consultor.Consultor)
	for _, cons := range consultores {
		porID[cons.ID] = cons
	}

	c, _ := construtor(consultores, 0)
	no, err := c.Construir(context.Background(), consultor.RaizID)
	require.NoError(t, err)

	var visitar func(n *No)
	visitar = func(n *No) {
		atual := n.ID
		passos := 0
		for atual != consultor.RaizID {
			require.Less(t, passos, ProfundidadeMaxPadrao)
			pai := porID[atual].ParentID
			require.NotNil(t, pai)
			atual = *pai
			passos++
		}
		for _, f := range n.Filhos {
			visitar(f)
		}
	}
	visitar(no)
}

func TestRetentativaDeLeitura(t *testing.T) {
	c, fake := construtor([]consultor.Consultor{{ID: consultor.RaizID}}, 0)
	fake.falhas = 2

	no, err := c.Construir(context.Background(), consultor.RaizID)
	require.NoError(t, err)
	assert.Equal(t, consultor.RaizID, no.ID)
	assert.Equal(t, 3, fake.chamadas)
}

func TestRetentativaEsgotada(t *testing.T) {
	c, fake := construtor(nil, 0)
	fake.falhas = 10

	_, err := c.Construir(context.Background(), consultor.RaizID)
	assert.Error(t, err)
	assert.Equal(t, tentativasLeitura, fake.chamadas)
}

func TestConstruirRespeitaPrazo(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, fake := construtor(nil, 0)
	fake.falhas = 10

	_, err := c.Construir(ctx, consultor.RaizID)
	assert.ErrorIs(t, err, context.Canceled)
}
