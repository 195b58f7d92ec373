package guarda

import (
	"testing"

	"github.com/RedeViva/api-portal/internal/consultor"
	"github.com/stretchr/testify/assert"
)

func TestDecidirTabelaCompleta(t *testing.T) {
	casos := []struct {
		nome        string
		papel       consultor.Papel
		autenticado bool
		caminho     string
		esperado    Decisao
	}{
		// Regra 3: anônimo vai para o login da zona, preservando o destino
		{"anonimo zona admin", "", false, "/admin/relatorios",
			Redirecionar("/admin/login?next=%2Fadmin%2Frelatorios")},
		{"anonimo zona consultor", "", false, "/portal/pedidos",
			Redirecionar("/login?next=%2Fportal%2Fpedidos")},
		{"anonimo zona publica", "", false, "/", Permitir()},
		{"anonimo pagina de login", "", false, "/login", Permitir()},
		{"anonimo login admin", "", false, "/admin/login", Permitir()},

		// Regra 1: separação estrita de zonas
		{"admin na propria zona", consultor.PapelAdmin, true, "/admin/dashboard", Permitir()},
		{"admin na zona do consultor", consultor.PapelAdmin, true, "/portal/pedidos",
			Redirecionar(PaginaInicialAdmin)},
		{"admin em rota de lider", consultor.PapelAdmin, true, "/portal/equipe",
			Redirecionar(PaginaInicialAdmin)},
		{"leader na zona admin", consultor.PapelLeader, true, "/admin/relatorios",
			Redirecionar(PaginaInicialPortal)},
		{"consultant na zona admin", consultor.PapelConsultant, true, "/admin/relatorios",
			Redirecionar(PaginaInicialPortal)},

		// Regra 2: allow-list dentro da zona certa
		{"leader no portal", consultor.PapelLeader, true, "/portal/pedidos", Permitir()},
		{"leader na area de equipe", consultor.PapelLeader, true, "/portal/equipe", Permitir()},
		{"consultant no portal", consultor.PapelConsultant, true, "/portal/pedidos", Permitir()},
		{"consultant na area de equipe", consultor.PapelConsultant, true, "/portal/equipe/metas",
			Redirecionar(PaginaInicialPortal)},

		// Zona pública sempre passa, autenticado ou não
		{"admin em rota publica", consultor.PapelAdmin, true, "/materiais", Permitir()},
		{"consultant em rota publica", consultor.PapelConsultant, true, "/", Permitir()},
	}

	for _, c := range casos {
		t.Run(c.nome, func(t *testing.T) {
			assert.Equal(t, c.esperado, Decidir(c.papel, c.autenticado, c.caminho))
		})
	}
}

// Admin nunca é barrado por uma allow-list que inclua leader; o
// inverso não vale.
func TestHerancaAdminSobreLeader(t *testing.T) {
	listaLider := []consultor.Papel{consultor.PapelLeader}

	assert.True(t, consultor.PapelPermitido(consultor.PapelAdmin, listaLider))
	assert.True(t, consultor.PapelPermitido(consultor.PapelLeader, listaLider))
	assert.False(t, consultor.PapelPermitido(consultor.PapelConsultant, listaLider))

	listaAdmin := []consultor.Papel{consultor.PapelAdmin}
	assert.False(t, consultor.PapelPermitido(consultor.PapelLeader, listaAdmin))
	assert.False(t, consultor.PapelPermitido(consultor.PapelConsultant, listaAdmin))
}

func TestZonaDoCaminho(t *testing.T) {
	assert.Equal(t, ZonaAdmin, ZonaDoCaminho("/admin/usuarios"))
	assert.Equal(t, ZonaConsultor, ZonaDoCaminho("/portal"))
	assert.Equal(t, ZonaPublica, ZonaDoCaminho("/materiais"))
	assert.Equal(t, ZonaPublica, ZonaDoCaminho("/login"))
	// Prefixo parecido não vaza para a zona: /administracao é público
	assert.Equal(t, ZonaPublica, ZonaDoCaminho("/administracao"))
}
