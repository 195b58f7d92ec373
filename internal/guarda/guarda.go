// Package guarda decide acesso por papel e zona de rota. É pura por
// contrato: só olha o papel resolvido pelo servidor e o caminho
// pedido, não faz I/O e não consulta estado algum do cliente —
// nenhuma flag local pode fabricar privilégio aqui.
package guarda

import (
	"net/url"
	"strings"

	"github.com/RedeViva/api-portal/internal/consultor"
)

// Zona particiona as rotas por público-alvo.
type Zona string

const (
	ZonaAdmin     Zona = "admin"
	ZonaConsultor Zona = "consultant"
	ZonaPublica   Zona = "public"
)

// Páginas de entrada de cada zona.
const (
	PaginaInicialAdmin  = "/admin/dashboard"
	PaginaInicialPortal = "/portal/inicio"
	LoginAdmin          = "/admin/login"
	LoginPortal         = "/login"
)

// Decisao é o resultado da guarda: ou a navegação segue, ou o cliente
// é redirecionado. Nunca um "forbidden" explícito — falha de
// autorização manda o usuário para a página inicial da própria zona.
type Decisao struct {
	Permitido        bool   `json:"allowed"`
	RedirecionarPara string `json:"redirect_to,omitempty"`
}

func Permitir() Decisao                  { return Decisao{Permitido: true} }
func Redirecionar(destino string) Decisao { return Decisao{RedirecionarPara: destino} }

type rota struct {
	prefixo string
	zona    Zona
	papeis  []consultor.Papel
}

// Tabela de rotas protegidas, do prefixo mais específico para o mais
// genérico. Caminhos fora da tabela são públicos.
var tabelaRotas = []rota{
	{"/admin/login", ZonaPublica, nil},
	{"/login", ZonaPublica, nil},
	{"/admin", ZonaAdmin, []consultor.Papel{consultor.PapelAdmin}},
	{"/portal/equipe", ZonaConsultor, []consultor.Papel{consultor.PapelLeader}},
	{"/portal", ZonaConsultor, []consultor.Papel{consultor.PapelLeader, consultor.PapelConsultant}},
}

func rotaDoCaminho(caminho string) (rota, bool) {
	for _, r := range tabelaRotas {
		if caminho == r.prefixo || strings.HasPrefix(caminho, r.prefixo+"/") {
			return r, true
		}
	}
	return rota{}, false
}

// ZonaDoCaminho classifica um caminho na sua zona.
func ZonaDoCaminho(caminho string) Zona {
	if r, ok := rotaDoCaminho(caminho); ok {
		return r.zona
	}
	return ZonaPublica
}

// Decidir aplica as três regras da guarda, nesta ordem:
//
//  1. separação estrita de zonas — admin nunca vê a UI do consultor e
//     vice-versa; quem está na zona errada volta para a inicial da sua;
//  2. allow-list da rota — papel fora da lista, mas na zona certa, vai
//     para a página inicial da zona; admin satisfaz listas com leader;
//  3. anônimo — redireciona para o login da zona, preservando o
//     destino pedido para o pós-login.
//
// papel é ignorado quando autenticado é false.
func Decidir(papel consultor.Papel, autenticado bool, caminho string) Decisao {
	r, ok := rotaDoCaminho(caminho)
	if !ok || r.zona == ZonaPublica {
		return Permitir()
	}

	if !autenticado {
		return Redirecionar(loginDaZona(r.zona) + "?next=" + url.QueryEscape(caminho))
	}

	if papel == consultor.PapelAdmin && r.zona == ZonaConsultor {
		return Redirecionar(PaginaInicialAdmin)
	}
	if papel != consultor.PapelAdmin && r.zona == ZonaAdmin {
		return Redirecionar(PaginaInicialPortal)
	}

	if consultor.PapelPermitido(papel, r.papeis) {
		return Permitir()
	}
	return Redirecionar(paginaInicialDaZona(r.zona))
}

func loginDaZona(z Zona) string {
	if z == ZonaAdmin {
		return LoginAdmin
	}
	return LoginPortal
}

func paginaInicialDaZona(z Zona) string {
	if z == ZonaAdmin {
		return PaginaInicialAdmin
	}
	return PaginaInicialPortal
}
