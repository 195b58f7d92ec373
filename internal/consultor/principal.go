package consultor

import "net/http"

// Principal é a identidade resolvida da requisição corrente: o vínculo
// com o provedor de identidade e, quando existe cadastro, o perfil do
// diretório. Nunca é persistido — cada requisição protegida resolve o
// seu do zero, a partir de um token verificado no servidor.
type Principal struct {
	AuthID    string
	Consultor *Consultor
	Papel     Papel
}

type ctxKey string

// PrincipalKey é a chave de contexto usada pelo middleware de
// autenticação para carregar o principal até o handler.
const PrincipalKey ctxKey = "principal"

// PrincipalDoContexto devolve o principal resolvido pelo middleware,
// ou nil quando a rota não passou por ele.
func PrincipalDoContexto(r *http.Request) *Principal {
	p, _ := r.Context().Value(PrincipalKey).(*Principal)
	return p
}

// PapelPermitido responde se o papel satisfaz a allow-list. Admin
// herda as permissões de leader, nunca o contrário.
func PapelPermitido(p Papel, lista []Papel) bool {
	for _, permitido := range lista {
		if p == permitido {
			return true
		}
		if permitido == PapelLeader && p == PapelAdmin {
			return true
		}
	}
	return false
}
