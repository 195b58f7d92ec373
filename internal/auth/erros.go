package auth

import "errors"

// Taxonomia de falhas de autenticação. Os handlers mapeiam cada uma
// para o status HTTP da tabela da API; nenhuma delas é retentável.
var (
	ErrTokenAusente        = errors.New("token ausente")
	ErrTokenMalformado     = errors.New("token malformado")
	ErrTokenInvalido       = errors.New("token inválido")
	ErrPerfilNaoEncontrado = errors.New("perfil não encontrado")
)
