package admin

import "time"

// CodigoBreakGlass é o segundo fator das operações administrativas
// sensíveis: um código de uso único, com prazo curto, guardado apenas
// como hash bcrypt. O texto puro aparece uma única vez, na emissão.
type CodigoBreakGlass struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ConsultorID string     `gorm:"index" json:"consultant_id"`
	Hash        string     `json:"-"`
	ExpiraEm    time.Time  `gorm:"index" json:"expires_at"`
	UsadoEm     *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RegistroAuditoria é a trilha imutável das invocações break-glass:
// só recebe inserções, nunca update ou delete.
type RegistroAuditoria struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Ator       string    `gorm:"index" json:"actor"`
	Operacao   string    `json:"operation"`
	Parametros string    `json:"parameters"`
	Antes      string    `json:"before,omitempty"`
	Depois     string    `json:"after,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
