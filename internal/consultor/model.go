package consultor

import "time"

// Papel define o nível de acesso de um consultor no portal.
type Papel string

const (
	PapelAdmin      Papel = "admin"
	PapelLeader     Papel = "leader"
	PapelConsultant Papel = "consultant"
)

// Status de cadastro.
type Status string

const (
	StatusAtivo    Status = "Ativo"
	StatusInativo  Status = "Inativo"
	StatusPendente Status = "Pendente"
)

// RaizID é o identificador do consultor raiz da rede de indicações.
const RaizID = "000000"

// Consultor é o registro central do diretório. O ID é uma sequência de
// seis dígitos com zeros à esquerda; AuthID é o vínculo 1:1 com o
// provedor de identidade externo. ParentID aponta para quem indicou —
// nulo apenas para a raiz e para contas administrativas, que ficam
// fora da árvore de comissão.
type Consultor struct {
	ID        string    `json:"id" gorm:"primaryKey;size:6"`
	AuthID    string    `json:"auth_id" gorm:"column:auth_id;uniqueIndex"`
	Nome      string    `json:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex"`
	Telefone  string    `json:"phone"`
	Documento string    `json:"document,omitempty"`
	Endereco  string    `json:"address,omitempty"`
	Cidade    string    `json:"city,omitempty"`
	UF        string    `json:"state,omitempty"`
	Papel     Papel     `json:"role" gorm:"column:role;index"`
	ParentID  *string   `json:"parent_id,omitempty" gorm:"column:parent_id;index"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// PapelValido aceita apenas os papéis conhecidos do portal.
func PapelValido(p Papel) bool {
	return p == PapelAdmin || p == PapelLeader || p == PapelConsultant
}

func StatusValido(s Status) bool {
	return s == StatusAtivo || s == StatusInativo || s == StatusPendente
}
