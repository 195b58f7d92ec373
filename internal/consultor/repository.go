package consultor

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
)

// ErrCadeiaMuitoProfunda indica que a cadeia de pais ultrapassou o
// limite configurado — ou o diretório contém um ciclo, ou está
// corrompido. Quem chamar deve abortar a operação.
var ErrCadeiaMuitoProfunda = errors.New("cadeia de pais excede o limite de profundidade")

type Repository interface {
	Criar(ctx context.Context, db *gorm.DB, c *Consultor) error
	BuscarPorID(ctx context.Context, db *gorm.DB, id string) (*Consultor, error)
	BuscarPorAuthID(ctx context.Context, db *gorm.DB, authID string) (*Consultor, error)
	ListarTodos(ctx context.Context, db *gorm.DB) ([]Consultor, error)
	ListarPorParentID(ctx context.Context, db *gorm.DB, parentID string) ([]Consultor, error)
	ProximoID(ctx context.Context, db *gorm.DB) (string, error)
	AtualizarPerfil(ctx context.Context, db *gorm.DB, id string, novosDados *Consultor) error
	AtualizarPapelStatus(ctx context.Context, db *gorm.DB, id string, papel *Papel, status *Status) error
	AtualizarPai(ctx context.Context, db *gorm.DB, id string, parentID *string) error
	Desativar(ctx context.Context, db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

// Criar insere um consultor novo. Chave duplicada (id, email ou
// auth_id) volta como gorm.ErrDuplicatedKey — um insert nunca vira
// update silencioso sobre o registro de outro consultor.
func (r *repositoryImpl) Criar(ctx context.Context, db *gorm.DB, c *Consultor) error {
	return db.WithContext(ctx).Create(c).Error
}

func (r *repositoryImpl) BuscarPorID(ctx context.Context, db *gorm.DB, id string) (*Consultor, error) {
	var c Consultor
	err := db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repositoryImpl) BuscarPorAuthID(ctx context.Context, db *gorm.DB, authID string) (*Consultor, error) {
	var c Consultor
	err := db.WithContext(ctx).Where("auth_id = ?", authID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListarTodos retorna o diretório completo, mais recentes primeiro.
func (r *repositoryImpl) ListarTodos(ctx context.Context, db *gorm.DB) ([]Consultor, error) {
	var consultores []Consultor
	err := db.WithContext(ctx).Order("created_at DESC").Find(&consultores).Error
	return consultores, err
}

func (r *repositoryImpl) ListarPorParentID(ctx context.Context, db *gorm.DB, parentID string) ([]Consultor, error) {
	var consultores []Consultor
	err := db.WithContext(ctx).Where("parent_id = ?", parentID).Find(&consultores).Error
	return consultores, err
}

// ProximoID devolve o próximo identificador da sequência. Como os IDs
// têm largura fixa, o máximo lexicográfico é também o máximo numérico.
func (r *repositoryImpl) ProximoID(ctx context.Context, db *gorm.DB) (string, error) {
	var max string
	err := db.WithContext(ctx).Model(&Consultor{}).
		Select("COALESCE(MAX(id), '000000')").
		Scan(&max).Error
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(max)
	if err != nil {
		return "", fmt.Errorf("id fora do formato esperado: %q", max)
	}
	return FormatarID(n + 1), nil
}

// Atualiza apenas os campos de perfil que o próprio consultor controla.
func (r *repositoryImpl) AtualizarPerfil(ctx context.Context, db *gorm.DB, id string, novosDados *Consultor) error {
	var existente Consultor
	if err := db.WithContext(ctx).First(&existente, "id = ?", id).Error; err != nil {
		return err
	}

	existente.Nome = novosDados.Nome
	existente.Telefone = novosDados.Telefone
	existente.Documento = novosDados.Documento
	existente.Endereco = novosDados.Endereco
	existente.Cidade = novosDados.Cidade
	existente.UF = novosDados.UF

	return db.WithContext(ctx).Save(&existente).Error
}

func (r *repositoryImpl) AtualizarPapelStatus(ctx context.Context, db *gorm.DB, id string, papel *Papel, status *Status) error {
	var existente Consultor
	if err := db.WithContext(ctx).First(&existente, "id = ?", id).Error; err != nil {
		return err
	}
	if papel != nil {
		existente.Papel = *papel
	}
	if status != nil {
		existente.Status = *status
	}
	return db.WithContext(ctx).Save(&existente).Error
}

func (r *repositoryImpl) AtualizarPai(ctx context.Context, db *gorm.DB, id string, parentID *string) error {
	var existente Consultor
	if err := db.WithContext(ctx).First(&existente, "id = ?", id).Error; err != nil {
		return err
	}
	existente.ParentID = parentID
	return db.WithContext(ctx).Save(&existente).Error
}

// Desativar marca o consultor como Inativo. Não há exclusão física:
// os filhos mantêm o parent_id e as árvores históricas continuam
// reconstruíveis.
func (r *repositoryImpl) Desativar(ctx context.Context, db *gorm.DB, id string) error {
	var existente Consultor
	if err := db.WithContext(ctx).First(&existente, "id = ?", id).Error; err != nil {
		return err
	}
	existente.Status = StatusInativo
	return db.WithContext(ctx).Save(&existente).Error
}

// FormatarID formata o número de sequência com seis dígitos.
func FormatarID(n int) string {
	return fmt.Sprintf("%06d", n)
}

// EhAncestral caminha pela cadeia de pais de `de` e responde se
// `candidato` aparece nela. O limite de passos protege contra dados
// corrompidos com ciclo; estourar o limite é erro, não "false".
func EhAncestral(ctx context.Context, db *gorm.DB, repo Repository, candidato, de string, limite int) (bool, error) {
	atual := de
	for i := 0; i < limite; i++ {
		c, err := repo.BuscarPorID(ctx, db, atual)
		if err != nil {
			return false, err
		}
		if c.ParentID == nil {
			return false, nil
		}
		if *c.ParentID == candidato {
			return true, nil
		}
		atual = *c.ParentID
	}
	return false, ErrCadeiaMuitoProfunda
}
