package admin

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	SalvarCodigo(ctx context.Context, db *gorm.DB, c *CodigoBreakGlass) error
	ListarCodigosAtivos(ctx context.Context, db *gorm.DB, consultorID string) ([]CodigoBreakGlass, error)
	MarcarUsado(ctx context.Context, db *gorm.DB, id uint) error
	SalvarRegistro(ctx context.Context, db *gorm.DB, reg *RegistroAuditoria) error
	ListarRegistros(ctx context.Context, db *gorm.DB, limite int) ([]RegistroAuditoria, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) SalvarCodigo(ctx context.Context, db *gorm.DB, c *CodigoBreakGlass) error {
	return db.WithContext(ctx).Create(c).Error
}

// ListarCodigosAtivos retorna os códigos ainda não usados e não
// expirados do consultor. O bcrypt é salgado, então não dá para buscar
// pelo hash — quem chamou compara um a um.
func (r *repositoryImpl) ListarCodigosAtivos(ctx context.Context, db *gorm.DB, consultorID string) ([]CodigoBreakGlass, error) {
	var codigos []CodigoBreakGlass
	err := db.WithContext(ctx).
		Where("consultor_id = ? AND usado_em IS NULL AND expira_em > ?", consultorID, time.Now()).
		Find(&codigos).Error
	return codigos, err
}

func (r *repositoryImpl) MarcarUsado(ctx context.Context, db *gorm.DB, id uint) error {
	now := time.Now()
	return db.WithContext(ctx).Model(&CodigoBreakGlass{}).
		Where("id = ?", id).
		Update("usado_em", &now).Error
}

func (r *repositoryImpl) SalvarRegistro(ctx context.Context, db *gorm.DB, reg *RegistroAuditoria) error {
	return db.WithContext(ctx).Create(reg).Error
}

func (r *repositoryImpl) ListarRegistros(ctx context.Context, db *gorm.DB, limite int) ([]RegistroAuditoria, error) {
	var registros []RegistroAuditoria
	err := db.WithContext(ctx).Order("created_at DESC").Limit(limite).Find(&registros).Error
	return registros, err
}
