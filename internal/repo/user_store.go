package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ragflowctl/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore читает учётные записи RAGFlow напрямую из его БД.
type UserStore struct{ db *gorm.DB }

func NewUserStore(db *gorm.DB) *UserStore { return &UserStore{db: db} }

// UserDetails — сводка по пользователю. Tenant и Membership могут
// отсутствовать (nil), если строки уже удалены или не создавались.
type UserDetails struct {
	User         models.User
	Tenant       *models.Tenant
	Membership   *models.UserTenant
	LLMCount     int64
	DatasetCount int64
	AgentCount   int64
}

// List — все пользователи; пустая таблица → пустой срез.
func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := s.db.WithContext(ctx).Order("create_time").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *UserStore) Details(ctx context.Context, id string) (*UserDetails, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	tx := s.db.WithContext(ctx)
	tenantID := models.TenantIDForUser(id)
	d := &UserDetails{User: *u}

	// -------- тенант и членство (необязательные) --------
	var t models.Tenant
	err = tx.Where("id = ?", tenantID).First(&t).Error
	switch {
	case err == nil:
		d.Tenant = &t
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	m, err := s.membership(tx, id, tenantID)
	if err != nil {
		return nil, err
	}
	d.Membership = m

	// -------- счётчики --------
	if err := tx.Model(&models.TenantLLM{}).Where("tenant_id = ?", tenantID).Count(&d.LLMCount).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.Knowledgebase{}).Where("tenant_id = ?", tenantID).Count(&d.DatasetCount).Error; err != nil {
		return nil, err
	}
	if err := tx.Model(&models.UserCanvas{}).Where("user_id = ?", id).Count(&d.AgentCount).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// membership: сначала членство в собственном тенанте, иначе любое другое.
func (s *UserStore) membership(tx *gorm.DB, id, tenantID string) (*models.UserTenant, error) {
	var m models.UserTenant
	err := tx.Where("user_id = ? AND tenant_id = ?", id, tenantID).First(&m).Error
	if err == nil {
		return &m, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	err = tx.Where("user_id = ?", id).Order("create_time").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists — остались ли строки пользователя и его тенанта.
func (s *UserStore) Exists(ctx context.Context, id string) (user, tenant bool, err error) {
	tx := s.db.WithContext(ctx)
	var n int64
	if err = tx.Model(&models.User{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, false, err
	}
	user = n > 0
	if err = tx.Model(&models.Tenant{}).Where("id = ?", models.TenantIDForUser(id)).Count(&n).Error; err != nil {
		return false, false, err
	}
	tenant = n > 0
	return user, tenant, nil
}
