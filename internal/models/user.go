package models

import "time"

// Схема принадлежит RAGFlow (api/db/db_models.py). Здесь только отображение
// таблиц, миграциями управляет сам RAGFlow.

// Значения поля status у RAGFlow.
const (
	StatusValid   = "1"
	StatusInvalid = "0"
)

// Base — общие колонки BaseModel: *_time в миллисекундах, *_date — datetime.
type Base struct {
	CreateTime *int64     `gorm:"column:create_time;index" json:"create_time,omitempty"`
	CreateDate *time.Time `gorm:"column:create_date;index" json:"create_date,omitempty"`
	UpdateTime *int64     `gorm:"column:update_time;index" json:"update_time,omitempty"`
	UpdateDate *time.Time `gorm:"column:update_date;index" json:"update_date,omitempty"`
}

// User — учётная запись (таблица user).
type User struct {
	ID              string     `gorm:"column:id;primaryKey;size:32" json:"id"`
	AccessToken     string     `gorm:"column:access_token;size:255;index" json:"access_token,omitempty"`
	Nickname        string     `gorm:"column:nickname;size:100;not null;index" json:"nickname"`
	Password        string     `gorm:"column:password;size:255" json:"-"`
	Email           string     `gorm:"column:email;size:255;not null;index" json:"email"`
	Avatar          string     `gorm:"column:avatar;type:text" json:"avatar,omitempty"`
	Language        string     `gorm:"column:language;size:32" json:"language,omitempty"`
	ColorSchema     string     `gorm:"column:color_schema;size:32" json:"color_schema,omitempty"`
	Timezone        string     `gorm:"column:timezone;size:64" json:"timezone,omitempty"`
	LastLoginTime   *time.Time `gorm:"column:last_login_time;index" json:"last_login_time,omitempty"`
	IsAuthenticated string     `gorm:"column:is_authenticated;size:1;default:1" json:"is_authenticated"`
	IsActive        string     `gorm:"column:is_active;size:1;default:1" json:"is_active"`
	IsAnonymous     string     `gorm:"column:is_anonymous;size:1;default:0" json:"is_anonymous"`
	LoginChannel    string     `gorm:"column:login_channel;size:255;index" json:"login_channel"`
	Status          string     `gorm:"column:status;size:1;default:1;index" json:"status"`
	IsSuperuser     *bool      `gorm:"column:is_superuser;index" json:"is_superuser"`
	Base
}

// TableName instructs GORM on the table name to use
func (User) TableName() string { return "user" }

func (u User) Valid() bool { return u.Status == StatusValid }

func (u User) Superuser() bool { return u.IsSuperuser != nil && *u.IsSuperuser }
