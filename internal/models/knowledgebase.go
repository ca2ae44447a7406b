package models

import "gorm.io/datatypes"

// Knowledgebase — датасет тенанта (таблица knowledgebase). Читается только
// для сводки в деталях пользователя.
type Knowledgebase struct {
	ID           string         `gorm:"column:id;primaryKey;size:32" json:"id"`
	TenantID     string         `gorm:"column:tenant_id;size:32;not null;index" json:"tenant_id"`
	Name         string         `gorm:"column:name;size:128;not null;index" json:"name"`
	EmbdID       string         `gorm:"column:embd_id;size:128;not null;index" json:"embd_id"`
	Permission   string         `gorm:"column:permission;size:16;not null;default:me;index" json:"permission"`
	CreatedBy    string         `gorm:"column:created_by;size:32;not null;index" json:"created_by"`
	DocNum       int            `gorm:"column:doc_num;default:0;index" json:"doc_num"`
	ChunkNum     int            `gorm:"column:chunk_num;default:0;index" json:"chunk_num"`
	ParserID     string         `gorm:"column:parser_id;size:32;not null;default:naive;index" json:"parser_id"`
	ParserConfig datatypes.JSON `gorm:"column:parser_config" json:"parser_config,omitempty"`
	Status       string         `gorm:"column:status;size:1;default:1;index" json:"status"`
	Base
}

// TableName instructs GORM on the table name to use
func (Knowledgebase) TableName() string { return "knowledgebase" }

// UserCanvas — агент (таблица user_canvas), dsl хранится как JSON.
type UserCanvas struct {
	ID          string         `gorm:"column:id;primaryKey;size:32" json:"id"`
	UserID      string         `gorm:"column:user_id;size:255;not null;index" json:"user_id"`
	Title       string         `gorm:"column:title;size:255" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Permission  string         `gorm:"column:permission;size:16;not null;default:me;index" json:"permission"`
	CanvasType  string         `gorm:"column:canvas_type;size:32;index" json:"canvas_type,omitempty"`
	DSL         datatypes.JSON `gorm:"column:dsl" json:"dsl,omitempty"`
	Base
}

// TableName instructs GORM on the table name to use
func (UserCanvas) TableName() string { return "user_canvas" }

// All — модели, которые утилита читает или удаляет. Используется тестами
// для AutoMigrate на пустой БД.
func All() []any {
	return []any{
		&User{},
		&Tenant{},
		&UserTenant{},
		&TenantLLM{},
		&Knowledgebase{},
		&UserCanvas{},
	}
}
