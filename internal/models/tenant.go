package models

// TenantIDForUser возвращает id тенанта, принадлежащего пользователю.
//
// При регистрации RAGFlow создаёт тенанта с тем же id, что и у пользователя
// (user_app.user_register: tenant["id"] = user_id), и роль owner в user_tenant.
// Утилита опирается на это соответствие при удалении и в результате
// регистрации, поэтому оно собрано в одном месте.
func TenantIDForUser(userID string) string { return userID }

// Роли в user_tenant.
const (
	RoleOwner  = "owner"
	RoleNormal = "normal"
)

// Tenant — организационная единица (таблица tenant).
type Tenant struct {
	ID        string `gorm:"column:id;primaryKey;size:32" json:"id"`
	Name      string `gorm:"column:name;size:100;index" json:"name"`
	PublicKey string `gorm:"column:public_key;size:255;index" json:"public_key,omitempty"`
	LLMID     string `gorm:"column:llm_id;size:128;not null;index" json:"llm_id"`
	EmbdID    string `gorm:"column:embd_id;size:128;not null;index" json:"embd_id"`
	ASRID     string `gorm:"column:asr_id;size:128;not null;index" json:"asr_id"`
	Img2TxtID string `gorm:"column:img2txt_id;size:128;not null;index" json:"img2txt_id"`
	RerankID  string `gorm:"column:rerank_id;size:128;not null;index" json:"rerank_id"`
	TTSID     string `gorm:"column:tts_id;size:256;index" json:"tts_id,omitempty"`
	ParserIDs string `gorm:"column:parser_ids;size:256;not null;index" json:"parser_ids"`
	Credit    int    `gorm:"column:credit;default:512;index" json:"credit"`
	Status    string `gorm:"column:status;size:1;default:1;index" json:"status"`
	Base
}

// TableName instructs GORM on the table name to use
func (Tenant) TableName() string { return "tenant" }

// UserTenant — членство пользователя в тенанте (таблица user_tenant).
type UserTenant struct {
	ID        string `gorm:"column:id;primaryKey;size:32" json:"id"`
	UserID    string `gorm:"column:user_id;size:32;not null;index" json:"user_id"`
	TenantID  string `gorm:"column:tenant_id;size:32;not null;index" json:"tenant_id"`
	Role      string `gorm:"column:role;size:32;not null;index" json:"role"`
	InvitedBy string `gorm:"column:invited_by;size:32;not null;index" json:"invited_by"`
	Status    string `gorm:"column:status;size:1;default:1;index" json:"status"`
	Base
}

// TableName instructs GORM on the table name to use
func (UserTenant) TableName() string { return "user_tenant" }

// TenantLLM — настройка модели тенанта (таблица tenant_llm).
type TenantLLM struct {
	TenantID   string `gorm:"column:tenant_id;primaryKey;size:32" json:"tenant_id"`
	LLMFactory string `gorm:"column:llm_factory;primaryKey;size:128" json:"llm_factory"`
	ModelType  string `gorm:"column:model_type;size:128;index" json:"model_type"`
	LLMName    string `gorm:"column:llm_name;primaryKey;size:128;default:''" json:"llm_name"`
	APIKey     string `gorm:"column:api_key;size:2048" json:"-"`
	APIBase    string `gorm:"column:api_base;size:255" json:"api_base,omitempty"`
	MaxTokens  int    `gorm:"column:max_tokens;default:8192;index" json:"max_tokens"`
	UsedTokens int    `gorm:"column:used_tokens;default:0;index" json:"used_tokens"`
	Base
}

// TableName instructs GORM on the table name to use
func (TenantLLM) TableName() string { return "tenant_llm" }
