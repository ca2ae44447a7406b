package ragflow

import "encoding/json"

type Dataset struct {
	ID                     string         `json:"id"`
	Name                   string         `json:"name"`
	Avatar                 string         `json:"avatar,omitempty"`
	Description            string         `json:"description,omitempty"`
	Language               string         `json:"language,omitempty"`
	EmbeddingModel         string         `json:"embedding_model,omitempty"`
	Permission             string         `json:"permission,omitempty"`
	ChunkMethod            string         `json:"chunk_method,omitempty"`
	ParserConfig           map[string]any `json:"parser_config,omitempty"`
	ChunkCount             int            `json:"chunk_count"`
	DocumentCount          int            `json:"document_count"`
	TokenNum               int            `json:"token_num,omitempty"`
	SimilarityThreshold    float64        `json:"similarity_threshold,omitempty"`
	VectorSimilarityWeight float64        `json:"vector_similarity_weight,omitempty"`
	Pagerank               int            `json:"pagerank,omitempty"`
	TenantID               string         `json:"tenant_id,omitempty"`
	CreatedBy              string         `json:"created_by,omitempty"`
	Status                 string         `json:"status,omitempty"`
	CreateTime             int64          `json:"create_time,omitempty"`
	UpdateTime             int64          `json:"update_time,omitempty"`
}

type Document struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	DatasetID    string         `json:"dataset_id"`
	ChunkMethod  string         `json:"chunk_method,omitempty"`
	ParserConfig map[string]any `json:"parser_config,omitempty"`
	Type         string         `json:"type,omitempty"`
	Size         int64          `json:"size"`
	Location     string         `json:"location,omitempty"`
	ChunkCount   int            `json:"chunk_count"`
	TokenCount   int            `json:"token_count"`
	Run          string         `json:"run,omitempty"`
	Progress     float64        `json:"progress"`
	ProgressMsg  string         `json:"progress_msg,omitempty"`
	MetaFields   map[string]any `json:"meta_fields,omitempty"`
	Status       string         `json:"status,omitempty"`
	CreatedBy    string         `json:"created_by,omitempty"`
	CreateTime   int64          `json:"create_time,omitempty"`
	UpdateTime   int64          `json:"update_time,omitempty"`
}

type Chunk struct {
	ID                string   `json:"id"`
	Content           string   `json:"content"`
	DocumentID        string   `json:"document_id"`
	DatasetID         string   `json:"dataset_id,omitempty"`
	DocumentKeyword   string   `json:"document_keyword,omitempty"`
	ImportantKeywords []string `json:"important_keywords,omitempty"`
	Questions         []string `json:"questions,omitempty"`
	Available         *bool    `json:"available,omitempty"`
	Similarity        float64  `json:"similarity,omitempty"`
	VectorSimilarity  float64  `json:"vector_similarity,omitempty"`
	TermSimilarity    float64  `json:"term_similarity,omitempty"`
	Positions         [][]int  `json:"positions,omitempty"`
	CreateTime        string   `json:"create_time,omitempty"`
}

// ChatLLM — настройки модели чат-ассистента.
type ChatLLM struct {
	ModelName        string   `json:"model_name,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	MaxTokens        *int     `json:"max_tokens,omitempty"`
}

type PromptVariable struct {
	Key      string `json:"key"`
	Optional bool   `json:"optional"`
}

// ChatPrompt — настройки поиска и промпта чат-ассистента.
type ChatPrompt struct {
	SimilarityThreshold      *float64         `json:"similarity_threshold,omitempty"`
	KeywordsSimilarityWeight *float64         `json:"keywords_similarity_weight,omitempty"`
	TopN                     *int             `json:"top_n,omitempty"`
	TopK                     *int             `json:"top_k,omitempty"`
	Variables                []PromptVariable `json:"variables,omitempty"`
	RerankModel              string           `json:"rerank_model,omitempty"`
	EmptyResponse            string           `json:"empty_response,omitempty"`
	Opener                   string           `json:"opener,omitempty"`
	ShowQuote                *bool            `json:"show_quote,omitempty"`
	Prompt                   string           `json:"prompt,omitempty"`
}

type Chat struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Avatar     string      `json:"avatar,omitempty"`
	DatasetIDs []string    `json:"dataset_ids,omitempty"`
	LLM        *ChatLLM    `json:"llm,omitempty"`
	Prompt     *ChatPrompt `json:"prompt,omitempty"`
	TenantID   string      `json:"tenant_id,omitempty"`
	Status     string      `json:"status,omitempty"`
	CreateTime int64       `json:"create_time,omitempty"`
	UpdateTime int64       `json:"update_time,omitempty"`
}

type SessionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session — сессия чат-ассистента или агента.
type Session struct {
	ID         string           `json:"id"`
	Name       string           `json:"name,omitempty"`
	ChatID     string           `json:"chat_id,omitempty"`
	AgentID    string           `json:"agent_id,omitempty"`
	UserID     string           `json:"user_id,omitempty"`
	Messages   []SessionMessage `json:"messages,omitempty"`
	CreateTime int64            `json:"create_time,omitempty"`
	UpdateTime int64            `json:"update_time,omitempty"`
}

type Agent struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Avatar      string          `json:"avatar,omitempty"`
	DSL         json.RawMessage `json:"dsl,omitempty"`
	UserID      string          `json:"user_id,omitempty"`
	CreateTime  int64           `json:"create_time,omitempty"`
	UpdateTime  int64           `json:"update_time,omitempty"`
}

// Message — ответ ассистента. В потоке Content накопительный:
// каждое следующее сообщение содержит весь ответ на текущий момент.
type Message struct {
	ID        string          `json:"id,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"answer"`
	Reference json.RawMessage `json:"reference,omitempty"`
}
