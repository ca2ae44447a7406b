package ragflow

import (
	"context"
	"net/http"
	"net/url"
)

type CreateChatParams struct {
	Name       string      `json:"name"`
	Avatar     string      `json:"avatar,omitempty"`
	DatasetIDs []string    `json:"dataset_ids"`
	LLM        *ChatLLM    `json:"llm,omitempty"`
	Prompt     *ChatPrompt `json:"prompt,omitempty"`
}

type ListChatsParams struct {
	PageParams
	Name string
	ID   string
}

// CreateChat — POST /chats.
func (c *Client) CreateChat(ctx context.Context, p CreateChatParams) (*Chat, error) {
	if p.DatasetIDs == nil {
		p.DatasetIDs = []string{}
	}
	var chat Chat
	if err := c.do(ctx, http.MethodPost, "/chats", nil, p, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListChats — GET /chats, одна страница.
func (c *Client) ListChats(ctx context.Context, p ListChatsParams) ([]Chat, error) {
	q := p.values()
	setIf(q, "name", p.Name)
	setIf(q, "id", p.ID)
	var out []Chat
	if err := c.do(ctx, http.MethodGet, "/chats", q, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// DeleteChats — DELETE /chats.
func (c *Client) DeleteChats(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodDelete, "/chats", nil, idsBody{IDs: ids}, nil)
}

func chatPath(chatID string) string { return "/chats/" + url.PathEscape(chatID) }

type ListSessionsParams struct {
	PageParams
	Name string
	ID   string
}

func (p ListSessionsParams) query() url.Values {
	q := p.values()
	setIf(q, "name", p.Name)
	setIf(q, "id", p.ID)
	return q
}

// CreateChatSession — POST /chats/{id}/sessions.
func (c *Client) CreateChatSession(ctx context.Context, chatID, name string) (*Session, error) {
	body := map[string]string{"name": name}
	var s Session
	if err := c.do(ctx, http.MethodPost, chatPath(chatID)+"/sessions", nil, body, &s); err != nil {
		return nil, err
	}
	if s.ChatID == "" {
		s.ChatID = chatID
	}
	return &s, nil
}

// ListChatSessions — GET /chats/{id}/sessions, одна страница.
func (c *Client) ListChatSessions(ctx context.Context, chatID string, p ListSessionsParams) ([]Session, error) {
	var out []Session
	if err := c.do(ctx, http.MethodGet, chatPath(chatID)+"/sessions", p.query(), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// DeleteChatSessions — DELETE /chats/{id}/sessions.
func (c *Client) DeleteChatSessions(ctx context.Context, chatID string, ids []string) error {
	return c.do(ctx, http.MethodDelete, chatPath(chatID)+"/sessions", nil, idsBody{IDs: ids}, nil)
}

// AskChat — POST /chats/{id}/completions без стриминга, итоговый ответ.
func (c *Client) AskChat(ctx context.Context, chatID, sessionID, question string) (*Message, error) {
	return c.ask(ctx, chatPath(chatID)+"/completions", sessionID, question)
}

// StreamChat — то же со stream=true; сообщения читаются лениво.
func (c *Client) StreamChat(ctx context.Context, chatID, sessionID, question string) (*MessageStream, error) {
	return c.stream(ctx, chatPath(chatID)+"/completions", sessionID, question)
}
