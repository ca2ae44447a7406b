package ragflow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

type ListAgentsParams struct {
	PageParams
	Title string
	ID    string
}

type CreateAgentParams struct {
	Title       string          `json:"title"`
	DSL         json.RawMessage `json:"dsl"`
	Description string          `json:"description,omitempty"`
}

// UpdateAgentParams — пустые поля не отправляются.
type UpdateAgentParams struct {
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	DSL         json.RawMessage `json:"dsl,omitempty"`
}

func agentPath(agentID string) string { return "/agents/" + url.PathEscape(agentID) }

// ListAgents — GET /agents, одна страница.
func (c *Client) ListAgents(ctx context.Context, p ListAgentsParams) ([]Agent, error) {
	q := p.values()
	setIf(q, "title", p.Title)
	setIf(q, "id", p.ID)
	var out []Agent
	if err := c.do(ctx, http.MethodGet, "/agents", q, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// CreateAgent — POST /agents. RAGFlow возвращает data=true, без объекта.
func (c *Client) CreateAgent(ctx context.Context, p CreateAgentParams) error {
	return c.do(ctx, http.MethodPost, "/agents", nil, p, nil)
}

// UpdateAgent — PUT /agents/{id}.
func (c *Client) UpdateAgent(ctx context.Context, agentID string, p UpdateAgentParams) error {
	return c.do(ctx, http.MethodPut, agentPath(agentID), nil, p, nil)
}

// DeleteAgent — DELETE /agents/{id}.
func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	return c.do(ctx, http.MethodDelete, agentPath(agentID), nil, struct{}{}, nil)
}

// CreateAgentSession — POST /agents/{id}/sessions; inputs — параметры
// компонента Begin агента (могут быть пустыми).
func (c *Client) CreateAgentSession(ctx context.Context, agentID string, inputs map[string]any) (*Session, error) {
	if inputs == nil {
		inputs = map[string]any{}
	}
	var s Session
	if err := c.do(ctx, http.MethodPost, agentPath(agentID)+"/sessions", nil, inputs, &s); err != nil {
		return nil, err
	}
	if s.AgentID == "" {
		s.AgentID = agentID
	}
	return &s, nil
}

// ListAgentSessions — GET /agents/{id}/sessions, одна страница.
func (c *Client) ListAgentSessions(ctx context.Context, agentID string, p ListSessionsParams) ([]Session, error) {
	var out []Session
	if err := c.do(ctx, http.MethodGet, agentPath(agentID)+"/sessions", p.query(), nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// DeleteAgentSessions — DELETE /agents/{id}/sessions.
func (c *Client) DeleteAgentSessions(ctx context.Context, agentID string, ids []string) error {
	return c.do(ctx, http.MethodDelete, agentPath(agentID)+"/sessions", nil, idsBody{IDs: ids}, nil)
}

// AskAgent — POST /agents/{id}/completions без стриминга.
func (c *Client) AskAgent(ctx context.Context, agentID, sessionID, question string) (*Message, error) {
	return c.ask(ctx, agentPath(agentID)+"/completions", sessionID, question)
}

// StreamAgent — то же со stream=true.
func (c *Client) StreamAgent(ctx context.Context, agentID, sessionID, question string) (*MessageStream, error) {
	return c.stream(ctx, agentPath(agentID)+"/completions", sessionID, question)
}
