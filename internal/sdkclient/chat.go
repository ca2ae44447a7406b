package sdkclient

import (
	"context"

	"github.com/sirupsen/logrus"

	"ragflowctl/internal/ragflow"
)

// DefaultLLM — модель чат-ассистента по умолчанию.
func DefaultLLM() *ragflow.ChatLLM {
	temperature, topP := 0.1, 0.3
	return &ragflow.ChatLLM{ModelName: DefaultChatModel, Temperature: &temperature, TopP: &topP}
}

// DefaultPrompt — параметры поиска чат-ассистента по умолчанию.
func DefaultPrompt() *ragflow.ChatPrompt {
	similarity, keywords, topN := 0.2, 0.7, 8
	return &ragflow.ChatPrompt{
		SimilarityThreshold:      &similarity,
		KeywordsSimilarityWeight: &keywords,
		TopN:                     &topN,
		Opener:                   DefaultOpener,
	}
}

/* ---------- чат-ассистенты ---------- */

func (c *Client) CreateChatAssistant(ctx context.Context, p ragflow.CreateChatParams) (*ragflow.Chat, error) {
	if p.LLM == nil {
		p.LLM = DefaultLLM()
	}
	if p.Prompt == nil {
		p.Prompt = DefaultPrompt()
	}
	chat, err := c.api.CreateChat(ctx, p)
	if err := c.result("create chat assistant", logrus.Fields{"name": p.Name}, err); err != nil {
		return nil, err
	}
	return chat, nil
}

func (c *Client) ListChatAssistants(ctx context.Context, p ragflow.ListChatsParams) ([]ragflow.Chat, error) {
	p.PageParams = withPage(p.PageParams)
	list, err := c.api.ListChats(ctx, p)
	if err := c.result("list chat assistants", logrus.Fields{"count": len(list)}, err); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) DeleteChatAssistants(ctx context.Context, ids []string) error {
	return c.result("delete chat assistants", logrus.Fields{"ids": ids}, c.api.DeleteChats(ctx, ids))
}

/* ---------- сессии ассистента ---------- */

func (c *Client) CreateSession(ctx context.Context, chatID, name string) (*ragflow.Session, error) {
	if name == "" {
		name = DefaultSessionName
	}
	s, err := c.api.CreateChatSession(ctx, chatID, name)
	if err := c.result("create session", logrus.Fields{"chat": chatID, "name": name}, err); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) ListSessions(ctx context.Context, chatID string, p ragflow.ListSessionsParams) ([]ragflow.Session, error) {
	p.PageParams = withPage(p.PageParams)
	list, err := c.api.ListChatSessions(ctx, chatID, p)
	if err := c.result("list sessions", logrus.Fields{"chat": chatID, "count": len(list)}, err); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) DeleteSessions(ctx context.Context, chatID string, ids []string) error {
	err := c.api.DeleteChatSessions(ctx, chatID, ids)
	return c.result("delete sessions", logrus.Fields{"chat": chatID, "ids": ids}, err)
}

// AskAssistant — итоговый ответ целиком.
func (c *Client) AskAssistant(ctx context.Context, chatID, sessionID, question string) (*ragflow.Message, error) {
	m, err := c.api.AskChat(ctx, chatID, sessionID, question)
	if err := c.result("chat", logrus.Fields{"chat": chatID, "session": sessionID}, err); err != nil {
		return nil, err
	}
	return m, nil
}

// StreamAssistant — поток накопительных ответов; закрывает вызывающий.
func (c *Client) StreamAssistant(ctx context.Context, chatID, sessionID, question string) (*ragflow.MessageStream, error) {
	s, err := c.api.StreamChat(ctx, chatID, sessionID, question)
	if err := c.result("stream chat", logrus.Fields{"chat": chatID, "session": sessionID}, err); err != nil {
		return nil, err
	}
	return s, nil
}

/* ---------- агенты ---------- */

func (c *Client) ListAgents(ctx context.Context, p ragflow.ListAgentsParams) ([]ragflow.Agent, error) {
	p.PageParams = withPage(p.PageParams)
	list, err := c.api.ListAgents(ctx, p)
	if err := c.result("list agents", logrus.Fields{"count": len(list)}, err); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) CreateAgent(ctx context.Context, p ragflow.CreateAgentParams) error {
	return c.result("create agent", logrus.Fields{"title": p.Title}, c.api.CreateAgent(ctx, p))
}

func (c *Client) UpdateAgent(ctx context.Context, agentID string, p ragflow.UpdateAgentParams) error {
	return c.result("update agent", logrus.Fields{"agent": agentID}, c.api.UpdateAgent(ctx, agentID, p))
}

func (c *Client) DeleteAgent(ctx context.Context, agentID string) error {
	return c.result("delete agent", logrus.Fields{"agent": agentID}, c.api.DeleteAgent(ctx, agentID))
}

func (c *Client) CreateAgentSession(ctx context.Context, agentID string, inputs map[string]any) (*ragflow.Session, error) {
	s, err := c.api.CreateAgentSession(ctx, agentID, inputs)
	if err := c.result("create agent session", logrus.Fields{"agent": agentID}, err); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Client) ListAgentSessions(ctx context.Context, agentID string, p ragflow.ListSessionsParams) ([]ragflow.Session, error) {
	p.PageParams = withPage(p.PageParams)
	list, err := c.api.ListAgentSessions(ctx, agentID, p)
	if err := c.result("list agent sessions", logrus.Fields{"agent": agentID, "count": len(list)}, err); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) DeleteAgentSessions(ctx context.Context, agentID string, ids []string) error {
	err := c.api.DeleteAgentSessions(ctx, agentID, ids)
	return c.result("delete agent sessions", logrus.Fields{"agent": agentID, "ids": ids}, err)
}

func (c *Client) AskAgent(ctx context.Context, agentID, sessionID, question string) (*ragflow.Message, error) {
	m, err := c.api.AskAgent(ctx, agentID, sessionID, question)
	if err := c.result("agent chat", logrus.Fields{"agent": agentID, "session": sessionID}, err); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *Client) StreamAgent(ctx context.Context, agentID, sessionID, question string) (*ragflow.MessageStream, error) {
	s, err := c.api.StreamAgent(ctx, agentID, sessionID, question)
	if err := c.result("stream agent chat", logrus.Fields{"agent": agentID, "session": sessionID}, err); err != nil {
		return nil, err
	}
	return s, nil
}
