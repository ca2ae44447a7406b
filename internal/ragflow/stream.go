package ragflow

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type completionBody struct {
	Question  string `json:"question"`
	Stream    bool   `json:"stream"`
	SessionID string `json:"session_id,omitempty"`
}

func (c *Client) ask(ctx context.Context, path, sessionID, question string) (*Message, error) {
	var m Message
	body := completionBody{Question: question, Stream: false, SessionID: sessionID}
	if err := c.do(ctx, http.MethodPost, path, nil, body, &m); err != nil {
		return nil, err
	}
	if m.Role == "" {
		m.Role = "assistant"
	}
	return &m, nil
}

func (c *Client) stream(ctx context.Context, path, sessionID, question string) (*MessageStream, error) {
	body := completionBody{Question: question, Stream: true, SessionID: sessionID}
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	// Ошибки (неверная сессия и т.п.) RAGFlow отдаёт обычным JSON, не SSE.
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		defer resp.Body.Close()
		var m Message
		if err := decodeEnvelope(resp, &m); err != nil {
			return nil, err
		}
		return &MessageStream{pending: &m, done: true}, nil
	}
	return newMessageStream(resp), nil
}

// MessageStream — ленивый поток сообщений из text/event-stream.
// Использование как у bufio.Scanner:
//
//	for s.Next() { m := s.Message() }
//	if err := s.Err(); err != nil { ... }
type MessageStream struct {
	resp    *http.Response
	sc      *bufio.Scanner
	cur     *Message
	pending *Message
	err     error
	done    bool
}

func newMessageStream(resp *http.Response) *MessageStream {
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &MessageStream{resp: resp, sc: sc}
}

// Next читает следующее событие data:. Событие с data=true завершает поток.
func (s *MessageStream) Next() bool {
	if s.pending != nil {
		s.cur, s.pending = s.pending, nil
		return true
	}
	if s.done || s.err != nil || s.sc == nil {
		return false
	}
	for s.sc.Scan() {
		line := strings.TrimSpace(s.sc.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var env envelope
		if err := json.Unmarshal([]byte(payload), &env); err != nil {
			s.err = fmt.Errorf("failed to decode stream event: %w", err)
			return false
		}
		if env.Code != 0 {
			s.err = &APIError{HTTPStatus: s.resp.StatusCode, Code: env.Code, Message: env.Message}
			return false
		}
		data := strings.TrimSpace(string(env.Data))
		if data == "" || data == "true" || data == "null" {
			s.done = true
			return false
		}
		var m Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			s.err = fmt.Errorf("failed to decode stream message: %w", err)
			return false
		}
		if m.Role == "" {
			m.Role = "assistant"
		}
		s.cur = &m
		return true
	}
	s.err = s.sc.Err()
	s.done = true
	return false
}

// Message — текущее сообщение (накопительный ответ).
func (s *MessageStream) Message() *Message { return s.cur }

func (s *MessageStream) Err() error { return s.err }

func (s *MessageStream) Close() error {
	s.done = true
	if s.resp == nil {
		return nil
	}
	return s.resp.Body.Close()
}

// Collect дочитывает поток и возвращает последнее сообщение.
func (s *MessageStream) Collect() (*Message, error) {
	defer s.Close()
	var last *Message
	for s.Next() {
		last = s.Message()
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return last, nil
}

// Delta — новая часть накопительного ответа cur относительно prev.
// Если cur не продолжает prev (сервер переписал ответ), возвращается cur целиком.
func Delta(prev, cur string) string {
	if strings.HasPrefix(cur, prev) {
		return cur[len(prev):]
	}
	return cur
}
