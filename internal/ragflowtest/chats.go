package ragflowtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ragflowctl/internal/ragflow"
)

func (s *Server) chatRoutes(api *mux.Router) {
	api.HandleFunc("/chats", s.createChat).Methods(http.MethodPost)
	api.HandleFunc("/chats", s.listChats).Methods(http.MethodGet)
	api.HandleFunc("/chats", s.deleteChats).Methods(http.MethodDelete)
	api.HandleFunc("/chats/{id}/sessions", s.createSession(false)).Methods(http.MethodPost)
	api.HandleFunc("/chats/{id}/sessions", s.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/chats/{id}/sessions", s.deleteSessions).Methods(http.MethodDelete)
	api.HandleFunc("/chats/{id}/completions", s.completions).Methods(http.MethodPost)
}

func (s *Server) agentRoutes(api *mux.Router) {
	api.HandleFunc("/agents", s.createAgent).Methods(http.MethodPost)
	api.HandleFunc("/agents", s.listAgents).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id}", s.updateAgent).Methods(http.MethodPut)
	api.HandleFunc("/agents/{id}", s.deleteAgent).Methods(http.MethodDelete)
	api.HandleFunc("/agents/{id}/sessions", s.createSession(true)).Methods(http.MethodPost)
	api.HandleFunc("/agents/{id}/sessions", s.listSessions).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id}/sessions", s.deleteSessions).Methods(http.MethodDelete)
	api.HandleFunc("/agents/{id}/completions", s.completions).Methods(http.MethodPost)
}

// AddAgent кладёт агента напрямую: POST /agents не возвращает id.
func (s *Server) AddAgent(title string) ragflow.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &ragflow.Agent{ID: hexID(), Title: title, DSL: json.RawMessage(`{}`), CreateTime: time.Now().UnixMilli()}
	s.agents = append(s.agents, a)
	return *a
}

func (s *Server) createChat(w http.ResponseWriter, r *http.Request) {
	var p ragflow.CreateChatParams
	if err := decode(r, &p); err != nil || strings.TrimSpace(p.Name) == "" {
		writeError(w, http.StatusOK, CodeDataError, "`name` is required.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range p.DatasetIDs {
		if s.findDataset(id) == nil {
			writeError(w, http.StatusOK, CodeDataError, "You don't own the dataset "+id)
			return
		}
	}
	c := &ragflow.Chat{
		ID:         hexID(),
		Name:       p.Name,
		Avatar:     p.Avatar,
		DatasetIDs: p.DatasetIDs,
		LLM:        p.LLM,
		Prompt:     p.Prompt,
		Status:     "1",
		CreateTime: time.Now().UnixMilli(),
	}
	s.chats = append(s.chats, c)
	writeData(w, c)
}

func (s *Server) listChats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []ragflow.Chat
	for _, c := range s.chats {
		if name := q.Get("name"); name != "" && c.Name != name {
			continue
		}
		if id := q.Get("id"); id != "" && c.ID != id {
			continue
		}
		out = append(out, *c)
	}
	s.mu.Unlock()
	writeData(w, paginate(out, q))
}

func (s *Server) deleteChats(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	_ = decode(r, &body)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chats[:0]
	for _, c := range s.chats {
		if body.IDs == nil || containsID(body.IDs, c.ID) {
			delete(s.convs, c.ID)
			continue
		}
		kept = append(kept, c)
	}
	s.chats = kept
	writeData(w, nil)
}

func (s *Server) createAgent(w http.ResponseWriter, r *http.Request) {
	var p ragflow.CreateAgentParams
	if err := decode(r, &p); err != nil || p.Title == "" || len(p.DSL) == 0 {
		writeError(w, http.StatusOK, CodeArgumentError, "`title` and `dsl` are required")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.agents {
		if a.Title == p.Title {
			writeError(w, http.StatusOK, CodeDataError, p.Title+" already exists.")
			return
		}
	}
	s.agents = append(s.agents, &ragflow.Agent{
		ID:          hexID(),
		Title:       p.Title,
		Description: p.Description,
		DSL:         p.DSL,
		CreateTime:  time.Now().UnixMilli(),
	})
	writeData(w, true)
}

func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []ragflow.Agent
	for _, a := range s.agents {
		if title := q.Get("title"); title != "" && a.Title != title {
			continue
		}
		if id := q.Get("id"); id != "" && a.ID != id {
			continue
		}
		out = append(out, *a)
	}
	s.mu.Unlock()
	writeData(w, paginate(out, q))
}

func (s *Server) findAgent(id string) *ragflow.Agent {
	for _, a := range s.agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Server) updateAgent(w http.ResponseWriter, r *http.Request) {
	var p ragflow.UpdateAgentParams
	if err := decode(r, &p); err != nil {
		writeError(w, http.StatusOK, CodeArgumentError, "invalid json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.findAgent(mux.Vars(r)["id"])
	if a == nil {
		writeError(w, http.StatusOK, CodeOperatingError, "Only owner of canvas authorized for this operation.")
		return
	}
	if p.Title != "" {
		a.Title = p.Title
	}
	if p.Description != "" {
		a.Description = p.Description
	}
	if len(p.DSL) > 0 {
		a.DSL = p.DSL
	}
	a.UpdateTime = time.Now().UnixMilli()
	writeData(w, true)
}

func (s *Server) deleteAgent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findAgent(id) == nil {
		writeError(w, http.StatusOK, CodeOperatingError, "Only owner of canvas authorized for this operation.")
		return
	}
	kept := s.agents[:0]
	for _, a := range s.agents {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.agents = kept
	delete(s.convs, id)
	writeData(w, true)
}

// ownerExists — есть ли чат (agent=false) или агент с таким id.
func (s *Server) ownerExists(id string, agent bool) bool {
	if agent {
		return s.findAgent(id) != nil
	}
	for _, c := range s.chats {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) createSession(agent bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = decode(r, &body)
		id := mux.Vars(r)["id"]

		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.ownerExists(id, agent) {
			writeError(w, http.StatusOK, CodeDataError, "You do not own the assistant.")
			return
		}
		sess := &ragflow.Session{
			ID:         hexID(),
			Name:       "New session",
			Messages:   []ragflow.SessionMessage{{Role: "assistant", Content: "Hi! I am your assistant, can I help you?"}},
			CreateTime: time.Now().UnixMilli(),
		}
		if name, ok := body["name"].(string); ok && name != "" {
			sess.Name = name
		}
		if agent {
			sess.AgentID = id
		} else {
			sess.ChatID = id
		}
		s.convs[id] = append(s.convs[id], sess)
		writeData(w, sess)
	}
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []ragflow.Session
	for _, c := range s.convs[mux.Vars(r)["id"]] {
		if name := q.Get("name"); name != "" && c.Name != name {
			continue
		}
		if id := q.Get("id"); id != "" && c.ID != id {
			continue
		}
		out = append(out, *c)
	}
	s.mu.Unlock()
	writeData(w, paginate(out, q))
}

func (s *Server) deleteSessions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	_ = decode(r, &body)
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.convs[id][:0]
	for _, c := range s.convs[id] {
		if body.IDs == nil || containsID(body.IDs, c.ID) {
			continue
		}
		kept = append(kept, c)
	}
	s.convs[id] = kept
	writeData(w, nil)
}

// completions отвечает Answer: целиком или потоком накопительных событий
// по словам, последним идёт data=true.
func (s *Server) completions(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question  string `json:"question"`
		Stream    bool   `json:"stream"`
		SessionID string `json:"session_id"`
	}
	if err := decode(r, &body); err != nil {
		writeError(w, http.StatusOK, CodeArgumentError, "invalid json")
		return
	}
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	var sess *ragflow.Session
	for _, c := range s.convs[id] {
		if c.ID == body.SessionID {
			sess = c
		}
	}
	answer := s.Answer
	if sess != nil {
		sess.Messages = append(sess.Messages,
			ragflow.SessionMessage{Role: "user", Content: body.Question},
			ragflow.SessionMessage{Role: "assistant", Content: answer})
	}
	s.mu.Unlock()

	if sess == nil {
		writeError(w, http.StatusOK, CodeDataError, "The session doesn't exist")
		return
	}

	msgID := hexID()
	event := func(content string) map[string]any {
		return map[string]any{"id": msgID, "session_id": sess.ID, "answer": content, "reference": map[string]any{}}
	}
	if !body.Stream {
		writeData(w, event(answer))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	flusher, _ := w.(http.Flusher)
	send := func(v any) {
		b, _ := json.Marshal(map[string]any{"code": CodeSuccess, "message": "", "data": v})
		fmt.Fprintf(w, "data:%s\n\n", b)
		if flusher != nil {
			flusher.Flush()
		}
	}
	var acc strings.Builder
	for i, word := range strings.Fields(answer) {
		if i > 0 {
			acc.WriteByte(' ')
		}
		acc.WriteString(word)
		send(event(acc.String()))
	}
	send(true)
}
