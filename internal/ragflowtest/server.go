// Package ragflowtest — фейковый RAGFlow для тестов: веб-эндпоинты
// регистрации (/v1/...) и API (/api/v1/...) в памяти, на gorilla/mux.
package ragflowtest

import (
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"ragflowctl/internal/credential"
	"ragflowctl/internal/ragflow"
)

// Коды ответов RAGFlow (api/settings.RetCode).
const (
	CodeSuccess        = 0
	CodeArgumentError  = 101
	CodeDataError      = 102
	CodeOperatingError = 103
	CodeAuthError      = 109
	CodeUnauthorized   = 401
	CodeServerError    = 500
)

// Server — состояние фейка. Ручки-переключатели можно менять между вызовами.
type Server struct {
	*httptest.Server

	PrivateKey   *rsa.PrivateKey
	PublicKeyPEM []byte
	APIKey       string

	// DB — если задан, регистрация пишет строки как настоящий RAGFlow.
	DB *gorm.DB

	// ProbeStatus — статус /v1/user/login/channels (0 → 200).
	ProbeStatus int
	// NoSessionHeader — регистрация отвечает без заголовка Authorization.
	NoSessionHeader bool
	// RegisterError / TokenError — сообщение ошибки (code 103) вместо успеха.
	RegisterError string
	TokenError    string
	// Answer — ответ ассистента; в потоке отдаётся по словам накопительно.
	Answer string

	mu        sync.Mutex
	calls     map[string]int
	queries   map[string]url.Values
	accounts  map[string]*account // по email
	sessions  map[string]string   // Authorization → user id
	datasets  []*ragflow.Dataset
	documents map[string][]*ragflow.Document // dataset id → docs
	blobs     map[string][]byte              // document id → содержимое
	chunks    map[string][]*ragflow.Chunk    // document id → chunks
	parsing   map[string]bool                // document id → идёт парсинг
	chats     []*ragflow.Chat
	agents    []*ragflow.Agent
	convs     map[string][]*ragflow.Session // chat/agent id → сессии
}

type account struct {
	ID          string
	Nickname    string
	Email       string
	Password    string
	AccessToken string
	APIToken    string
	CreateTime  int64
}

// New поднимает сервер и закрывает его по окончании теста.
func New(t testing.TB) *Server {
	t.Helper()
	priv, pubPEM, err := credential.GenerateKeyPair(2048)
	if err != nil {
		t.Fatalf("ragflowtest: %v", err)
	}
	s := &Server{
		PrivateKey:   priv,
		PublicKeyPEM: pubPEM,
		APIKey:       "ragflow-" + hexID(),
		Answer:       "RAGFlow is an open-source RAG engine based on deep document understanding.",
		calls:        map[string]int{},
		queries:      map[string]url.Values{},
		accounts:     map[string]*account{},
		sessions:     map[string]string{},
		documents:    map[string][]*ragflow.Document{},
		blobs:        map[string][]byte{},
		chunks:       map[string][]*ragflow.Chunk{},
		parsing:      map[string]bool{},
		convs:        map[string][]*ragflow.Session{},
	}
	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.count)

	r.HandleFunc("/v1/user/login/channels", s.loginChannels).Methods(http.MethodGet)
	r.HandleFunc("/v1/user/register", s.register).Methods(http.MethodPost)
	r.HandleFunc("/v1/system/new_token", s.newToken).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.requireAPIKey)
	s.datasetRoutes(api)
	s.chatRoutes(api)
	s.agentRoutes(api)
	return r
}

// count считает вызовы по шаблону маршрута и запоминает query.
func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				key = r.Method + " " + tpl
			}
		}
		s.mu.Lock()
		s.calls[key]++
		s.queries[key] = r.URL.Query()
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.APIKey {
			writeError(w, http.StatusOK, CodeAuthError, "Authentication error: API key is invalid!")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Calls — сколько раз вызван маршрут, ключ "POST /v1/user/register".
func (s *Server) Calls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[key]
}

// LastQuery — query последнего вызова маршрута.
func (s *Server) LastQuery(key string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[key]
}

// Password — расшифрованный сервером пароль зарегистрированного email.
func (s *Server) Password(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[email]; ok {
		return a.Password
	}
	return ""
}

// ---------- helpers ----------

func hexID() string { return strings.ReplaceAll(uuid.NewString(), "-", "") }

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": CodeSuccess, "message": "success", "data": data})
}

func writeError(w http.ResponseWriter, status, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "message": msg, "data": nil})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func pageOf(q url.Values) (page, size int) {
	page, _ = strconv.Atoi(q.Get("page"))
	size, _ = strconv.Atoi(q.Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 30
	}
	return page, size
}

func paginate[T any](items []T, q url.Values) []T {
	page, size := pageOf(q)
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
