// Package registration регистрирует пользователя через веб-API RAGFlow
// и выпускает ему API-токен.
//
// Шаги идут строго по порядку, каждый только после успеха предыдущего:
// проверка сервера → шифрование пароля → регистрация → новый токен.
package registration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ragflowctl/internal/credential"
	"ragflowctl/internal/health"
	"ragflowctl/internal/middleware"
	"ragflowctl/internal/models"
	"ragflowctl/internal/ragflow"
)

const (
	probePath    = "/v1/user/login/channels"
	registerPath = "/v1/user/register"
	tokenPath    = "/v1/system/new_token"

	DefaultProbeTimeout = 5 * time.Second

	// MessageTokenFailed — Result.Message, когда пользователь создан, а токен нет.
	MessageTokenFailed = "user registered, API token request failed"
)

type User struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	Email       string `json:"email"`
	CreateTime  int64  `json:"create_time"`
	AccessToken string `json:"access_token"`
}

// Result — итог регистрации; в этом виде он сохраняется в файл.
type Result struct {
	User     User   `json:"user"`
	APIToken string `json:"api_token"`
	TenantID string `json:"tenant_id"`
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
}

type Option func(*Registrar)

func WithHTTPClient(hc *http.Client) Option {
	return func(r *Registrar) {
		if hc != nil {
			r.client = hc
		}
	}
}

func WithProbeTimeout(d time.Duration) Option {
	return func(r *Registrar) {
		if d > 0 {
			r.probeTimeout = d
		}
	}
}

// Registrar держит одну «сессию»: http-клиент и Authorization, полученный
// при регистрации.
type Registrar struct {
	host         string
	enc          *credential.Encryptor
	log          *logrus.Logger
	client       *http.Client
	probeTimeout time.Duration

	mu   sync.Mutex
	auth string
}

func New(host string, enc *credential.Encryptor, log *logrus.Logger, opts ...Option) *Registrar {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &Registrar{
		host: strings.TrimRight(host, "/"),
		enc:  enc,
		log:  log,
		client: &http.Client{
			Timeout:   60 * time.Second,
			Transport: middleware.NewTransport(http.DefaultTransport, log),
		},
		probeTimeout: DefaultProbeTimeout,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Registrar) Host() string { return r.host }

// CheckServer — сервер жив, если страница каналов входа отвечает 200.
func (r *Registrar) CheckServer(ctx context.Context) error {
	err := health.Probe(ctx, r.client, r.host+probePath, r.probeTimeout)
	if err != nil {
		r.log.WithError(err).WithField("host", r.host).Warn("ragflow server unreachable")
		return &StepError{Step: StepProbe, Err: err}
	}
	r.log.WithField("host", r.host).Info("ragflow server is up")
	return nil
}

// Register проходит все шаги. Ошибка до создания пользователя → (nil, err).
// Если не удался только выпуск токена → частичный Result с Success=false
// и nil-ошибкой: пользователь уже существует.
func (r *Registrar) Register(ctx context.Context, nickname, email, password string) (*Result, error) {
	if err := r.CheckServer(ctx); err != nil {
		return nil, err
	}

	user, err := r.register(ctx, nickname, email, password)
	if err != nil {
		r.log.WithError(err).WithField("email", email).Error("registration failed")
		return nil, err
	}
	r.log.WithFields(logrus.Fields{"id": user.ID, "nickname": user.Nickname}).Info("user registered")

	res := &Result{User: *user, TenantID: models.TenantIDForUser(user.ID)}

	token, err := r.newToken(ctx)
	if err != nil {
		r.log.WithError(err).WithField("id", user.ID).Warn(MessageTokenFailed)
		res.Message = MessageTokenFailed
		return res, nil
	}
	res.APIToken = token
	res.Success = true
	r.log.WithField("id", user.ID).Info("api token issued")
	return res, nil
}

type registerBody struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *Registrar) register(ctx context.Context, nickname, email, password string) (*User, error) {
	if r.enc == nil {
		return nil, &StepError{Step: StepEncrypt, Err: ErrNoPublicKey}
	}
	encrypted, err := r.enc.Encrypt(password)
	if err != nil {
		return nil, &StepError{Step: StepEncrypt, Err: err}
	}

	// сессия предыдущей регистрации не должна достаться новому пользователю
	r.mu.Lock()
	r.auth = ""
	r.mu.Unlock()

	var user User
	resp, err := r.post(ctx, registerPath, registerBody{Nickname: nickname, Email: email, Password: encrypted}, &user)
	if err != nil {
		return nil, &StepError{Step: StepRegister, Err: err}
	}
	if auth := resp.Header.Get("Authorization"); auth != "" {
		r.mu.Lock()
		r.auth = auth
		r.mu.Unlock()
	}
	return &user, nil
}

func (r *Registrar) newToken(ctx context.Context) (string, error) {
	var data struct {
		Token string `json:"token"`
	}
	if _, err := r.post(ctx, tokenPath, struct{}{}, &data); err != nil {
		return "", &StepError{Step: StepToken, Err: err}
	}
	if data.Token == "" {
		return "", &StepError{Step: StepToken, Err: ErrEmptyToken}
	}
	return data.Token, nil
}

// post отправляет JSON и раскладывает data конверта в out. Ошибки сервера
// возвращаются как *ragflow.APIError.
func (r *Registrar) post(ctx context.Context, path string, body, out any) (*http.Response, error) {
	buf, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.host+path, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	r.mu.Lock()
	if r.auth != "" {
		req.Header.Set("Authorization", r.auth)
	}
	r.mu.Unlock()

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	var env struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ragflow.APIError{HTTPStatus: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}
	if env.Code != 0 {
		return nil, &ragflow.APIError{HTTPStatus: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return resp, nil
}
