package ragflowtest

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"ragflowctl/internal/credential"
	"ragflowctl/internal/models"
)

func (s *Server) loginChannels(w http.ResponseWriter, _ *http.Request) {
	if s.ProbeStatus != 0 && s.ProbeStatus != http.StatusOK {
		w.WriteHeader(s.ProbeStatus)
		return
	}
	writeData(w, []map[string]string{})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusOK, CodeArgumentError, "invalid json")
		return
	}
	if s.RegisterError != "" {
		writeError(w, http.StatusOK, CodeOperatingError, s.RegisterError)
		return
	}
	plain, err := credential.DecryptPassword(s.PrivateKey, req.Password)
	if err != nil {
		writeError(w, http.StatusOK, CodeServerError, "Fail to decrypt password!")
		return
	}

	s.mu.Lock()
	if _, dup := s.accounts[req.Email]; dup {
		s.mu.Unlock()
		writeError(w, http.StatusOK, CodeOperatingError, "Email: "+req.Email+" has already registered!")
		return
	}
	now := time.Now()
	a := &account{
		ID:          hexID(),
		Nickname:    req.Nickname,
		Email:       req.Email,
		Password:    plain,
		AccessToken: hexID(),
		CreateTime:  now.UnixMilli(),
	}
	s.accounts[a.Email] = a
	s.sessions[a.AccessToken] = a.ID
	s.mu.Unlock()

	if s.DB != nil {
		if err := s.persist(a, now); err != nil {
			writeError(w, http.StatusOK, CodeServerError, err.Error())
			return
		}
	}

	if !s.NoSessionHeader {
		w.Header().Set("Authorization", a.AccessToken)
	}
	writeData(w, map[string]any{
		"id":           a.ID,
		"nickname":     a.Nickname,
		"email":        a.Email,
		"access_token": a.AccessToken,
		"create_time":  a.CreateTime,
		"status":       models.StatusValid,
		"is_superuser": false,
	})
}

// persist повторяет user_register RAGFlow: user, tenant (id = user id),
// user_tenant с ролью owner и дефолтные tenant_llm.
func (s *Server) persist(a *account, now time.Time) error {
	ms := now.UnixMilli()
	base := models.Base{CreateTime: &ms, CreateDate: &now, UpdateTime: &ms, UpdateDate: &now}
	no := false
	tenantID := models.TenantIDForUser(a.ID)

	return s.DB.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			ID:              a.ID,
			AccessToken:     a.AccessToken,
			Nickname:        a.Nickname,
			Email:           a.Email,
			Password:        "pbkdf2:sha256:fake",
			LastLoginTime:   &now,
			IsAuthenticated: models.StatusValid,
			IsActive:        models.StatusValid,
			IsAnonymous:     models.StatusInvalid,
			LoginChannel:    "password",
			Status:          models.StatusValid,
			IsSuperuser:     &no,
			Base:            base,
		}
		tenant := models.Tenant{
			ID:        tenantID,
			Name:      a.Nickname + "'s Kingdom",
			LLMID:     "qwen3:32b@Ollama",
			EmbdID:    "BAAI/bge-large-zh-v1.5@BAAI",
			ASRID:     "paraformer-realtime-8k-v1@Tongyi-Qianwen",
			Img2TxtID: "qwen-vl-max@Tongyi-Qianwen",
			RerankID:  "BAAI/bge-reranker-v2-m3@BAAI",
			ParserIDs: "naive:General,qa:Q&A,manual:Manual",
			Credit:    512,
			Status:    models.StatusValid,
			Base:      base,
		}
		member := models.UserTenant{
			ID:        hexID(),
			UserID:    a.ID,
			TenantID:  tenantID,
			Role:      models.RoleOwner,
			InvitedBy: a.ID,
			Status:    models.StatusValid,
			Base:      base,
		}
		llms := []models.TenantLLM{
			{TenantID: tenantID, LLMFactory: "Ollama", ModelType: "chat", LLMName: "qwen3:32b", MaxTokens: 8192, Base: base},
			{TenantID: tenantID, LLMFactory: "BAAI", ModelType: "embedding", LLMName: "BAAI/bge-large-zh-v1.5", MaxTokens: 512, Base: base},
		}
		for _, v := range []any{&user, &tenant, &member, &llms} {
			if err := tx.Create(v).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// newToken выдаёт API-токен по Authorization из ответа регистрации.
func (s *Server) newToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	userID, ok := s.sessions[r.Header.Get("Authorization")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnauthorized, CodeUnauthorized, "Unauthorized")
		return
	}
	if s.TokenError != "" {
		writeError(w, http.StatusOK, CodeOperatingError, s.TokenError)
		return
	}

	token := "ragflow-" + hexID()
	s.mu.Lock()
	for _, a := range s.accounts {
		if a.ID == userID {
			a.APIToken = token
		}
	}
	s.mu.Unlock()

	writeData(w, map[string]any{
		"token":       token,
		"tenant_id":   models.TenantIDForUser(userID),
		"create_time": time.Now().UnixMilli(),
	})
}
