package registration

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragflowctl/internal/credential"
	"ragflowctl/internal/logs"
	"ragflowctl/internal/models"
	"ragflowctl/internal/ragflow"
	"ragflowctl/internal/ragflowtest"
)

func newRegistrar(t *testing.T, srv *ragflowtest.Server) *Registrar {
	t.Helper()
	pub, err := credential.ParsePublicKey(srv.PublicKeyPEM)
	require.NoError(t, err)
	return New(srv.URL, credential.NewEncryptor(pub), logs.Discard(), WithProbeTimeout(time.Second))
}

func TestRegisterIssuesToken(t *testing.T) {
	srv := ragflowtest.New(t)
	r := newRegistrar(t, srv)

	res, err := r.Register(context.Background(), "alice", "alice@example.com", "Test123456")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.Success)
	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "alice", res.User.Nickname)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEmpty(t, res.User.AccessToken)
	assert.NotZero(t, res.User.CreateTime)
	assert.NotEmpty(t, res.APIToken)
	assert.Equal(t, models.TenantIDForUser(res.User.ID), res.TenantID)
	assert.Empty(t, res.Message)

	// сервер получил ровно исходный пароль
	assert.Equal(t, "Test123456", srv.Password("alice@example.com"))
}

func TestProbeFailureSendsNoRegistration(t *testing.T) {
	srv := ragflowtest.New(t)
	srv.ProbeStatus = http.StatusServiceUnavailable
	r := newRegistrar(t, srv)

	res, err := r.Register(context.Background(), "bob", "bob@example.com", "pw")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, StepProbe, FailedStep(err))
	assert.Equal(t, 1, srv.Calls("GET /v1/user/login/channels"))
	assert.Zero(t, srv.Calls("POST /v1/user/register"))
}

func TestUnreachableServer(t *testing.T) {
	srv := ragflowtest.New(t)
	r := newRegistrar(t, srv)
	srv.Close()

	require.Error(t, r.CheckServer(context.Background()))
}

func TestRegisterRejected(t *testing.T) {
	srv := ragflowtest.New(t)
	srv.RegisterError = "Email: carol@example.com has already registered!"
	r := newRegistrar(t, srv)

	res, err := r.Register(context.Background(), "carol", "carol@example.com", "pw")
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, StepRegister, FailedStep(err))
	assert.True(t, ragflow.IsAPIError(err, ragflowtest.CodeOperatingError))
	assert.Zero(t, srv.Calls("POST /v1/system/new_token"))
}

func TestDuplicateEmail(t *testing.T) {
	srv := ragflowtest.New(t)
	r := newRegistrar(t, srv)
	ctx := context.Background()

	_, err := r.Register(ctx, "dave", "dave@example.com", "pw")
	require.NoError(t, err)
	_, err = r.Register(ctx, "dave2", "dave@example.com", "pw")
	assert.Equal(t, StepRegister, FailedStep(err))
}

func TestNoEncryptorIsEncryptStep(t *testing.T) {
	srv := ragflowtest.New(t)
	r := New(srv.URL, nil, logs.Discard())

	res, err := r.Register(context.Background(), "eve", "eve@example.com", "pw")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoPublicKey)
	assert.Equal(t, StepEncrypt, FailedStep(err))
	assert.Zero(t, srv.Calls("POST /v1/user/register"))
}

func TestTokenFailureReturnsPartialResult(t *testing.T) {
	srv := ragflowtest.New(t)
	srv.TokenError = "token quota exceeded"
	r := newRegistrar(t, srv)

	res, err := r.Register(context.Background(), "frank", "frank@example.com", "pw")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Empty(t, res.APIToken)
	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, MessageTokenFailed, res.Message)
}

func TestTokenRequiresSessionAuthorization(t *testing.T) {
	srv := ragflowtest.New(t)
	r := newRegistrar(t, srv)

	_, err := r.newToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, StepToken, FailedStep(err))

	var ae *ragflow.APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusUnauthorized, ae.HTTPStatus)
}

func TestRegisterPersistsPlatformRows(t *testing.T) {
	gdb := ragflowtest.OpenDB(t)
	srv := ragflowtest.New(t)
	srv.DB = gdb
	r := newRegistrar(t, srv)

	res, err := r.Register(context.Background(), "grace", "grace@example.com", "pw")
	require.NoError(t, err)

	var n int64
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", res.User.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
	require.NoError(t, gdb.Model(&models.Tenant{}).Where("id = ?", res.TenantID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestResultJSONKeys(t *testing.T) {
	raw, err := json.Marshal(Result{User: User{ID: "u1"}, APIToken: "t", TenantID: "u1", Success: true})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{"user", "api_token", "tenant_id", "success"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, "u1", m["user"].(map[string]any)["id"])
}

func TestSecondRegistrationDoesNotReuseSession(t *testing.T) {
	srv := ragflowtest.New(t)
	r := newRegistrar(t, srv)

	first, err := r.Register(context.Background(), "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	require.True(t, first.Success)

	srv.NoSessionHeader = true
	second, err := r.Register(context.Background(), "bob", "bob@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "bob", second.User.Nickname)
	assert.False(t, second.Success)
	assert.Empty(t, second.APIToken)
	assert.Equal(t, MessageTokenFailed, second.Message)
}
