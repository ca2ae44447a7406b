package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragflowctl/config"
	"ragflowctl/internal/admin"
	"ragflowctl/internal/ragflowtest"
)

func testConfig(host, key string) *config.Config {
	cfg := &config.Config{}
	cfg.RAGFlow.Host = host
	cfg.RAGFlow.PublicKey = key
	cfg.RAGFlow.Timeout = 5 * time.Second
	cfg.RAGFlow.ProbeTimeout = time.Second
	cfg.Logging.Level = "error"
	cfg.Output.Dir = "."
	return cfg
}

func TestInitializeWithDB(t *testing.T) {
	srv := ragflowtest.New(t)
	key := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(key, srv.PublicKeyPEM, 0o600))

	a := &App{}
	out := &bytes.Buffer{}
	require.NoError(t, a.Initialize(testConfig(srv.URL, key), Options{Out: out, DB: ragflowtest.OpenDB(t)}))
	require.NoError(t, a.RequireDB(context.Background()))

	ad, err := a.Admin()
	require.NoError(t, err)
	again, err := a.Admin()
	require.NoError(t, err)
	assert.Same(t, ad, again)

	require.NoError(t, ad.CheckServer(context.Background()))
	assert.Contains(t, out.String(), "is up")
	// чужое подключение не закрывается
	require.NoError(t, a.Close())
	require.NoError(t, a.RequireDB(context.Background()))
}

func TestAdminNeedsPublicKey(t *testing.T) {
	a := &App{}
	require.NoError(t, a.Initialize(testConfig("http://127.0.0.1:1", filepath.Join(t.TempDir(), "none.pem")), Options{DB: ragflowtest.OpenDB(t)}))

	_, err := a.Admin()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRequireDBWithoutDriver(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1", "")
	cfg.Database.Driver = "sqlserver"

	a := &App{}
	require.NoError(t, a.Initialize(cfg, Options{}))
	assert.ErrorIs(t, a.RequireDB(context.Background()), admin.ErrNoDatabase)
	assert.NoError(t, a.Close())
}

func TestSDKNeedsToken(t *testing.T) {
	a := &App{}
	require.NoError(t, a.Initialize(testConfig("http://127.0.0.1:1", ""), Options{DB: ragflowtest.OpenDB(t)}))

	_, err := a.SDK()
	require.Error(t, err)

	a.cfg.RAGFlow.APIToken = "ragflow-test"
	c, err := a.SDK()
	require.NoError(t, err)
	assert.NotNil(t, c.API())
}
