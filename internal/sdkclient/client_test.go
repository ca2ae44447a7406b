package sdkclient

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragflowctl/internal/logs"
	"ragflowctl/internal/ragflow"
	"ragflowctl/internal/ragflowtest"
)

func newTestClient(t *testing.T) (*Client, *ragflowtest.Server, *test.Hook) {
	t.Helper()
	srv := ragflowtest.New(t)
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	c, err := New(Config{BaseURL: srv.URL, APIToken: srv.APIKey}, log)
	require.NoError(t, err)
	return c, srv, hook
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost:9380"}, nil)
	require.Error(t, err)
}

func TestNewRequiresBaseURL(t *testing.T) {
	c, err := New(Config{APIToken: "ragflow-token"}, logs.Discard())
	require.Error(t, err)
	assert.Nil(t, c)
}

func TestNewWithClient(t *testing.T) {
	srv := ragflowtest.New(t)
	api, err := ragflow.NewClient(srv.URL, srv.APIKey, ragflow.WithTimeout(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, api.HTTPClient.Timeout)
	log, hook := test.NewNullLogger()

	c := NewWithClient(api, log)
	assert.Same(t, api, c.API())

	_, err = c.CreateDataset(context.Background(), ragflow.CreateDatasetParams{Name: "kb"})
	require.NoError(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestCreateDatasetDefaults(t *testing.T) {
	c, srv, hook := newTestClient(t)

	ds, err := c.CreateDataset(context.Background(), ragflow.CreateDatasetParams{Name: "kb"})
	require.NoError(t, err)
	assert.NotEmpty(t, ds.ID)

	stored := srv.Datasets()
	require.Len(t, stored, 1)
	assert.Equal(t, DefaultEmbeddingModel, stored[0].EmbeddingModel)
	assert.Equal(t, DefaultPermission, stored[0].Permission)
	assert.Equal(t, DefaultChunkMethod, stored[0].ChunkMethod)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, "kb", last.Data["name"])
}

func TestFailureIsLoggedAndReturned(t *testing.T) {
	c, _, hook := newTestClient(t)
	ctx := context.Background()

	_, err := c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: "kb"})
	require.NoError(t, err)
	_, err = c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: "kb"})
	require.Error(t, err)
	assert.True(t, ragflow.IsAPIError(err, ragflowtest.CodeDataError))
	assert.Contains(t, err.Error(), "create dataset")

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.ErrorLevel, last.Level)
	assert.NotNil(t, last.Data[logrus.ErrorKey])
}

func TestListDefaultsPage(t *testing.T) {
	c, srv, _ := newTestClient(t)

	list, err := c.ListDatasets(context.Background(), ragflow.ListDatasetsParams{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	q := srv.LastQuery("GET /api/v1/datasets")
	assert.Equal(t, "1", q.Get("page"))
	assert.Equal(t, "30", q.Get("page_size"))

	_, err = c.ListDatasets(context.Background(), ragflow.ListDatasetsParams{PageParams: ragflow.PageParams{Page: 3, PageSize: 5}})
	require.NoError(t, err)
	q = srv.LastQuery("GET /api/v1/datasets")
	assert.Equal(t, "3", q.Get("page"))
	assert.Equal(t, "5", q.Get("page_size"))
}

func TestUploadMissingFileSkipsRemoteCall(t *testing.T) {
	c, srv, _ := newTestClient(t)

	_, err := c.UploadDocumentFromFile(context.Background(), "ds", filepath.Join(t.TempDir(), "nope.txt"), "")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, srv.Calls("POST /api/v1/datasets/{id}/documents"))
}

func TestUploadDefaultsDisplayName(t *testing.T) {
	c, srv, _ := newTestClient(t)
	ctx := context.Background()

	ds, err := c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: "kb"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("# notes"), 0o644))

	docs, err := c.UploadDocumentFromFile(ctx, ds.ID, path, "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "notes.md", docs[0].Name)
	assert.Equal(t, []byte("# notes"), srv.Blob(docs[0].ID))

	docs, err = c.UploadDocumentFromFile(ctx, ds.ID, path, "renamed.md")
	require.NoError(t, err)
	assert.Equal(t, "renamed.md", docs[0].Name)
}

func TestChatAssistantDefaults(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	chat, err := c.CreateChatAssistant(ctx, ragflow.CreateChatParams{Name: "helper"})
	require.NoError(t, err)
	require.NotNil(t, chat.LLM)
	assert.Equal(t, DefaultChatModel, chat.LLM.ModelName)
	require.NotNil(t, chat.Prompt)
	require.NotNil(t, chat.Prompt.TopN)
	assert.Equal(t, 8, *chat.Prompt.TopN)

	sess, err := c.CreateSession(ctx, chat.ID, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionName, sess.Name)
}

func TestRetrieveDefaults(t *testing.T) {
	c, _, _ := newTestClient(t)
	ctx := context.Background()

	ds, err := c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: "kb"})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("vector search engine"), 0o644))
	docs, err := c.UploadDocumentFromFile(ctx, ds.ID, path, "")
	require.NoError(t, err)
	require.NoError(t, c.ParseDocuments(ctx, ds.ID, []string{docs[0].ID}))

	hits, err := c.RetrieveChunks(ctx, ragflow.RetrieveParams{Question: "search", DatasetIDs: []string{ds.ID}})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "vector search engine", hits[0].Content)
}

func TestAgentStream(t *testing.T) {
	c, srv, _ := newTestClient(t)
	ctx := context.Background()
	agent := srv.AddAgent("flow")

	sess, err := c.CreateAgentSession(ctx, agent.ID, map[string]any{"lang": "en"})
	require.NoError(t, err)

	stream, err := c.StreamAgent(ctx, agent.ID, sess.ID, "hi")
	require.NoError(t, err)
	msg, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, srv.Answer, msg.Content)

	msg, err = c.AskAgent(ctx, agent.ID, sess.ID, "hi again")
	require.NoError(t, err)
	assert.Equal(t, srv.Answer, msg.Content)
}

func TestRunDemo(t *testing.T) {
	c, srv, _ := newTestClient(t)
	srv.AddAgent("flow")

	upload := filepath.Join(t.TempDir(), "test.txt")
	require.NoError(t, os.WriteFile(upload, []byte("RAGFlow demo"), 0o644))

	var out bytes.Buffer
	err := RunDemo(context.Background(), c, &out, DemoOptions{UploadFile: upload})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "- demo dataset (")
	assert.Contains(t, text, "- demo document.txt (")
	assert.Contains(t, text, "assistant: "+srv.Answer+"\n")
	assert.Equal(t, 2, strings.Count(text, srv.Answer))
	assert.Contains(t, text, "found 1 agent(s)")
	assert.Contains(t, text, "=== done ===")
}

func TestRunDemoSkipsMissingUpload(t *testing.T) {
	c, _, _ := newTestClient(t)

	var out bytes.Buffer
	err := RunDemo(context.Background(), c, &out, DemoOptions{UploadFile: filepath.Join(t.TempDir(), "missing.txt")})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Skip upload")
	assert.Contains(t, out.String(), "found 0 agent(s)")
}
