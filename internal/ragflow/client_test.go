package ragflow_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragflowctl/internal/ragflow"
	"ragflowctl/internal/ragflowtest"
)

func newClient(t *testing.T, srv *ragflowtest.Server) *ragflow.Client {
	t.Helper()
	c, err := ragflow.NewClient(srv.URL, srv.APIKey, ragflow.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresURLAndKey(t *testing.T) {
	_, err := ragflow.NewClient("", "key")
	require.Error(t, err)

	_, err = ragflow.NewClient("http://localhost:9380", "  ")
	require.Error(t, err)

	c, err := ragflow.NewClient("http://localhost:9380/", "key")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9380", c.BaseURL)
}

func TestWrongKeyIsAPIError(t *testing.T) {
	srv := ragflowtest.New(t)
	c, err := ragflow.NewClient(srv.URL, "ragflow-wrong")
	require.NoError(t, err)

	_, err = c.ListDatasets(context.Background(), ragflow.ListDatasetsParams{})
	require.Error(t, err)
	assert.True(t, ragflow.IsAPIError(err, ragflowtest.CodeAuthError))
}

func TestNonJSONErrorKeepsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := ragflow.NewClient(srv.URL, "k")
	require.NoError(t, err)
	_, err = c.ListChats(context.Background(), ragflow.ListChatsParams{})

	var ae *ragflow.APIError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, http.StatusBadGateway, ae.HTTPStatus)
	assert.Contains(t, ae.Message, "bad gateway")
}

func TestDatasetLifecycle(t *testing.T) {
	ctx := context.Background()
	srv := ragflowtest.New(t)
	c := newClient(t, srv)

	empty, err := c.ListDatasets(ctx, ragflow.ListDatasetsParams{})
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Empty(t, empty)

	ds, err := c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: "kb", ChunkMethod: "naive"})
	require.NoError(t, err)
	assert.NotEmpty(t, ds.ID)

	_, err = c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: "kb"})
	assert.True(t, ragflow.IsAPIError(err, ragflowtest.CodeDataError))

	got, err := c.GetDataset(ctx, "kb")
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)

	_, err = c.GetDataset(ctx, "missing")
	assert.ErrorIs(t, err, ragflow.ErrNotFound)

	require.NoError(t, c.UpdateDataset(ctx, ds.ID, map[string]any{"name": "kb2"}))
	got, err = c.GetDataset(ctx, "kb2")
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)

	require.NoError(t, c.DeleteDatasets(ctx, []string{ds.ID}))
	assert.Empty(t, srv.Datasets())
}

func TestPageParamsForwardedAsIs(t *testing.T) {
	ctx := context.Background()
	srv := ragflowtest.New(t)
	c := newClient(t, srv)

	for _, name := range []string{"a", "b", "c"} {
		_, err := c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: name})
		require.NoError(t, err)
	}

	desc := true
	page, err := c.ListDatasets(ctx, ragflow.ListDatasetsParams{
		PageParams: ragflow.PageParams{Page: 2, PageSize: 2, OrderBy: "create_time", Desc: &desc},
	})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "c", page[0].Name)

	q := srv.LastQuery("GET /api/v1/datasets")
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "2", q.Get("page_size"))
	assert.Equal(t, "create_time", q.Get("orderby"))
	assert.Equal(t, "true", q.Get("desc"))

	// только одна страница, без агрегации
	assert.Equal(t, 1, srv.Calls("GET /api/v1/datasets"))
}

func TestDocumentsAndChunks(t *testing.T) {
	ctx := context.Background()
	srv := ragflowtest.New(t)
	c := newClient(t, srv)

	ds, err := c.CreateDataset(ctx, ragflow.CreateDatasetParams{Name: "kb"})
	require.NoError(t, err)

	docs, err := c.UploadDocuments(ctx, ds.ID, []ragflow.UploadFile{
		{DisplayName: "ragflow.txt", Blob: []byte("RAGFlow is a retrieval engine")},
		{DisplayName: "other.txt", Blob: []byte("unrelated")},
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "ragflow.txt", docs[0].Name)
	assert.Equal(t, []byte("RAGFlow is a retrieval engine"), srv.Blob(docs[0].ID))

	listed, err := c.ListDocuments(ctx, ds.ID, ragflow.ListDocumentsParams{Keywords: "ragflow"})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, c.ParseDocuments(ctx, ds.ID, []string{docs[0].ID}))
	require.NoError(t, c.StopParsingDocuments(ctx, ds.ID, []string{docs[0].ID}))

	ch, err := c.AddChunk(ctx, ds.ID, docs[1].ID, ragflow.AddChunkParams{Content: "manual chunk about engines"})
	require.NoError(t, err)
	assert.Equal(t, docs[1].ID, ch.DocumentID)

	chunks, err := c.ListChunks(ctx, ds.ID, docs[1].ID, ragflow.ListChunksParams{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	hits, err := c.Retrieve(ctx, ragflow.RetrieveParams{Question: "engine", DatasetIDs: []string{ds.ID}, Page: 1, PageSize: 30})
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	require.NoError(t, c.DeleteChunks(ctx, ds.ID, docs[1].ID, []string{ch.ID}))
	require.NoError(t, c.DeleteDocuments(ctx, ds.ID, []string{docs[1].ID}))
	listed, err = c.ListDocuments(ctx, ds.ID, ragflow.ListDocumentsParams{})
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestUploadUsesMultipartFileField(t *testing.T) {
	var contentType, field string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k := range r.MultipartForm.File {
				field = k
			}
		}
		_, _ = w.Write([]byte(`{"code":0,"data":[{"id":"d1","name":"a.txt","dataset_id":"ds"}]}`))
	}))
	defer srv.Close()

	c, err := ragflow.NewClient(srv.URL, "k")
	require.NoError(t, err)
	docs, err := c.UploadDocuments(context.Background(), "ds", []ragflow.UploadFile{{DisplayName: "a.txt", Blob: []byte("x")}})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data"))
	assert.Equal(t, "file", field)
}

func TestChatAskAndStream(t *testing.T) {
	ctx := context.Background()
	srv := ragflowtest.New(t)
	c := newClient(t, srv)

	chat, err := c.CreateChat(ctx, ragflow.CreateChatParams{Name: "assistant"})
	require.NoError(t, err)
	sess, err := c.CreateChatSession(ctx, chat.ID, "s1")
	require.NoError(t, err)
	assert.Equal(t, chat.ID, sess.ChatID)

	msg, err := c.AskChat(ctx, chat.ID, sess.ID, "what is ragflow?")
	require.NoError(t, err)
	assert.Equal(t, srv.Answer, msg.Content)
	assert.Equal(t, "assistant", msg.Role)

	stream, err := c.StreamChat(ctx, chat.ID, sess.ID, "what is ragflow?")
	require.NoError(t, err)
	defer stream.Close()

	var out strings.Builder
	prev := ""
	events := 0
	for stream.Next() {
		cur := stream.Message().Content
		out.WriteString(ragflow.Delta(prev, cur))
		prev = cur
		events++
	}
	require.NoError(t, stream.Err())
	assert.Greater(t, events, 1)
	assert.Equal(t, srv.Answer, out.String())

	sessions, err := c.ListChatSessions(ctx, chat.ID, ragflow.ListSessionsParams{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Len(t, sessions[0].Messages, 5)

	require.NoError(t, c.DeleteChatSessions(ctx, chat.ID, []string{sess.ID}))
	require.NoError(t, c.DeleteChats(ctx, []string{chat.ID}))
	chats, err := c.ListChats(ctx, ragflow.ListChatsParams{})
	require.NoError(t, err)
	assert.Empty(t, chats)
}

func TestStreamErrorEnvelope(t *testing.T) {
	ctx := context.Background()
	srv := ragflowtest.New(t)
	c := newClient(t, srv)

	chat, err := c.CreateChat(ctx, ragflow.CreateChatParams{Name: "assistant"})
	require.NoError(t, err)

	_, err = c.StreamChat(ctx, chat.ID, "no-such-session", "hi")
	assert.True(t, ragflow.IsAPIError(err, ragflowtest.CodeDataError))
}

func TestStreamEventError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data:{\"code\":0,\"data\":{\"answer\":\"part\"}}\n\n"))
		_, _ = w.Write([]byte("data:{\"code\":500,\"message\":\"**ERROR**: boom\"}\n\n"))
	}))
	defer srv.Close()

	c, err := ragflow.NewClient(srv.URL, "k")
	require.NoError(t, err)
	stream, err := c.StreamAgent(context.Background(), "a1", "s1", "hi")
	require.NoError(t, err)

	_, err = stream.Collect()
	assert.True(t, ragflow.IsAPIError(err, 500))
}

func TestAgents(t *testing.T) {
	ctx := context.Background()
	srv := ragflowtest.New(t)
	c := newClient(t, srv)

	require.NoError(t, c.CreateAgent(ctx, ragflow.CreateAgentParams{Title: "flow", DSL: []byte(`{"components":{}}`)}))
	agents, err := c.ListAgents(ctx, ragflow.ListAgentsParams{Title: "flow"})
	require.NoError(t, err)
	require.Len(t, agents, 1)
	id := agents[0].ID

	require.NoError(t, c.UpdateAgent(ctx, id, ragflow.UpdateAgentParams{Description: "updated"}))

	sess, err := c.CreateAgentSession(ctx, id, nil)
	require.NoError(t, err)
	assert.Equal(t, id, sess.AgentID)

	stream, err := c.StreamAgent(ctx, id, sess.ID, "hello")
	require.NoError(t, err)
	last, err := stream.Collect()
	require.NoError(t, err)
	assert.Equal(t, srv.Answer, last.Content)

	list, err := c.ListAgentSessions(ctx, id, ragflow.ListSessionsParams{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	require.NoError(t, c.DeleteAgentSessions(ctx, id, nil))

	require.NoError(t, c.DeleteAgent(ctx, id))
	err = c.DeleteAgent(ctx, id)
	assert.True(t, ragflow.IsAPIError(err, ragflowtest.CodeOperatingError))
}

func TestDelta(t *testing.T) {
	assert.Equal(t, "lo", ragflow.Delta("hel", "hello"))
	assert.Equal(t, "hello", ragflow.Delta("", "hello"))
	assert.Equal(t, "", ragflow.Delta("hello", "hello"))
	assert.Equal(t, "bye", ragflow.Delta("hello", "bye"))
}
