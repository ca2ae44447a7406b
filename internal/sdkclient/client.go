// Package sdkclient — обёртка над клиентом RAGFlow с дефолтами и логированием
// каждой операции. Ошибки не глотаются: лог + возврат вызывающему.
package sdkclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"ragflowctl/internal/middleware"
	"ragflowctl/internal/ragflow"
)

// Дефолты операций.
const (
	DefaultEmbeddingModel = "BAAI/bge-large-zh-v1.5@BAAI"
	DefaultPermission     = "me"
	DefaultChunkMethod    = "naive"
	DefaultChatModel      = "qwen3:32b"
	DefaultSessionName    = "New session"
	DefaultOpener         = "Hi! I'm your AI assistant. How can I help you?"

	DefaultPage     = 1
	DefaultPageSize = 30

	DefaultSimilarityThreshold    = 0.2
	DefaultVectorSimilarityWeight = 0.3
	DefaultTopK                   = 1024
)

type Config struct {
	BaseURL  string
	APIToken string
	Timeout  time.Duration
}

type Client struct {
	api *ragflow.Client
	log *logrus.Logger
}

// New — без адреса или токена клиент не создаётся. log == nil → logrus.StandardLogger().
func New(cfg Config, log *logrus.Logger) (*Client, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	hc := &http.Client{
		Timeout:   timeout,
		Transport: middleware.NewTransport(http.DefaultTransport, log),
	}
	api, err := ragflow.NewClient(cfg.BaseURL, cfg.APIToken, ragflow.WithHTTPClient(hc))
	if err != nil {
		return nil, err
	}
	return &Client{api: api, log: log}, nil
}

// NewWithClient — поверх готового клиента (свой транспорт, таймауты).
func NewWithClient(api *ragflow.Client, log *logrus.Logger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{api: api, log: log}
}

// API — нижележащий клиент для операций без обёртки.
func (c *Client) API() *ragflow.Client { return c.api }

// result логирует исход операции и оборачивает ошибку её именем.
func (c *Client) result(op string, fields logrus.Fields, err error) error {
	entry := c.log.WithFields(fields)
	if err != nil {
		entry.WithError(err).Errorf("%s failed", op)
		return fmt.Errorf("%s: %w", op, err)
	}
	entry.Infof("%s ok", op)
	return nil
}

func withPage(p ragflow.PageParams) ragflow.PageParams {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

/* ---------- датасеты ---------- */

func (c *Client) CreateDataset(ctx context.Context, p ragflow.CreateDatasetParams) (*ragflow.Dataset, error) {
	if p.EmbeddingModel == "" {
		p.EmbeddingModel = DefaultEmbeddingModel
	}
	if p.Permission == "" {
		p.Permission = DefaultPermission
	}
	if p.ChunkMethod == "" {
		p.ChunkMethod = DefaultChunkMethod
	}
	ds, err := c.api.CreateDataset(ctx, p)
	if err := c.result("create dataset", logrus.Fields{"name": p.Name}, err); err != nil {
		return nil, err
	}
	return ds, nil
}

func (c *Client) ListDatasets(ctx context.Context, p ragflow.ListDatasetsParams) ([]ragflow.Dataset, error) {
	p.PageParams = withPage(p.PageParams)
	list, err := c.api.ListDatasets(ctx, p)
	if err := c.result("list datasets", logrus.Fields{"count": len(list)}, err); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) DeleteDatasets(ctx context.Context, ids []string) error {
	return c.result("delete datasets", logrus.Fields{"ids": ids}, c.api.DeleteDatasets(ctx, ids))
}

// GetDatasetByName — ragflow.ErrNotFound, если датасета с таким именем нет.
func (c *Client) GetDatasetByName(ctx context.Context, name string) (*ragflow.Dataset, error) {
	ds, err := c.api.GetDataset(ctx, name)
	if err := c.result("get dataset", logrus.Fields{"name": name}, err); err != nil {
		return nil, err
	}
	return ds, nil
}

/* ---------- документы ---------- */

// UploadDocumentFromFile читает файл с диска и загружает его в датасет.
// Отсутствующий файл — ошибка с os.ErrNotExist до обращения к серверу.
func (c *Client) UploadDocumentFromFile(ctx context.Context, datasetID, path, displayName string) ([]ragflow.Document, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("file %s: %w", path, os.ErrNotExist)
		}
		return nil, c.result("upload document", logrus.Fields{"path": path}, err)
	}
	if displayName == "" {
		displayName = filepath.Base(path)
	}
	docs, err := c.api.UploadDocuments(ctx, datasetID, []ragflow.UploadFile{{DisplayName: displayName, Blob: blob}})
	if err := c.result("upload document", logrus.Fields{"dataset": datasetID, "name": displayName}, err); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) ListDocuments(ctx context.Context, datasetID string, p ragflow.ListDocumentsParams) ([]ragflow.Document, error) {
	p.PageParams = withPage(p.PageParams)
	docs, err := c.api.ListDocuments(ctx, datasetID, p)
	if err := c.result("list documents", logrus.Fields{"dataset": datasetID, "count": len(docs)}, err); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) DeleteDocuments(ctx context.Context, datasetID string, ids []string) error {
	err := c.api.DeleteDocuments(ctx, datasetID, ids)
	return c.result("delete documents", logrus.Fields{"dataset": datasetID, "ids": ids}, err)
}

func (c *Client) ParseDocuments(ctx context.Context, datasetID string, ids []string) error {
	err := c.api.ParseDocuments(ctx, datasetID, ids)
	return c.result("parse documents", logrus.Fields{"dataset": datasetID, "ids": ids}, err)
}

func (c *Client) StopParsingDocuments(ctx context.Context, datasetID string, ids []string) error {
	err := c.api.StopParsingDocuments(ctx, datasetID, ids)
	return c.result("stop parsing documents", logrus.Fields{"dataset": datasetID, "ids": ids}, err)
}

/* ---------- чанки ---------- */

func (c *Client) AddChunk(ctx context.Context, datasetID, documentID string, p ragflow.AddChunkParams) (*ragflow.Chunk, error) {
	ch, err := c.api.AddChunk(ctx, datasetID, documentID, p)
	if err := c.result("add chunk", logrus.Fields{"document": documentID}, err); err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *Client) ListChunks(ctx context.Context, datasetID, documentID string, p ragflow.ListChunksParams) ([]ragflow.Chunk, error) {
	p.PageParams = withPage(p.PageParams)
	list, err := c.api.ListChunks(ctx, datasetID, documentID, p)
	if err := c.result("list chunks", logrus.Fields{"document": documentID, "count": len(list)}, err); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) DeleteChunks(ctx context.Context, datasetID, documentID string, ids []string) error {
	err := c.api.DeleteChunks(ctx, datasetID, documentID, ids)
	return c.result("delete chunks", logrus.Fields{"document": documentID, "ids": ids}, err)
}

// RetrieveChunks — нулевые числовые параметры заменяются дефолтами.
func (c *Client) RetrieveChunks(ctx context.Context, p ragflow.RetrieveParams) ([]ragflow.Chunk, error) {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.SimilarityThreshold == 0 {
		p.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if p.VectorSimilarityWeight == 0 {
		p.VectorSimilarityWeight = DefaultVectorSimilarityWeight
	}
	if p.TopK == 0 {
		p.TopK = DefaultTopK
	}
	list, err := c.api.Retrieve(ctx, p)
	if err := c.result("retrieve chunks", logrus.Fields{"count": len(list)}, err); err != nil {
		return nil, err
	}
	return list, nil
}
