package ragflow

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type CreateDatasetParams struct {
	Name           string         `json:"name"`
	Avatar         string         `json:"avatar,omitempty"`
	Description    string         `json:"description,omitempty"`
	EmbeddingModel string         `json:"embedding_model,omitempty"`
	Permission     string         `json:"permission,omitempty"`
	ChunkMethod    string         `json:"chunk_method,omitempty"`
	ParserConfig   map[string]any `json:"parser_config,omitempty"`
}

type ListDatasetsParams struct {
	PageParams
	Name string
	ID   string
}

// CreateDataset — POST /datasets.
func (c *Client) CreateDataset(ctx context.Context, p CreateDatasetParams) (*Dataset, error) {
	var ds Dataset
	if err := c.do(ctx, http.MethodPost, "/datasets", nil, p, &ds); err != nil {
		return nil, err
	}
	return &ds, nil
}

// ListDatasets — GET /datasets, одна страница.
func (c *Client) ListDatasets(ctx context.Context, p ListDatasetsParams) ([]Dataset, error) {
	q := p.values()
	setIf(q, "name", p.Name)
	setIf(q, "id", p.ID)
	var out []Dataset
	if err := c.do(ctx, http.MethodGet, "/datasets", q, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out), nil
}

// GetDataset ищет датасет по точному имени.
func (c *Client) GetDataset(ctx context.Context, name string) (*Dataset, error) {
	list, err := c.ListDatasets(ctx, ListDatasetsParams{Name: name})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("dataset %q: %w", name, ErrNotFound)
	}
	return &list[0], nil
}

// UpdateDataset — PUT /datasets/{id}; в fields только изменяемые поля.
func (c *Client) UpdateDataset(ctx context.Context, id string, fields map[string]any) error {
	return c.do(ctx, http.MethodPut, "/datasets/"+url.PathEscape(id), nil, fields, nil)
}

// DeleteDatasets — DELETE /datasets; ids == nil удаляет все датасеты.
func (c *Client) DeleteDatasets(ctx context.Context, ids []string) error {
	return c.do(ctx, http.MethodDelete, "/datasets", nil, idsBody{IDs: ids}, nil)
}
