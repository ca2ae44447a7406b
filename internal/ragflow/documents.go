package ragflow

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
)

// UploadFile — файл для загрузки: отображаемое имя и содержимое.
type UploadFile struct {
	DisplayName string
	Blob        []byte
}

type ListDocumentsParams struct {
	PageParams
	Keywords string
	ID       string
	Name     string
}

type documentList struct {
	Docs  []Document `json:"docs"`
	Total int        `json:"total"`
}

func datasetPath(datasetID string) string {
	return "/datasets/" + url.PathEscape(datasetID)
}

// UploadDocuments — POST /datasets/{id}/documents (multipart, поле file).
func (c *Client) UploadDocuments(ctx context.Context, datasetID string, files []UploadFile) ([]Document, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile("file", f.DisplayName)
		if err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
		if _, err := part.Write(f.Blob); err != nil {
			return nil, fmt.Errorf("failed to build multipart body: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := c.newRawRequest(ctx, http.MethodPost, datasetPath(datasetID)+"/documents", nil, &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var docs []Document
	if err := c.send(req, &docs); err != nil {
		return nil, err
	}
	return nonNil(docs), nil
}

// ListDocuments — GET /datasets/{id}/documents, одна страница.
func (c *Client) ListDocuments(ctx context.Context, datasetID string, p ListDocumentsParams) ([]Document, error) {
	q := p.values()
	setIf(q, "keywords", p.Keywords)
	setIf(q, "id", p.ID)
	setIf(q, "name", p.Name)
	var out documentList
	if err := c.do(ctx, http.MethodGet, datasetPath(datasetID)+"/documents", q, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Docs), nil
}

// DeleteDocuments — DELETE /datasets/{id}/documents.
func (c *Client) DeleteDocuments(ctx context.Context, datasetID string, ids []string) error {
	return c.do(ctx, http.MethodDelete, datasetPath(datasetID)+"/documents", nil, idsBody{IDs: ids}, nil)
}

type documentIDsBody struct {
	DocumentIDs []string `json:"document_ids"`
}

// ParseDocuments — POST /datasets/{id}/chunks: запуск асинхронного парсинга.
func (c *Client) ParseDocuments(ctx context.Context, datasetID string, documentIDs []string) error {
	return c.do(ctx, http.MethodPost, datasetPath(datasetID)+"/chunks", nil, documentIDsBody{DocumentIDs: documentIDs}, nil)
}

// StopParsingDocuments — DELETE /datasets/{id}/chunks.
func (c *Client) StopParsingDocuments(ctx context.Context, datasetID string, documentIDs []string) error {
	return c.do(ctx, http.MethodDelete, datasetPath(datasetID)+"/chunks", nil, documentIDsBody{DocumentIDs: documentIDs}, nil)
}
