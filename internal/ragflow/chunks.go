package ragflow

import (
	"context"
	"net/http"
	"net/url"
)

func documentPath(datasetID, documentID string) string {
	return datasetPath(datasetID) + "/documents/" + url.PathEscape(documentID)
}

type AddChunkParams struct {
	Content           string   `json:"content"`
	ImportantKeywords []string `json:"important_keywords"`
	Questions         []string `json:"questions,omitempty"`
}

type ListChunksParams struct {
	PageParams
	Keywords string
	ID       string
}

// AddChunk — POST /datasets/{id}/documents/{doc}/chunks.
func (c *Client) AddChunk(ctx context.Context, datasetID, documentID string, p AddChunkParams) (*Chunk, error) {
	if p.ImportantKeywords == nil {
		p.ImportantKeywords = []string{}
	}
	var out struct {
		Chunk Chunk `json:"chunk"`
	}
	if err := c.do(ctx, http.MethodPost, documentPath(datasetID, documentID)+"/chunks", nil, p, &out); err != nil {
		return nil, err
	}
	return &out.Chunk, nil
}

// ListChunks — GET /datasets/{id}/documents/{doc}/chunks, одна страница.
func (c *Client) ListChunks(ctx context.Context, datasetID, documentID string, p ListChunksParams) ([]Chunk, error) {
	q := p.values()
	setIf(q, "keywords", p.Keywords)
	setIf(q, "id", p.ID)
	var out struct {
		Chunks []Chunk `json:"chunks"`
		Total  int     `json:"total"`
	}
	if err := c.do(ctx, http.MethodGet, documentPath(datasetID, documentID)+"/chunks", q, nil, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Chunks), nil
}

// DeleteChunks — DELETE /datasets/{id}/documents/{doc}/chunks.
func (c *Client) DeleteChunks(ctx context.Context, datasetID, documentID string, chunkIDs []string) error {
	body := struct {
		ChunkIDs []string `json:"chunk_ids"`
	}{ChunkIDs: chunkIDs}
	return c.do(ctx, http.MethodDelete, documentPath(datasetID, documentID)+"/chunks", nil, body, nil)
}

type RetrieveParams struct {
	Question               string   `json:"question"`
	DatasetIDs             []string `json:"dataset_ids"`
	DocumentIDs            []string `json:"document_ids,omitempty"`
	Page                   int      `json:"page"`
	PageSize               int      `json:"page_size"`
	SimilarityThreshold    float64  `json:"similarity_threshold"`
	VectorSimilarityWeight float64  `json:"vector_similarity_weight"`
	TopK                   int      `json:"top_k"`
	RerankID               string   `json:"rerank_id,omitempty"`
	Keyword                bool     `json:"keyword,omitempty"`
	Highlight              bool     `json:"highlight,omitempty"`
}

// Retrieve — POST /retrieval.
func (c *Client) Retrieve(ctx context.Context, p RetrieveParams) ([]Chunk, error) {
	var out struct {
		Chunks []Chunk `json:"chunks"`
		Total  int     `json:"total"`
	}
	if err := c.do(ctx, http.MethodPost, "/retrieval", nil, p, &out); err != nil {
		return nil, err
	}
	return nonNil(out.Chunks), nil
}
