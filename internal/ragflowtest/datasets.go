package ragflowtest

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"ragflowctl/internal/ragflow"
)

func (s *Server) datasetRoutes(api *mux.Router) {
	api.HandleFunc("/datasets", s.createDataset).Methods(http.MethodPost)
	api.HandleFunc("/datasets", s.listDatasets).Methods(http.MethodGet)
	api.HandleFunc("/datasets", s.deleteDatasets).Methods(http.MethodDelete)
	api.HandleFunc("/datasets/{id}", s.updateDataset).Methods(http.MethodPut)

	api.HandleFunc("/datasets/{id}/documents", s.uploadDocuments).Methods(http.MethodPost)
	api.HandleFunc("/datasets/{id}/documents", s.listDocuments).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{id}/documents", s.deleteDocuments).Methods(http.MethodDelete)
	api.HandleFunc("/datasets/{id}/chunks", s.parseDocuments(true)).Methods(http.MethodPost)
	api.HandleFunc("/datasets/{id}/chunks", s.parseDocuments(false)).Methods(http.MethodDelete)

	api.HandleFunc("/datasets/{id}/documents/{doc}/chunks", s.addChunk).Methods(http.MethodPost)
	api.HandleFunc("/datasets/{id}/documents/{doc}/chunks", s.listChunks).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{id}/documents/{doc}/chunks", s.deleteChunks).Methods(http.MethodDelete)

	api.HandleFunc("/retrieval", s.retrieve).Methods(http.MethodPost)
}

// Datasets — снимок датасетов для проверок в тестах.
func (s *Server) Datasets() []ragflow.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ragflow.Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, *d)
	}
	return out
}

// Blob — содержимое загруженного документа.
func (s *Server) Blob(documentID string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blobs[documentID]
}

func (s *Server) findDataset(id string) *ragflow.Dataset {
	for _, d := range s.datasets {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (s *Server) createDataset(w http.ResponseWriter, r *http.Request) {
	var p ragflow.CreateDatasetParams
	if err := decode(r, &p); err != nil || strings.TrimSpace(p.Name) == "" {
		writeError(w, http.StatusOK, CodeArgumentError, "Field: <name> - Message: <String should have at least 1 character>")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.datasets {
		if d.Name == p.Name {
			writeError(w, http.StatusOK, CodeDataError, "Dataset name '"+p.Name+"' already exists")
			return
		}
	}
	ds := &ragflow.Dataset{
		ID:             hexID(),
		Name:           p.Name,
		Avatar:         p.Avatar,
		Description:    p.Description,
		Language:       "English",
		EmbeddingModel: p.EmbeddingModel,
		Permission:     p.Permission,
		ChunkMethod:    p.ChunkMethod,
		ParserConfig:   p.ParserConfig,
		Status:         "1",
		CreateTime:     time.Now().UnixMilli(),
	}
	if ds.Permission == "" {
		ds.Permission = "me"
	}
	if ds.ChunkMethod == "" {
		ds.ChunkMethod = "naive"
	}
	s.datasets = append(s.datasets, ds)
	writeData(w, ds)
}

func (s *Server) listDatasets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []ragflow.Dataset
	for _, d := range s.datasets {
		if name := q.Get("name"); name != "" && d.Name != name {
			continue
		}
		if id := q.Get("id"); id != "" && d.ID != id {
			continue
		}
		out = append(out, *d)
	}
	s.mu.Unlock()
	writeData(w, paginate(out, q))
}

func (s *Server) deleteDatasets(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	_ = decode(r, &body)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.datasets[:0]
	for _, d := range s.datasets {
		if body.IDs == nil || containsID(body.IDs, d.ID) {
			delete(s.documents, d.ID)
			continue
		}
		kept = append(kept, d)
	}
	s.datasets = kept
	writeData(w, nil)
}

func (s *Server) updateDataset(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if err := decode(r, &fields); err != nil {
		writeError(w, http.StatusOK, CodeArgumentError, "invalid json")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.findDataset(mux.Vars(r)["id"])
	if ds == nil {
		writeError(w, http.StatusOK, CodeDataError, "You don't own the dataset")
		return
	}
	if v, ok := fields["name"].(string); ok {
		ds.Name = v
	}
	if v, ok := fields["description"].(string); ok {
		ds.Description = v
	}
	if v, ok := fields["chunk_method"].(string); ok {
		ds.ChunkMethod = v
	}
	ds.UpdateTime = time.Now().UnixMilli()
	writeData(w, nil)
}

func (s *Server) uploadDocuments(w http.ResponseWriter, r *http.Request) {
	dsID := mux.Vars(r)["id"]
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusOK, CodeArgumentError, "No file part!")
		return
	}
	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		writeError(w, http.StatusOK, CodeArgumentError, "No file part!")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.findDataset(dsID)
	if ds == nil {
		writeError(w, http.StatusOK, CodeDataError, "Can't find the dataset with ID "+dsID+"!")
		return
	}
	out := make([]ragflow.Document, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusOK, CodeServerError, err.Error())
			return
		}
		blob, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			writeError(w, http.StatusOK, CodeServerError, err.Error())
			return
		}
		doc := &ragflow.Document{
			ID:          hexID(),
			Name:        fh.Filename,
			DatasetID:   dsID,
			ChunkMethod: ds.ChunkMethod,
			Size:        int64(len(blob)),
			Location:    fh.Filename,
			Run:         "UNSTART",
			Status:      "1",
			CreateTime:  time.Now().UnixMilli(),
		}
		s.documents[dsID] = append(s.documents[dsID], doc)
		s.blobs[doc.ID] = blob
		ds.DocumentCount++
		out = append(out, *doc)
	}
	writeData(w, out)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []ragflow.Document
	for _, d := range s.documents[mux.Vars(r)["id"]] {
		if kw := q.Get("keywords"); kw != "" && !strings.Contains(d.Name, kw) {
			continue
		}
		if id := q.Get("id"); id != "" && d.ID != id {
			continue
		}
		if name := q.Get("name"); name != "" && d.Name != name {
			continue
		}
		out = append(out, *d)
	}
	s.mu.Unlock()
	writeData(w, map[string]any{"docs": paginate(out, q), "total": len(out)})
}

func (s *Server) deleteDocuments(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs []string `json:"ids"`
	}
	_ = decode(r, &body)
	dsID := mux.Vars(r)["id"]
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.documents[dsID][:0]
	for _, d := range s.documents[dsID] {
		if body.IDs == nil || containsID(body.IDs, d.ID) {
			delete(s.blobs, d.ID)
			delete(s.chunks, d.ID)
			continue
		}
		kept = append(kept, d)
	}
	s.documents[dsID] = kept
	writeData(w, nil)
}

// parseDocuments: POST запускает парсинг (документ сразу режется на один
// чанк с содержимым файла), DELETE останавливает.
func (s *Server) parseDocuments(start bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			DocumentIDs []string `json:"document_ids"`
		}
		if err := decode(r, &body); err != nil || len(body.DocumentIDs) == 0 {
			writeError(w, http.StatusOK, CodeArgumentError, "`document_ids` is required")
			return
		}
		dsID := mux.Vars(r)["id"]
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, d := range s.documents[dsID] {
			if !containsID(body.DocumentIDs, d.ID) {
				continue
			}
			if !start {
				s.parsing[d.ID] = false
				d.Run = "CANCEL"
				continue
			}
			s.parsing[d.ID] = true
			d.Run = "DONE"
			d.Progress = 1
			if len(s.chunks[d.ID]) == 0 && len(s.blobs[d.ID]) > 0 {
				s.chunks[d.ID] = append(s.chunks[d.ID], &ragflow.Chunk{
					ID:         hexID(),
					Content:    string(s.blobs[d.ID]),
					DocumentID: d.ID,
					DatasetID:  dsID,
				})
				d.ChunkCount = 1
			}
		}
		writeData(w, nil)
	}
}

func (s *Server) addChunk(w http.ResponseWriter, r *http.Request) {
	var p ragflow.AddChunkParams
	if err := decode(r, &p); err != nil || strings.TrimSpace(p.Content) == "" {
		writeError(w, http.StatusOK, CodeDataError, "`content` is required")
		return
	}
	vars := mux.Vars(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	var doc *ragflow.Document
	for _, d := range s.documents[vars["id"]] {
		if d.ID == vars["doc"] {
			doc = d
		}
	}
	if doc == nil {
		writeError(w, http.StatusOK, CodeDataError, "You don't own the document "+vars["doc"]+".")
		return
	}
	ch := &ragflow.Chunk{
		ID:                hexID(),
		Content:           p.Content,
		DocumentID:        doc.ID,
		DatasetID:         doc.DatasetID,
		ImportantKeywords: p.ImportantKeywords,
		Questions:         p.Questions,
		CreateTime:        time.Now().Format("2006-01-02 15:04:05"),
	}
	s.chunks[doc.ID] = append(s.chunks[doc.ID], ch)
	doc.ChunkCount++
	writeData(w, map[string]any{"chunk": ch})
}

func (s *Server) listChunks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	var out []ragflow.Chunk
	for _, c := range s.chunks[mux.Vars(r)["doc"]] {
		if kw := q.Get("keywords"); kw != "" && !strings.Contains(c.Content, kw) {
			continue
		}
		out = append(out, *c)
	}
	s.mu.Unlock()
	writeData(w, map[string]any{"chunks": paginate(out, q), "total": len(out)})
}

func (s *Server) deleteChunks(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ChunkIDs []string `json:"chunk_ids"`
	}
	_ = decode(r, &body)
	docID := mux.Vars(r)["doc"]
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[docID][:0]
	for _, c := range s.chunks[docID] {
		if body.ChunkIDs == nil || containsID(body.ChunkIDs, c.ID) {
			continue
		}
		kept = append(kept, c)
	}
	s.chunks[docID] = kept
	writeData(w, nil)
}

// retrieve — «поиск» по вхождению любого слова вопроса в чанк.
func (s *Server) retrieve(w http.ResponseWriter, r *http.Request) {
	var p ragflow.RetrieveParams
	if err := decode(r, &p); err != nil || len(p.DatasetIDs) == 0 {
		writeError(w, http.StatusOK, CodeArgumentError, "`dataset_ids` is required.")
		return
	}
	words := strings.Fields(strings.ToLower(p.Question))
	s.mu.Lock()
	var out []ragflow.Chunk
	for _, dsID := range p.DatasetIDs {
		for _, d := range s.documents[dsID] {
			for _, c := range s.chunks[d.ID] {
				content := strings.ToLower(c.Content)
				for _, word := range words {
					if strings.Contains(content, word) {
						hit := *c
						hit.Similarity = 1
						out = append(out, hit)
						break
					}
				}
			}
		}
	}
	s.mu.Unlock()
	writeData(w, map[string]any{"chunks": out, "total": len(out)})
}
