package handler

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/buseagkoc/construction-chatbot/internal/pkg/errcode"
	"github.com/buseagkoc/construction-chatbot/internal/pkg/response"
	"github.com/buseagkoc/construction-chatbot/internal/service"
	"github.com/buseagkoc/construction-chatbot/internal/store"
)

type DocumentHandler struct {
	chat           *service.ChatService
	documents      *service.DocumentService
	batch          *service.BatchService
	vectors        *store.PgVectorStore
	maxUploadBytes int64
}

func NewDocumentHandler(
	chat *service.ChatService,
	documents *service.DocumentService,
	batch *service.BatchService,
	vectors *store.PgVectorStore,
	maxUploadBytes int64,
) *DocumentHandler {
	return &DocumentHandler{
		chat:           chat,
		documents:      documents,
		batch:          batch,
		vectors:        vectors,
		maxUploadBytes: maxUploadBytes,
	}
}

type statsResponse struct {
	IndexedSections int64 `json:"indexed_sections"`
	PendingBatch    int   `json:"pending_batch"`
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalidFile, "file is required")
		return
	}
	name := filepath.Base(file.Filename)
	if name == "" || name == "." || !strings.EqualFold(filepath.Ext(name), ".pdf") {
		response.Error(c, errcode.ErrInvalidFile, "only pdf files are accepted")
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		response.Error(c, errcode.ErrInvalidFile, "file exceeds upload limit")
		return
	}
	dir, err := os.MkdirTemp("", "chatbot-upload-*")
	if err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to stage upload")
		return
	}
	defer os.RemoveAll(dir)

	// Keep the original file name so the document id derives from it.
	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		response.Error(c, errcode.ErrUploadFailed, "failed to save upload")
		return
	}
	result, err := h.chat.ProcessDocument(c.Request.Context(), dst)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *DocumentHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, errcode.ErrInvalid, "query is required")
		return
	}
	maxResults := 0
	if value := c.Query("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			maxResults = parsed
		}
	}
	response.Success(c, h.chat.Search(query, maxResults))
}

type deleteResponse struct {
	SectionsRemoved int64 `json:"sections_removed"`
}

// Delete removes a document's indexed sections and its in-memory copy. The
// path id is the unique id returned by Upload; the in-memory store keys on
// the id without the uniqueness suffix, so that form is tried as well.
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID := c.Param("id")
	if docID == "" {
		response.Error(c, errcode.ErrInvalid, "document id is required")
		return
	}
	removed, err := h.vectors.DeleteByDocument(c.Request.Context(), docID)
	if err != nil {
		handleError(c, err)
		return
	}
	inMemory := h.documents.Delete(docID)
	if base := stripUniqueSuffix(docID); base != docID {
		if h.documents.Delete(base) {
			inMemory = true
		}
	}
	if removed == 0 && !inMemory {
		response.Error(c, errcode.ErrNotFound, "document not found")
		return
	}
	response.Success(c, deleteResponse{SectionsRemoved: removed})
}

// stripUniqueSuffix drops the trailing 8-hex uniqueness segment from ids of
// the form doc_<stem>_<yyyymmdd>_<suffix>. The segment is stripped only when
// the remainder still ends in a date, so a bare doc_<stem>_<yyyymmdd> id
// passes through unchanged.
func stripUniqueSuffix(docID string) string {
	idx := strings.LastIndex(docID, "_")
	if idx <= 0 || len(docID)-idx-1 != 8 {
		return docID
	}
	for _, r := range docID[idx+1:] {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return docID
		}
	}
	head := docID[:idx]
	if !endsInDateSegment(head) {
		return docID
	}
	return head
}

func endsInDateSegment(id string) bool {
	idx := strings.LastIndex(id, "_")
	if idx < 0 || len(id)-idx-1 != 8 {
		return false
	}
	for _, r := range id[idx+1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (h *DocumentHandler) Stats(c *gin.Context) {
	indexed, err := h.vectors.Count(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, statsResponse{
		IndexedSections: indexed,
		PendingBatch:    h.batch.Pending(),
	})
}
