package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/manageyou/manageyou/internal/document"
	"github.com/manageyou/manageyou/internal/logging"
	"github.com/manageyou/manageyou/internal/models"
	"github.com/manageyou/manageyou/internal/user"
)

const maxUploadBytes = 25 << 20

var errDocLimitReached = errors.New("document limit reached")

type DocumentHandler struct {
	docs     document.Repository
	storage  *document.Storage
	autoSave *document.AutoSave
	userRepo user.Repository
	docLimit int
}

func NewDocumentHandler(docs document.Repository, storage *document.Storage, autoSave *document.AutoSave, userRepo user.Repository, docLimit int) *DocumentHandler {
	return &DocumentHandler{
		docs:     docs,
		storage:  storage,
		autoSave: autoSave,
		userRepo: userRepo,
		docLimit: docLimit,
	}
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	documents, err := h.docs.ListByUser(r.Context(), dbUser.ID)
	if err != nil {
		log.Printf("Failed to list documents for user %s: %v", dbUser.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	writeJSON(w, documents)
}

// Upload receives a multipart file, stores it in the bucket and records
// its metadata. Individual accounts are held to a document quota.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.checkQuota(r, dbUser.ID, dbUser.Account); err != nil {
		writeError(w, http.StatusForbidden, "Document limit reached")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !document.ContentTypeAllowed(contentType) {
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported file type")
		return
	}

	objectPath, size, err := h.storage.Upload(r.Context(), dbUser.ID, header.Filename, contentType, file)
	if err != nil {
		log.Printf("Failed to upload document for user %s: %v", dbUser.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	doc := &models.Document{
		UserID:      dbUser.ID,
		Title:       r.FormValue("title"),
		FileName:    header.Filename,
		ContentType: contentType,
		ObjectPath:  objectPath,
		SizeBytes:   size,
		Status:      models.DocumentStatusUploaded,
	}
	if doc.Title == "" {
		doc.Title = header.Filename
	}
	if err := h.docs.Create(r.Context(), doc); err != nil {
		log.Printf("Failed to record document for user %s: %v", dbUser.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to save document")
		return
	}

	writeJSONStatus(w, http.StatusCreated, doc)
}

type UpdateDocumentRequest struct {
	Title string `json:"title"`
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	doc.Title = req.Title
	if err := h.docs.Update(r.Context(), doc); err != nil {
		log.Printf("Failed to update document %s: %v", doc.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update document")
		return
	}
	writeJSON(w, doc)
}

type UploadURLRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
}

// UploadURL hands out a short-lived signed PUT URL so large files go
// straight to the bucket.
func (h *DocumentHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}
	if req.FileName == "" {
		writeError(w, http.StatusBadRequest, "file_name is required")
		return
	}
	if !document.ContentTypeAllowed(req.ContentType) {
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported file type")
		return
	}

	objectPath := fmt.Sprintf("%s/%s-%s", dbUser.ID, uuid.New().String(), req.FileName)
	url, err := h.storage.SignedUploadURL(objectPath, req.ContentType)
	if err != nil {
		log.Printf("Failed to sign upload URL for user %s: %v", dbUser.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate upload URL")
		return
	}

	writeJSON(w, map[string]string{
		"url":         url,
		"object_path": objectPath,
	})
}

type CreateDraftRequest struct {
	Title string `json:"title"`
}

func (h *DocumentHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.checkQuota(r, dbUser.ID, dbUser.Account); err != nil {
		writeError(w, http.StatusForbidden, "Document limit reached")
		return
	}

	var req CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	doc := &models.Document{
		UserID: dbUser.ID,
		Title:  req.Title,
		Status: models.DocumentStatusDraft,
	}
	if err := h.docs.Create(r.Context(), doc); err != nil {
		log.Printf("Failed to create draft for user %s: %v", dbUser.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to create draft")
		return
	}

	writeJSONStatus(w, http.StatusCreated, doc)
}

type DraftEditRequest struct {
	Content string `json:"content"`
}

type DraftEditResponse struct {
	SaveState document.SaveState `json:"save_state"`
}

// EditDraft accepts a keystroke-granularity content update. Writes are
// debounced per document; the response reports the saver state so the
// client can render the save indicator.
func (h *DocumentHandler) EditDraft(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}

	var req DraftEditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	state := h.autoSave.Edit(doc.ID, []byte(req.Content))
	writeJSON(w, DraftEditResponse{SaveState: state})
}

func (h *DocumentHandler) DraftState(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, DraftEditResponse{SaveState: h.autoSave.State(doc.ID)})
}

// DownloadURL returns a short-lived signed URL for a stored document.
func (h *DocumentHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.ownedDocument(w, r)
	if !ok {
		return
	}
	if doc.ObjectPath == "" {
		writeError(w, http.StatusNotFound, "Document has no stored file")
		return
	}

	url, err := h.storage.SignedDownloadURL(doc.ObjectPath)
	if err != nil {
		log.Printf("Failed to sign download URL for document %s: %v", doc.ID, err)
		writeError(w, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}
	writeJSON(w, map[string]string{"url": url})
}

func (h *DocumentHandler) ownedDocument(w http.ResponseWriter, r *http.Request) (*models.Document, bool) {
	dbUser, ok := user.GetDBUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid document id")
		return nil, false
	}

	doc, err := h.docs.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "Document not found")
		return nil, false
	}
	if doc.UserID != dbUser.ID {
		writeError(w, http.StatusForbidden, "Forbidden")
		return nil, false
	}

	if event, ok := logging.FromContext(r.Context()); ok {
		event.DocumentID = doc.ID.String()
	}
	return doc, true
}

// checkQuota enforces the individual-account document cap. Team
// accounts are unlimited.
func (h *DocumentHandler) checkQuota(r *http.Request, userID string, account *models.AccountDetails) error {
	if account != nil && account.AccountTypeAccess == models.AccountTypeTeamAdmin {
		return nil
	}
	count, err := h.userRepo.CountDocuments(r.Context(), userID)
	if err != nil {
		return err
	}
	if count >= h.docLimit {
		return errDocLimitReached
	}
	return nil
}
