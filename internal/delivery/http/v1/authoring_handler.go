package v1

import (
	"errors"
	"net/http"
	"time"

	"merchant-studio/internal/authoring"
	"merchant-studio/internal/domain"
	"merchant-studio/pkg/utils"
)

// DraftHandler exposes authoring sessions. Every route is scoped to the merchant in the
// request context; sessions of other merchants look like missing ones.
type DraftHandler struct {
	sessions     *authoring.SessionManager
	orchestrator *authoring.Orchestrator
	maxFileSize  int64
}

func NewDraftHandler(sessions *authoring.SessionManager, orchestrator *authoring.Orchestrator, maxUploadSizeMB int64) *DraftHandler {
	return &DraftHandler{
		sessions:     sessions,
		orchestrator: orchestrator,
		maxFileSize:  maxUploadSizeMB << 20,
	}
}

type draftResponse struct {
	ID        string                  `json:"id"`
	State     domain.DraftState       `json:"state"`
	Draft     *domain.ProductDraft    `json:"draft"`
	Sections  []authoring.SectionView `json:"sections"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

func newDraftResponse(s *authoring.Session) draftResponse {
	snap := s.Snapshot()
	return draftResponse{
		ID:        snap.ID,
		State:     snap.State,
		Draft:     snap.Draft,
		Sections:  s.Sections(),
		UpdatedAt: snap.UpdatedAt,
	}
}

func (h *DraftHandler) writeDraft(w http.ResponseWriter, status int, s *authoring.Session) {
	utils.WriteJSON(w, status, newDraftResponse(s))
}

// session resolves {id} for the authenticated merchant, writing the error response itself.
func (h *DraftHandler) session(w http.ResponseWriter, r *http.Request) (*authoring.Session, bool) {
	merchant, ok := domain.MerchantFrom(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	s, err := h.sessions.Get(r.Context(), merchant.ID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return nil, false
	}
	return s, true
}

// respond writes the updated draft, or the error of the operation. Section level
// failures are also recorded in the draft's section state.
func (h *DraftHandler) respond(w http.ResponseWriter, r *http.Request, s *authoring.Session, err error) {
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeDraft(w, http.StatusOK, s)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := utils.DecodeJSON(w, r, dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		utils.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// --- Session Lifecycle ---

type openDraftRequest struct {
	ProductID string `json:"productId"`
}

func (h *DraftHandler) Open(w http.ResponseWriter, r *http.Request) {
	merchant, ok := domain.MerchantFrom(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req openDraftRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}

	s, err := h.sessions.Open(r.Context(), merchant.ID, req.ProductID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	h.writeDraft(w, http.StatusCreated, s)
}

func (h *DraftHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.writeDraft(w, http.StatusOK, s)
}

func (h *DraftHandler) Close(w http.ResponseWriter, r *http.Request) {
	merchant, ok := domain.MerchantFrom(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err := h.sessions.Close(r.Context(), merchant.ID, r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Product Sections ---

func (h *DraftHandler) UpdateFields(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var updates []authoring.FieldUpdate
	if !decode(w, r, &updates) {
		return
	}
	h.respond(w, r, s, h.orchestrator.ApplyFields(r.Context(), s, updates))
}

func (h *DraftHandler) SaveBase(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.SaveBase(r.Context(), s))
}

type attributeRequest struct {
	AttributeID string  `json:"attributeId"`
	Value       *string `json:"value"`
	Toggle      *string `json:"toggle"`
}

// SetAttribute assigns a typed value, or flips one multiselect option with "toggle".
func (h *DraftHandler) SetAttribute(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req attributeRequest
	if !decode(w, r, &req) {
		return
	}
	if req.AttributeID == "" || (req.Value == nil && req.Toggle == nil) {
		utils.WriteError(w, http.StatusBadRequest, "attributeId and one of value or toggle are required")
		return
	}

	var err error
	if req.Toggle != nil {
		err = h.orchestrator.ToggleAttribute(r.Context(), s, req.AttributeID, *req.Toggle)
	} else {
		err = h.orchestrator.AssignAttribute(r.Context(), s, req.AttributeID, *req.Value)
	}
	h.respond(w, r, s, err)
}

func (h *DraftHandler) SaveAttributes(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.SaveAttributes(r.Context(), s))
}

func (h *DraftHandler) SaveShipping(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.SaveShipping(r.Context(), s))
}

func (h *DraftHandler) SaveMeta(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.SaveMeta(r.Context(), s))
}

// --- Media (product or variant, by the optional {ref} path value) ---

func (h *DraftHandler) MediaStats(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	stats, err := h.orchestrator.MediaStats(r.Context(), s, r.PathValue("ref"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}

type uploadResponse struct {
	Report *authoring.UploadReport `json:"report"`
	draftResponse
}

func (h *DraftHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	form, err := readUploadForm(r, h.maxFileSize)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer form.Close()

	report, err := h.orchestrator.UploadMedia(r.Context(), s, r.PathValue("ref"), form.files)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, uploadResponse{Report: report, draftResponse: newDraftResponse(s)})
}

func (h *DraftHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.DeleteMedia(r.Context(), s, r.PathValue("ref"), r.PathValue("mediaId")))
}

func (h *DraftHandler) SetPrimaryMedia(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.SetPrimaryMedia(r.Context(), s, r.PathValue("ref"), r.PathValue("mediaId")))
}

// --- Variants ---

func (h *DraftHandler) RefreshVariants(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.RefreshVariants(r.Context(), s))
}

func (h *DraftHandler) AddVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var input authoring.VariantInput
	if !decode(w, r, &input) {
		return
	}
	_, err := h.orchestrator.AddVariant(r.Context(), s, input)
	h.respond(w, r, s, err)
}

func (h *DraftHandler) PersistVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.PersistVariant(r.Context(), s, r.PathValue("ref")))
}

type variantFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (h *DraftHandler) UpdateVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req variantFieldRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, r, s, h.orchestrator.UpdateVariant(r.Context(), s, r.PathValue("ref"), req.Field, req.Value))
}

func (h *DraftHandler) SetVariantAttributes(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var assignment domain.AttributeAssignment
	if !decode(w, r, &assignment) {
		return
	}
	h.respond(w, r, s, h.orchestrator.SetVariantAttributes(r.Context(), s, r.PathValue("ref"), assignment))
}

func (h *DraftHandler) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respond(w, r, s, h.orchestrator.RemoveVariant(r.Context(), s, r.PathValue("ref")))
}
