package v1

import (
	"net/http"

	"merchant-studio/internal/authoring"
	"merchant-studio/internal/domain"
	"merchant-studio/pkg/utils"
)

// CatalogHandler serves the read-only reference data the authoring form needs.
type CatalogHandler struct {
	catalog domain.CatalogReader
	schema  *authoring.SchemaProvider
}

func NewCatalogHandler(catalog domain.CatalogReader, schema *authoring.SchemaProvider) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, schema: schema}
}

func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	tree, err := h.catalog.FetchCategoryTree(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if tree == nil {
		tree = []domain.Category{}
	}
	utils.WriteJSON(w, http.StatusOK, tree)
}

// schemaResponse tells an empty schema apart from one that failed to load (502).
type schemaResponse struct {
	State      string             `json:"state"` // "ready" or "empty"
	Attributes []domain.Attribute `json:"attributes"`
}

// GetSchema returns the attribute schema of a category; ?refresh=true drops the cached copy first.
func (h *CatalogHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	categoryID := r.PathValue("id")
	if categoryID == "" {
		utils.WriteError(w, http.StatusBadRequest, "Category ID required")
		return
	}

	var (
		attrs []domain.Attribute
		err   error
	)
	if utils.ParseBool(r.URL.Query().Get("refresh")) {
		attrs, err = h.schema.Refresh(r.Context(), categoryID)
	} else {
		attrs, err = h.schema.GetSchema(r.Context(), categoryID)
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	resp := schemaResponse{State: "ready", Attributes: attrs}
	if len(attrs) == 0 {
		resp.State = "empty"
		resp.Attributes = []domain.Attribute{}
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.catalog.FetchBrands(r.Context(), r.URL.Query().Get("categoryId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	utils.WriteJSON(w, http.StatusOK, brands)
}

func (h *CatalogHandler) GetTaxCategories(w http.ResponseWriter, r *http.Request) {
	taxes, err := h.catalog.FetchTaxCategories(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if taxes == nil {
		taxes = []domain.TaxCategory{}
	}
	utils.WriteJSON(w, http.StatusOK, taxes)
}
