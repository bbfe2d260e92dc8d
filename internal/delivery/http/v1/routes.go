package v1

import (
	"net/http"
)

// RegisterRoutes mounts the authoring API on mux. protect wraps every route except health.
func RegisterRoutes(mux *http.ServeMux, catalog *CatalogHandler, drafts *DraftHandler, protect func(http.Handler) http.Handler) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, protect(h))
	}

	// Catalog reference data
	handle("GET /api/v1/catalog/categories", catalog.GetCategories)
	handle("GET /api/v1/catalog/categories/{id}/schema", catalog.GetSchema)
	handle("GET /api/v1/catalog/brands", catalog.GetBrands)
	handle("GET /api/v1/catalog/tax-categories", catalog.GetTaxCategories)

	// Sessions
	handle("POST /api/v1/drafts", drafts.Open)
	handle("GET /api/v1/drafts/{id}", drafts.Get)
	handle("DELETE /api/v1/drafts/{id}", drafts.Close)

	// Sections
	handle("PATCH /api/v1/drafts/{id}/fields", drafts.UpdateFields)
	handle("POST /api/v1/drafts/{id}/base", drafts.SaveBase)
	handle("PATCH /api/v1/drafts/{id}/attributes", drafts.SetAttribute)
	handle("POST /api/v1/drafts/{id}/attributes/save", drafts.SaveAttributes)
	handle("POST /api/v1/drafts/{id}/shipping", drafts.SaveShipping)
	handle("POST /api/v1/drafts/{id}/meta", drafts.SaveMeta)

	// Product media
	handle("GET /api/v1/drafts/{id}/media/stats", drafts.MediaStats)
	handle("POST /api/v1/drafts/{id}/media", drafts.UploadMedia)
	handle("DELETE /api/v1/drafts/{id}/media/{mediaId}", drafts.DeleteMedia)
	handle("POST /api/v1/drafts/{id}/media/{mediaId}/primary", drafts.SetPrimaryMedia)

	// Variants
	handle("GET /api/v1/drafts/{id}/variants", drafts.RefreshVariants)
	handle("POST /api/v1/drafts/{id}/variants", drafts.AddVariant)
	handle("POST /api/v1/drafts/{id}/variants/{ref}/persist", drafts.PersistVariant)
	handle("PATCH /api/v1/drafts/{id}/variants/{ref}", drafts.UpdateVariant)
	handle("PUT /api/v1/drafts/{id}/variants/{ref}/attributes", drafts.SetVariantAttributes)
	handle("DELETE /api/v1/drafts/{id}/variants/{ref}", drafts.RemoveVariant)

	// Variant media
	handle("GET /api/v1/drafts/{id}/variants/{ref}/media/stats", drafts.MediaStats)
	handle("POST /api/v1/drafts/{id}/variants/{ref}/media", drafts.UploadMedia)
	handle("DELETE /api/v1/drafts/{id}/variants/{ref}/media/{mediaId}", drafts.DeleteMedia)
	handle("POST /api/v1/drafts/{id}/variants/{ref}/media/{mediaId}/primary", drafts.SetPrimaryMedia)

	health := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok"}`))
	}
	mux.HandleFunc("GET /api/v1/health", health)
	mux.HandleFunc("GET /health", health)
}
