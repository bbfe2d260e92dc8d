package domain

import (
	"context"
	"time"
)

// --- Catalog API Capabilities ---
// Transport is opaque to the authoring core; every call carries the caller's bearer
// credential in ctx (see WithBearer).

type CatalogReader interface {
	FetchCategoryTree(ctx context.Context) ([]Category, error)
	FetchSchema(ctx context.Context, categoryID string) ([]Attribute, error)
	FetchAttributeValues(ctx context.Context, attributeID string) ([]AttributeValueOption, error)
	FetchBrands(ctx context.Context, categoryID string) ([]Brand, error)
	FetchTaxCategories(ctx context.Context) ([]TaxCategory, error)
}

type ProductWriter interface {
	FetchProduct(ctx context.Context, productID string) (*ProductDraft, error)
	SaveBaseProduct(ctx context.Context, payload BaseProductPayload) (*SavedProduct, error)
	SaveAttributeValues(ctx context.Context, productID string, values AttributeAssignment) error
	SaveShipping(ctx context.Context, productID string, payload ShippingPayload) error
	SaveMeta(ctx context.Context, productID string, payload MetaPayload) error
}

type MediaGateway interface {
	UploadMedia(ctx context.Context, owner MediaOwner, file MediaFile, mediaType MediaType, sortOrder int) (*MediaItem, error)
	DeleteMedia(ctx context.Context, owner MediaOwner, mediaID string) error
	GetMediaStats(ctx context.Context, owner MediaOwner) (*MediaStats, error)
	SetPrimaryMedia(ctx context.Context, owner MediaOwner, mediaID string) error
}

type VariantGateway interface {
	ListVariants(ctx context.Context, productID string) ([]Variant, error)
	CreateVariant(ctx context.Context, productID string, payload VariantPayload) (*Variant, error)
	UpdateVariant(ctx context.Context, variantID string, patch VariantPatch) error
	DeleteVariant(ctx context.Context, variantID string) error
}

type CatalogGateway interface {
	CatalogReader
	ProductWriter
	MediaGateway
	VariantGateway
}

// --- Session Persistence ---

// SectionState is the message state owned by one sub-section.
type SectionState struct {
	Error       string       `json:"error,omitempty"`
	FieldErrors []FieldError `json:"fieldErrors,omitempty"`
	Success     string       `json:"success,omitempty"`
	Retryable   bool         `json:"retryable,omitempty"`
}

// SessionSnapshot is the resumable form of an authoring session.
type SessionSnapshot struct {
	ID         string                   `json:"id"`
	MerchantID string                   `json:"merchantId"`
	State      DraftState               `json:"state"`
	Draft      *ProductDraft            `json:"draft"`
	Sections   map[Section]SectionState `json:"sections"`
	UpdatedAt  time.Time                `json:"updatedAt"`
}

type DraftStore interface {
	Save(ctx context.Context, snap *SessionSnapshot) error
	// Load returns ErrSessionNotFound when no snapshot exists.
	Load(ctx context.Context, id string) (*SessionSnapshot, error)
	Delete(ctx context.Context, id string) error
}
