package authoring

import (
	"context"

	"merchant-studio/internal/domain"

	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

var _ domain.CatalogGateway = (*MockCatalog)(nil)

func (m *MockCatalog) FetchCategoryTree(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCatalog) FetchSchema(ctx context.Context, categoryID string) ([]domain.Attribute, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attribute), args.Error(1)
}

func (m *MockCatalog) FetchAttributeValues(ctx context.Context, attributeID string) ([]domain.AttributeValueOption, error) {
	args := m.Called(ctx, attributeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttributeValueOption), args.Error(1)
}

func (m *MockCatalog) FetchBrands(ctx context.Context, categoryID string) ([]domain.Brand, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Brand), args.Error(1)
}

func (m *MockCatalog) FetchTaxCategories(ctx context.Context) ([]domain.TaxCategory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TaxCategory), args.Error(1)
}

func (m *MockCatalog) FetchProduct(ctx context.Context, productID string) (*domain.ProductDraft, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductDraft), args.Error(1)
}

func (m *MockCatalog) SaveBaseProduct(ctx context.Context, payload domain.BaseProductPayload) (*domain.SavedProduct, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SavedProduct), args.Error(1)
}

func (m *MockCatalog) SaveAttributeValues(ctx context.Context, productID string, values domain.AttributeAssignment) error {
	args := m.Called(ctx, productID, values)
	return args.Error(0)
}

func (m *MockCatalog) SaveShipping(ctx context.Context, productID string, payload domain.ShippingPayload) error {
	args := m.Called(ctx, productID, payload)
	return args.Error(0)
}

func (m *MockCatalog) SaveMeta(ctx context.Context, productID string, payload domain.MetaPayload) error {
	args := m.Called(ctx, productID, payload)
	return args.Error(0)
}

func (m *MockCatalog) UploadMedia(ctx context.Context, owner domain.MediaOwner, file domain.MediaFile, mediaType domain.MediaType, sortOrder int) (*domain.MediaItem, error) {
	args := m.Called(ctx, owner, file, mediaType, sortOrder)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaItem), args.Error(1)
}

func (m *MockCatalog) DeleteMedia(ctx context.Context, owner domain.MediaOwner, mediaID string) error {
	args := m.Called(ctx, owner, mediaID)
	return args.Error(0)
}

func (m *MockCatalog) GetMediaStats(ctx context.Context, owner domain.MediaOwner) (*domain.MediaStats, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaStats), args.Error(1)
}

func (m *MockCatalog) SetPrimaryMedia(ctx context.Context, owner domain.MediaOwner, mediaID string) error {
	args := m.Called(ctx, owner, mediaID)
	return args.Error(0)
}

func (m *MockCatalog) ListVariants(ctx context.Context, productID string) ([]domain.Variant, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Variant), args.Error(1)
}

func (m *MockCatalog) CreateVariant(ctx context.Context, productID string, payload domain.VariantPayload) (*domain.Variant, error) {
	args := m.Called(ctx, productID, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Variant), args.Error(1)
}

func (m *MockCatalog) UpdateVariant(ctx context.Context, variantID string, patch domain.VariantPatch) error {
	args := m.Called(ctx, variantID, patch)
	return args.Error(0)
}

func (m *MockCatalog) DeleteVariant(ctx context.Context, variantID string) error {
	args := m.Called(ctx, variantID)
	return args.Error(0)
}
