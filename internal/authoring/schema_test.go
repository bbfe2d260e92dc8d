package authoring

import (
	"context"
	"sync"
	"testing"

	"merchant-studio/internal/domain"
	"merchant-studio/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newSchemaProvider(catalog *MockCatalog) *SchemaProvider {
	return NewSchemaProvider(catalog, cache.NewMemoryCache(-1, 0))
}

func TestSchemaProvider_CachesSchemaAndValues(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "shirts").Return([]domain.Attribute{
		{ID: "1", Name: "Color", Type: domain.AttributeSelect, Required: true},
		{ID: "2", Name: "Material", Type: domain.AttributeText},
		{ID: "3", Name: "Size", Type: domain.AttributeMultiSelect, Values: []domain.AttributeValueOption{{Code: "s", Label: "S"}}},
	}, nil).Once()
	catalog.On("FetchAttributeValues", mock.Anything, "1").Return([]domain.AttributeValueOption{
		{Code: "red", Label: "Red"},
	}, nil).Once()
	p := newSchemaProvider(catalog)

	for i := 0; i < 3; i++ {
		attrs, err := p.GetSchema(context.Background(), "shirts")
		require.NoError(t, err)
		require.Len(t, attrs, 3)
		assert.Equal(t, "Red", attrs[0].Values[0].Label)
		assert.Len(t, attrs[2].Values, 1, "inline values are kept")
	}
	catalog.AssertExpectations(t)
}

func TestSchemaProvider_ReturnsCopies(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "shirts").Return([]domain.Attribute{
		{ID: "3", Name: "Size", Type: domain.AttributeMultiSelect, Values: []domain.AttributeValueOption{{Code: "s", Label: "S"}}},
	}, nil).Once()
	p := newSchemaProvider(catalog)

	first, err := p.GetSchema(context.Background(), "shirts")
	require.NoError(t, err)
	first[0].Name = "changed"
	first[0].Values[0].Label = "changed"

	second, err := p.GetSchema(context.Background(), "shirts")
	require.NoError(t, err)
	assert.Equal(t, "Size", second[0].Name)
	assert.Equal(t, "S", second[0].Values[0].Label)
}

func TestSchemaProvider_EmptySchemaIsNotAnError(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "gift-cards").Return(nil, nil).Once()
	p := newSchemaProvider(catalog)

	attrs, err := p.GetSchema(context.Background(), "gift-cards")
	require.NoError(t, err)
	assert.NotNil(t, attrs)
	assert.Empty(t, attrs)
}

func TestSchemaProvider_FetchFailure(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "shirts").Return(nil, &domain.NetworkError{Op: "fetch attribute schema", Status: 503}).Once()
	catalog.On("FetchSchema", mock.Anything, "shirts").Return([]domain.Attribute{{ID: "2", Type: domain.AttributeText}}, nil).Once()
	p := newSchemaProvider(catalog)

	_, err := p.GetSchema(context.Background(), "shirts")
	var schemaErr *domain.SchemaFetchError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "shirts", schemaErr.CategoryID)
	assert.True(t, domain.IsRetryable(err))

	attrs, err := p.GetSchema(context.Background(), "shirts")
	require.NoError(t, err, "failures are not cached")
	assert.Len(t, attrs, 1)
}

func TestSchemaProvider_ValuesFailure(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "shirts").Return([]domain.Attribute{
		{ID: "1", Name: "Color", Type: domain.AttributeSelect},
	}, nil)
	catalog.On("FetchAttributeValues", mock.Anything, "1").Return(nil, &domain.NetworkError{Op: "fetch attribute values"})
	p := newSchemaProvider(catalog)

	_, err := p.GetSchema(context.Background(), "shirts")
	var schemaErr *domain.SchemaFetchError
	require.ErrorAs(t, err, &schemaErr)
}

func TestSchemaProvider_Refresh(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "shirts").Return([]domain.Attribute{
		{ID: "1", Name: "Color", Type: domain.AttributeSelect},
	}, nil).Twice()
	catalog.On("FetchAttributeValues", mock.Anything, "1").Return([]domain.AttributeValueOption{{Code: "red", Label: "Red"}}, nil).Once()
	catalog.On("FetchAttributeValues", mock.Anything, "1").Return([]domain.AttributeValueOption{{Code: "red", Label: "Red"}, {Code: "blue", Label: "Blue"}}, nil).Once()
	p := newSchemaProvider(catalog)

	attrs, err := p.GetSchema(context.Background(), "shirts")
	require.NoError(t, err)
	assert.Len(t, attrs[0].Values, 1)

	attrs, err = p.Refresh(context.Background(), "shirts")
	require.NoError(t, err)
	assert.Len(t, attrs[0].Values, 2)
	catalog.AssertExpectations(t)
}

func TestSchemaProvider_ConcurrentCallersShareOneFetch(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "shirts").Return([]domain.Attribute{{ID: "2", Type: domain.AttributeText}}, nil).Once()
	p := newSchemaProvider(catalog)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.GetSchema(context.Background(), "shirts")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	catalog.AssertExpectations(t)
}

func TestSchemaProvider_FetchIgnoresCallerCancellation(t *testing.T) {
	catalog := new(MockCatalog)
	live := mock.MatchedBy(func(ctx context.Context) bool {
		bearer, ok := domain.BearerFrom(ctx)
		return ctx.Err() == nil && ok && bearer == "token"
	})
	catalog.On("FetchSchema", live, "shirts").Return([]domain.Attribute{{ID: "1", Type: domain.AttributeSelect}}, nil).Once()
	catalog.On("FetchAttributeValues", live, "1").Return([]domain.AttributeValueOption{{Code: "red", Label: "Red"}}, nil).Once()
	p := newSchemaProvider(catalog)

	ctx, cancel := context.WithCancel(domain.WithBearer(context.Background(), "token"))
	cancel()

	attrs, err := p.GetSchema(ctx, "shirts")
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	assert.Equal(t, "Red", attrs[0].Values[0].Label)
	catalog.AssertExpectations(t)
}

func TestSchemaProvider_Attribute(t *testing.T) {
	catalog := new(MockCatalog)
	catalog.On("FetchSchema", mock.Anything, "shirts").Return([]domain.Attribute{{ID: "2", Name: "Material", Type: domain.AttributeText}}, nil)
	p := newSchemaProvider(catalog)

	attr, err := p.Attribute(context.Background(), "shirts", "2")
	require.NoError(t, err)
	assert.Equal(t, "Material", attr.Name)

	_, err = p.Attribute(context.Background(), "shirts", "99")
	var valErr *domain.ValidationError
	assert.ErrorAs(t, err, &valErr)
}
