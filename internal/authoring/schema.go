package authoring

import (
	"context"
	"fmt"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/cache"
	"merchant-studio/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// SchemaProvider resolves the attributes of a category. Schemas and option values are
// cached for the provider's lifetime; Refresh is the only way to invalidate them.
type SchemaProvider struct {
	catalog domain.CatalogReader
	cache   cache.CacheService
	group   singleflight.Group
}

func NewSchemaProvider(catalog domain.CatalogReader, c cache.CacheService) *SchemaProvider {
	return &SchemaProvider{catalog: catalog, cache: c}
}

func schemaKey(categoryID string) string {
	return fmt.Sprintf("schema:category:%s", categoryID)
}

func valuesKey(attributeID string) string {
	return fmt.Sprintf("schema:values:%s", attributeID)
}

// GetSchema returns the ordered attributes of categoryID. Enumerated attributes that came
// without inline options are completed with their values. An empty result is a valid
// schema; any lookup failure is a *domain.SchemaFetchError.
func (p *SchemaProvider) GetSchema(ctx context.Context, categoryID string) ([]domain.Attribute, error) {
	key := schemaKey(categoryID)
	if val, found := p.cache.Get(key); found {
		return cloneSchema(val.([]domain.Attribute)), nil
	}

	// The shared fetch outlives the caller that started it; values such as the bearer are kept.
	fetchCtx := context.WithoutCancel(ctx)
	val, err, _ := p.group.Do(key, func() (interface{}, error) {
		if val, found := p.cache.Get(key); found {
			return val, nil
		}

		attrs, err := p.catalog.FetchSchema(fetchCtx, categoryID)
		if err != nil {
			return nil, &domain.SchemaFetchError{CategoryID: categoryID, Err: err}
		}
		if attrs == nil {
			attrs = []domain.Attribute{}
		}
		for i := range attrs {
			if !attrs[i].Type.IsEnumerated() || len(attrs[i].Values) > 0 {
				continue
			}
			values, err := p.attributeValues(fetchCtx, attrs[i].ID)
			if err != nil {
				return nil, &domain.SchemaFetchError{CategoryID: categoryID, Err: err}
			}
			attrs[i].Values = values
		}

		p.cache.Set(key, attrs, cache.NoExpiration)
		logger.WithContext(fetchCtx).Debug().
			Str("category_id", categoryID).
			Int("attributes", len(attrs)).
			Msg("Attribute schema cached")
		return attrs, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneSchema(val.([]domain.Attribute)), nil
}

// attributeValues fetches the options of one attribute at most once.
func (p *SchemaProvider) attributeValues(ctx context.Context, attributeID string) ([]domain.AttributeValueOption, error) {
	key := valuesKey(attributeID)
	if val, found := p.cache.Get(key); found {
		return val.([]domain.AttributeValueOption), nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	val, err, _ := p.group.Do(key, func() (interface{}, error) {
		if val, found := p.cache.Get(key); found {
			return val, nil
		}
		values, err := p.catalog.FetchAttributeValues(fetchCtx, attributeID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch values of attribute %s: %w", attributeID, err)
		}
		if values == nil {
			values = []domain.AttributeValueOption{}
		}
		p.cache.Set(key, values, cache.NoExpiration)
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return val.([]domain.AttributeValueOption), nil
}

// Refresh drops the cached schema of categoryID and the values of its attributes, then
// fetches them again.
func (p *SchemaProvider) Refresh(ctx context.Context, categoryID string) ([]domain.Attribute, error) {
	key := schemaKey(categoryID)
	if val, found := p.cache.Get(key); found {
		for _, attr := range val.([]domain.Attribute) {
			p.cache.Delete(valuesKey(attr.ID))
		}
	}
	p.cache.Delete(key)
	return p.GetSchema(ctx, categoryID)
}

// Attribute returns one attribute of the category schema.
func (p *SchemaProvider) Attribute(ctx context.Context, categoryID, attributeID string) (domain.Attribute, error) {
	schema, err := p.GetSchema(ctx, categoryID)
	if err != nil {
		return domain.Attribute{}, err
	}
	for _, attr := range schema {
		if attr.ID == attributeID {
			return attr, nil
		}
	}
	return domain.Attribute{}, domain.FieldInvalid("attributes."+attributeID, "attribute %s does not belong to this category", attributeID)
}

func cloneSchema(attrs []domain.Attribute) []domain.Attribute {
	out := make([]domain.Attribute, len(attrs))
	for i, attr := range attrs {
		attr.Values = append([]domain.AttributeValueOption(nil), attr.Values...)
		out[i] = attr
	}
	return out
}
