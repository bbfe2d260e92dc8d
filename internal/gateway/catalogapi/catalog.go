package catalogapi

import (
	"context"
	"net/http"
	"net/url"

	"merchant-studio/internal/domain"
)

func (c *Client) FetchCategoryTree(ctx context.Context) ([]domain.Category, error) {
	var tree []domain.Category
	err := c.do(ctx, call{op: "fetch categories", method: http.MethodGet, path: "/categories/tree", out: &tree})
	return tree, err
}

// FetchSchema returns the ordered attributes of a category. Select options may be absent
// and have to be fetched per attribute.
func (c *Client) FetchSchema(ctx context.Context, categoryID string) ([]domain.Attribute, error) {
	var attrs []domain.Attribute
	err := c.do(ctx, call{
		op:     "fetch attribute schema",
		method: http.MethodGet,
		path:   "/categories/" + escape(categoryID) + "/attributes",
		out:    &attrs,
	})
	return attrs, err
}

func (c *Client) FetchAttributeValues(ctx context.Context, attributeID string) ([]domain.AttributeValueOption, error) {
	var values []domain.AttributeValueOption
	err := c.do(ctx, call{
		op:     "fetch attribute values",
		method: http.MethodGet,
		path:   "/attributes/" + escape(attributeID) + "/values",
		out:    &values,
	})
	return values, err
}

// FetchBrands lists brands, narrowed to a category when categoryID is set.
func (c *Client) FetchBrands(ctx context.Context, categoryID string) ([]domain.Brand, error) {
	var query url.Values
	if categoryID != "" {
		query = url.Values{"categoryId": {categoryID}}
	}
	var brands []domain.Brand
	err := c.do(ctx, call{op: "fetch brands", method: http.MethodGet, path: "/brands", query: query, out: &brands})
	return brands, err
}

func (c *Client) FetchTaxCategories(ctx context.Context) ([]domain.TaxCategory, error) {
	var taxes []domain.TaxCategory
	err := c.do(ctx, call{op: "fetch tax categories", method: http.MethodGet, path: "/tax-categories", out: &taxes})
	return taxes, err
}
