package catalogapi

import (
	"context"
	"net/http"
	"strconv"

	"merchant-studio/internal/domain"
)

type variantDTO struct {
	ID         string                     `json:"id"`
	SKU        string                     `json:"sku"`
	Price      float64                    `json:"price"`
	Stock      int                        `json:"stock"`
	Attributes domain.AttributeAssignment `json:"attributes"`
	Media      []domain.MediaItem         `json:"media"`
}

func (v variantDTO) toVariant() domain.Variant {
	attrs := v.Attributes
	if attrs == nil {
		attrs = domain.AttributeAssignment{}
	}
	return domain.Variant{
		ID:         v.ID,
		Key:        v.ID,
		SKU:        v.SKU,
		Price:      strconv.FormatFloat(v.Price, 'f', -1, 64),
		Stock:      strconv.Itoa(v.Stock),
		Attributes: attrs,
		Media:      v.Media,
	}
}

func (c *Client) ListVariants(ctx context.Context, productID string) ([]domain.Variant, error) {
	var dtos []variantDTO
	err := c.do(ctx, call{
		op:     "list variants",
		method: http.MethodGet,
		path:   "/products/" + escape(productID) + "/variants",
		out:    &dtos,
	})
	if err != nil {
		return nil, err
	}
	variants := make([]domain.Variant, 0, len(dtos))
	for _, dto := range dtos {
		variants = append(variants, dto.toVariant())
	}
	return variants, nil
}

func (c *Client) CreateVariant(ctx context.Context, productID string, payload domain.VariantPayload) (*domain.Variant, error) {
	var dto variantDTO
	err := c.do(ctx, call{
		op:     "create variant",
		method: http.MethodPost,
		path:   "/products/" + escape(productID) + "/variants",
		body:   payload,
		out:    &dto,
		write:  true,
	})
	if err != nil {
		return nil, err
	}
	v := dto.toVariant()
	return &v, nil
}

// UpdateVariant sends a partial update; patch holds the single field that changed.
func (c *Client) UpdateVariant(ctx context.Context, variantID string, patch domain.VariantPatch) error {
	return c.do(ctx, call{
		op:     "update variant",
		method: http.MethodPatch,
		path:   "/variants/" + escape(variantID),
		body:   patch,
		write:  true,
	})
}

func (c *Client) DeleteVariant(ctx context.Context, variantID string) error {
	return c.do(ctx, call{
		op:     "delete variant",
		method: http.MethodDelete,
		path:   "/variants/" + escape(variantID),
		write:  true,
	})
}
