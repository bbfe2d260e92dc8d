package catalogapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"merchant-studio/internal/domain"
)

// productDTO is the catalog API representation of a product. Amounts are numbers
// upstream and strings in the draft.
type productDTO struct {
	ID                string                     `json:"id"`
	Name              string                     `json:"name"`
	Description       string                     `json:"description"`
	ShortDescription  string                     `json:"shortDescription"`
	FullDescription   string                     `json:"fullDescription"`
	SKU               string                     `json:"sku"`
	CostPrice         *float64                   `json:"costPrice"`
	SellingPrice      *float64                   `json:"sellingPrice"`
	SpecialPrice      *float64                   `json:"specialPrice"`
	SpecialPriceStart string                     `json:"specialPriceStart"`
	SpecialPriceEnd   string                     `json:"specialPriceEnd"`
	CategoryID        string                     `json:"categoryId"`
	BrandID           string                     `json:"brandId"`
	TaxCategoryID     string                     `json:"taxCategoryId"`
	Attributes        domain.AttributeAssignment `json:"attributes"`
	Shipping          domain.ShippingPayload     `json:"shipping"`
	Meta              domain.MetaPayload         `json:"meta"`
	Media             []domain.MediaItem         `json:"media"`
	MediaStats        *domain.MediaStats         `json:"mediaStats"`
}

func formatAmount(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (p *productDTO) toDraft() *domain.ProductDraft {
	d := domain.NewProductDraft()
	d.ID = p.ID
	d.Name = p.Name
	d.Description = p.Description
	d.ShortDescription = p.ShortDescription
	d.FullDescription = p.FullDescription
	d.SKU = p.SKU
	d.CostPrice = formatAmount(p.CostPrice)
	d.SellingPrice = formatAmount(p.SellingPrice)
	d.SpecialPrice = formatAmount(p.SpecialPrice)
	d.SpecialPriceStart = p.SpecialPriceStart
	d.SpecialPriceEnd = p.SpecialPriceEnd
	d.CategoryID = p.CategoryID
	d.BrandID = p.BrandID
	d.TaxCategoryID = p.TaxCategoryID
	if p.Attributes != nil {
		d.Attributes = p.Attributes
	}

	d.Shipping.Weight = formatAmount(p.Shipping.Weight)
	d.Shipping.Length = formatAmount(p.Shipping.Length)
	d.Shipping.Width = formatAmount(p.Shipping.Width)
	d.Shipping.Height = formatAmount(p.Shipping.Height)
	d.Shipping.ShippingClass = p.Shipping.ShippingClass
	if p.Shipping.WeightUnit != "" {
		d.Shipping.WeightUnit = p.Shipping.WeightUnit
	}
	if p.Shipping.DimensionUnit != "" {
		d.Shipping.DimensionUnit = p.Shipping.DimensionUnit
	}

	d.Meta = domain.SEOMeta{
		Title:       p.Meta.Title,
		Description: p.Meta.Description,
		Keywords:    strings.Join(p.Meta.Keywords, ", "),
	}
	d.Media = p.Media
	if p.MediaStats != nil {
		stats := p.MediaStats.Normalize()
		d.MediaStats = &stats
	}
	return d
}

func (c *Client) FetchProduct(ctx context.Context, productID string) (*domain.ProductDraft, error) {
	var dto productDTO
	err := c.do(ctx, call{
		op:     "fetch product",
		method: http.MethodGet,
		path:   "/products/" + escape(productID),
		out:    &dto,
	})
	if err != nil {
		return nil, err
	}
	return dto.toDraft(), nil
}

// SaveBaseProduct creates the product on first save and updates it afterwards.
func (c *Client) SaveBaseProduct(ctx context.Context, payload domain.BaseProductPayload) (*domain.SavedProduct, error) {
	cl := call{op: "create product", method: http.MethodPost, path: "/products", body: payload, write: true}
	if payload.ID != "" {
		cl = call{op: "update product", method: http.MethodPut, path: "/products/" + escape(payload.ID), body: payload, write: true}
	}
	var saved domain.SavedProduct
	cl.out = &saved
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	if saved.ProductID == "" {
		saved.ProductID = payload.ID
	}
	return &saved, nil
}

func (c *Client) SaveAttributeValues(ctx context.Context, productID string, values domain.AttributeAssignment) error {
	return c.do(ctx, call{
		op:     "save attributes",
		method: http.MethodPut,
		path:   "/products/" + escape(productID) + "/attributes",
		body:   map[string]interface{}{"attributes": values},
		write:  true,
	})
}

func (c *Client) SaveShipping(ctx context.Context, productID string, payload domain.ShippingPayload) error {
	return c.do(ctx, call{
		op:     "save shipping",
		method: http.MethodPut,
		path:   "/products/" + escape(productID) + "/shipping",
		body:   payload,
		write:  true,
	})
}

func (c *Client) SaveMeta(ctx context.Context, productID string, payload domain.MetaPayload) error {
	return c.do(ctx, call{
		op:     "save seo meta",
		method: http.MethodPut,
		path:   "/products/" + escape(productID) + "/meta",
		body:   payload,
		write:  true,
	})
}
