package domain

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DraftState is the persistence lifecycle of a draft.
type DraftState string

const (
	StateUnsaved   DraftState = "UNSAVED"
	StateBaseSaved DraftState = "BASE_SAVED"
	StateEditing   DraftState = "EDITING"
)

// Persisted reports whether the product exists upstream, which unlocks the sub-sections.
func (s DraftState) Persisted() bool {
	return s == StateBaseSaved || s == StateEditing
}

type Section string

const (
	SectionBase       Section = "base"
	SectionAttributes Section = "attributes"
	SectionMedia      Section = "media"
	SectionShipping   Section = "shipping"
	SectionMeta       Section = "meta"
	SectionVariants   Section = "variants"
)

var Sections = []Section{
	SectionBase,
	SectionAttributes,
	SectionMedia,
	SectionShipping,
	SectionMeta,
	SectionVariants,
}

var (
	WeightUnits    = []string{"kg", "g", "lb", "oz"}
	DimensionUnits = []string{"cm", "mm", "m", "in"}
)

type Shipping struct {
	Weight        string `json:"weight"`
	WeightUnit    string `json:"weightUnit"`
	Length        string `json:"length"`
	Width         string `json:"width"`
	Height        string `json:"height"`
	DimensionUnit string `json:"dimensionUnit"`
	ShippingClass string `json:"shippingClass"`
}

type SEOMeta struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Keywords    string `json:"keywords"`
}

// ProductDraft is the aggregate the authoring UI mutates. Price fields hold the raw
// strings the merchant typed; they are parsed only when a payload is built.
type ProductDraft struct {
	ID               string `json:"id,omitempty"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	ShortDescription string `json:"shortDescription"`
	FullDescription  string `json:"fullDescription"`
	SKU              string `json:"sku"`

	CostPrice         string  `json:"costPrice"`
	SellingPrice      string  `json:"sellingPrice"`
	SpecialPrice      string  `json:"specialPrice"`
	SpecialPriceStart string  `json:"specialPriceStart"` // YYYY-MM-DD
	SpecialPriceEnd   string  `json:"specialPriceEnd"`
	MarginPercent     float64 `json:"marginPercent"`

	CategoryID    string `json:"categoryId"`
	BrandID       string `json:"brandId"`
	TaxCategoryID string `json:"taxCategoryId"`

	Attributes AttributeAssignment `json:"attributes"`
	Shipping   Shipping            `json:"shipping"`
	Meta       SEOMeta             `json:"meta"`
	Media      []MediaItem         `json:"media"`
	MediaStats *MediaStats         `json:"mediaStats,omitempty"`
	Variants   []Variant           `json:"variants"`
}

func NewProductDraft() *ProductDraft {
	return &ProductDraft{
		Attributes: AttributeAssignment{},
		Shipping:   Shipping{WeightUnit: "kg", DimensionUnit: "cm"},
	}
}

func (d *ProductDraft) Owner() MediaOwner {
	return MediaOwner{Kind: OwnerProduct, ID: d.ID}
}

// --- Field Level Updates ---

type fieldSetter func(d *ProductDraft, value string)

var draftFields = map[string]fieldSetter{
	"name":              func(d *ProductDraft, v string) { d.Name = v },
	"description":       func(d *ProductDraft, v string) { d.Description = v },
	"shortDescription":  func(d *ProductDraft, v string) { d.ShortDescription = v },
	"fullDescription":   func(d *ProductDraft, v string) { d.FullDescription = v },
	"sku":               func(d *ProductDraft, v string) { d.SKU = v },
	"costPrice":         func(d *ProductDraft, v string) { d.CostPrice = v; d.recomputeMargin() },
	"sellingPrice":      func(d *ProductDraft, v string) { d.SellingPrice = v; d.recomputeMargin() },
	"specialPrice":      func(d *ProductDraft, v string) { d.SpecialPrice = v },
	"specialPriceStart": func(d *ProductDraft, v string) { d.SpecialPriceStart = v },
	"specialPriceEnd":   func(d *ProductDraft, v string) { d.SpecialPriceEnd = v },
	"categoryId": func(d *ProductDraft, v string) {
		if v != d.CategoryID {
			// Schema and brand list are category scoped.
			d.Attributes = AttributeAssignment{}
			d.BrandID = ""
		}
		d.CategoryID = v
	},
	"brandId":                func(d *ProductDraft, v string) { d.BrandID = v },
	"taxCategoryId":          func(d *ProductDraft, v string) { d.TaxCategoryID = v },
	"shipping.weight":        func(d *ProductDraft, v string) { d.Shipping.Weight = v },
	"shipping.weightUnit":    func(d *ProductDraft, v string) { d.Shipping.WeightUnit = v },
	"shipping.length":        func(d *ProductDraft, v string) { d.Shipping.Length = v },
	"shipping.width":         func(d *ProductDraft, v string) { d.Shipping.Width = v },
	"shipping.height":        func(d *ProductDraft, v string) { d.Shipping.Height = v },
	"shipping.dimensionUnit": func(d *ProductDraft, v string) { d.Shipping.DimensionUnit = v },
	"shipping.shippingClass": func(d *ProductDraft, v string) { d.Shipping.ShippingClass = v },
	"meta.title":             func(d *ProductDraft, v string) { d.Meta.Title = v },
	"meta.description":       func(d *ProductDraft, v string) { d.Meta.Description = v },
	"meta.keywords":          func(d *ProductDraft, v string) { d.Meta.Keywords = v },
}

// FieldSection maps a draft field to the section that persists it.
func FieldSection(field string) Section {
	switch {
	case strings.HasPrefix(field, "shipping."):
		return SectionShipping
	case strings.HasPrefix(field, "meta."):
		return SectionMeta
	}
	return SectionBase
}

// Set applies one field update.
func (d *ProductDraft) Set(field, value string) error {
	setter, ok := draftFields[field]
	if !ok {
		return FieldInvalid(field, "unknown field %q", field)
	}
	setter(d, value)
	return nil
}

func (d *ProductDraft) recomputeMargin() {
	d.MarginPercent = Margin(d.CostPrice, d.SellingPrice)
}

// Margin returns ((selling-cost)/cost)*100 rounded to two decimals, or 0 when either
// price is unusable or cost is zero.
func Margin(cost, selling string) float64 {
	c, ok := parseAmount(cost)
	if !ok || c == 0 {
		return 0
	}
	s, ok := parseAmount(selling)
	if !ok {
		return 0
	}
	return math.Round((s-c)/c*100*100) / 100
}

func parseAmount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// --- Validation ---

// ValidateBase checks the core fields required before the first save. The returned
// error carries both the aggregated message and per-field flags.
func (d *ProductDraft) ValidateBase() error {
	var fields []FieldError
	add := func(field, msg string) {
		fields = append(fields, FieldError{Field: field, Message: msg})
	}

	if strings.TrimSpace(d.Name) == "" {
		add("name", "Product name is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		add("description", "Description is required")
	}
	if strings.TrimSpace(d.SKU) == "" {
		add("sku", "SKU is required")
	}
	if price, ok := parseAmount(d.SellingPrice); !ok || price <= 0 {
		add("sellingPrice", "Selling price must be greater than 0")
	}
	if d.CategoryID == "" {
		add("categoryId", "Category is required")
	}
	if d.BrandID == "" {
		add("brandId", "Brand is required")
	}
	if strings.TrimSpace(d.CostPrice) != "" {
		if cost, ok := parseAmount(d.CostPrice); !ok || cost < 0 {
			add("costPrice", "Cost price cannot be negative")
		}
	}
	if strings.TrimSpace(d.SpecialPrice) != "" {
		if sp, ok := parseAmount(d.SpecialPrice); !ok || sp < 0 {
			add("specialPrice", "Special price cannot be negative")
		}
	}
	start, startErr := parseDate(d.SpecialPriceStart)
	end, endErr := parseDate(d.SpecialPriceEnd)
	if startErr != nil {
		add("specialPriceStart", "Special price start must be a date (YYYY-MM-DD)")
	}
	if endErr != nil {
		add("specialPriceEnd", "Special price end must be a date (YYYY-MM-DD)")
	}
	if start != nil && end != nil && end.Before(*start) {
		add("specialPriceEnd", "Special price end cannot be before its start")
	}

	if len(fields) > 0 {
		return NewValidationError(string(SectionBase), fields)
	}
	return nil
}

func (d *ProductDraft) ValidateShipping() error {
	var fields []FieldError
	for field, raw := range map[string]string{
		"shipping.weight": d.Shipping.Weight,
		"shipping.length": d.Shipping.Length,
		"shipping.width":  d.Shipping.Width,
		"shipping.height": d.Shipping.Height,
	} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if v, ok := parseAmount(raw); !ok || v < 0 {
			fields = append(fields, FieldError{Field: field, Message: "Must be a non-negative number"})
		}
	}
	if d.Shipping.WeightUnit != "" && !contains(WeightUnits, d.Shipping.WeightUnit) {
		fields = append(fields, FieldError{Field: "shipping.weightUnit", Message: "Unsupported weight unit"})
	}
	if d.Shipping.DimensionUnit != "" && !contains(DimensionUnits, d.Shipping.DimensionUnit) {
		fields = append(fields, FieldError{Field: "shipping.dimensionUnit", Message: "Unsupported dimension unit"})
	}
	if len(fields) > 0 {
		sortFieldErrors(fields)
		return NewValidationError(string(SectionShipping), fields)
	}
	return nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sortFieldErrors(fields []FieldError) {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
}

// --- Persistence Payloads ---

type BaseProductPayload struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	ShortDescription  string   `json:"shortDescription"`
	FullDescription   string   `json:"fullDescription"`
	SKU               string   `json:"sku"`
	CostPrice         *float64 `json:"costPrice"`
	SellingPrice      float64  `json:"sellingPrice"`
	SpecialPrice      *float64 `json:"specialPrice"`
	SpecialPriceStart string   `json:"specialPriceStart,omitempty"`
	SpecialPriceEnd   string   `json:"specialPriceEnd,omitempty"`
	CategoryID        string   `json:"categoryId"`
	BrandID           string   `json:"brandId"`
	TaxCategoryID     string   `json:"taxCategoryId,omitempty"`
}

// SavedProduct is the catalog API answer to a base save.
type SavedProduct struct {
	ProductID string `json:"productId"`
	SKU       string `json:"sku"`
}

func (d *ProductDraft) BasePayload() BaseProductPayload {
	p := BaseProductPayload{
		ID:                d.ID,
		Name:              strings.TrimSpace(d.Name),
		Description:       d.Description,
		ShortDescription:  d.ShortDescription,
		FullDescription:   d.FullDescription,
		SKU:               strings.TrimSpace(d.SKU),
		SpecialPriceStart: d.SpecialPriceStart,
		SpecialPriceEnd:   d.SpecialPriceEnd,
		CategoryID:        d.CategoryID,
		BrandID:           d.BrandID,
		TaxCategoryID:     d.TaxCategoryID,
	}
	p.SellingPrice, _ = parseAmount(d.SellingPrice)
	if v, ok := parseAmount(d.CostPrice); ok {
		p.CostPrice = &v
	}
	// 0 → nil, as the catalog treats a zero special price as "no special price".
	if v, ok := parseAmount(d.SpecialPrice); ok && v > 0 {
		p.SpecialPrice = &v
	}
	return p
}

type ShippingPayload struct {
	Weight        *float64 `json:"weight"`
	WeightUnit    string   `json:"weightUnit"`
	Length        *float64 `json:"length"`
	Width         *float64 `json:"width"`
	Height        *float64 `json:"height"`
	DimensionUnit string   `json:"dimensionUnit"`
	ShippingClass string   `json:"shippingClass"`
}

func (d *ProductDraft) ShippingPayload() ShippingPayload {
	opt := func(raw string) *float64 {
		if v, ok := parseAmount(raw); ok {
			return &v
		}
		return nil
	}
	return ShippingPayload{
		Weight:        opt(d.Shipping.Weight),
		WeightUnit:    d.Shipping.WeightUnit,
		Length:        opt(d.Shipping.Length),
		Width:         opt(d.Shipping.Width),
		Height:        opt(d.Shipping.Height),
		DimensionUnit: d.Shipping.DimensionUnit,
		ShippingClass: d.Shipping.ShippingClass,
	}
}

type MetaPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

func (d *ProductDraft) MetaPayload() MetaPayload {
	keywords := []string{}
	for _, k := range strings.Split(d.Meta.Keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, k)
		}
	}
	return MetaPayload{
		Title:       strings.TrimSpace(d.Meta.Title),
		Description: strings.TrimSpace(d.Meta.Description),
		Keywords:    keywords,
	}
}

// Clone deep-copies the draft, including variants and media collections.
func (d *ProductDraft) Clone() *ProductDraft {
	out := *d
	out.Attributes = d.Attributes.Clone()
	out.Media = append([]MediaItem(nil), d.Media...)
	if d.MediaStats != nil {
		stats := *d.MediaStats
		out.MediaStats = &stats
	}
	out.Variants = make([]Variant, len(d.Variants))
	for i, v := range d.Variants {
		out.Variants[i] = v.Clone()
	}
	return &out
}

// FindVariant returns the index of the variant addressed by ref, or -1.
func (d *ProductDraft) FindVariant(ref string) int {
	for i := range d.Variants {
		if d.Variants[i].Matches(ref) {
			return i
		}
	}
	return -1
}
