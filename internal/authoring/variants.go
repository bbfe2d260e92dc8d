package authoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"
	"merchant-studio/pkg/utils"
)

// VariantInput is the raw form data of a new variant.
type VariantInput struct {
	SKU        string                     `json:"sku"`
	Price      string                     `json:"price"`
	Stock      string                     `json:"stock"`
	Attributes domain.AttributeAssignment `json:"attributes"`
}

// VariantMatrix manages the variants of one draft. Every field change of a persisted
// variant is saved with its own call.
type VariantMatrix struct {
	variants domain.VariantGateway
}

func NewVariantMatrix(variants domain.VariantGateway) *VariantMatrix {
	return &VariantMatrix{variants: variants}
}

// Add validates input, appends the variant and creates it upstream. When the catalog
// rejects it, the variant stays in the draft unpersisted with the error on its SKU field.
func (m *VariantMatrix) Add(ctx context.Context, draft *domain.ProductDraft, schema []domain.Attribute, input VariantInput) (*domain.Variant, error) {
	fields := validateVariantFields(input.SKU, input.Price, input.Stock)
	attrs := input.Attributes
	if attrs == nil {
		attrs = domain.AttributeAssignment{}
	}
	fields = append(fields, domain.ValidateAssignment(schema, attrs, false)...)
	if len(fields) > 0 {
		return nil, domain.NewValidationError(string(domain.SectionVariants), fields)
	}

	draft.Variants = append(draft.Variants, domain.Variant{
		Key:        utils.GenerateUUID(),
		SKU:        strings.TrimSpace(input.SKU),
		Price:      strings.TrimSpace(input.Price),
		Stock:      strings.TrimSpace(input.Stock),
		Attributes: attrs.Clone(),
	})
	idx := len(draft.Variants) - 1
	err := m.create(ctx, draft, idx)
	return &draft.Variants[idx], err
}

// Persist retries creation of an unpersisted variant.
func (m *VariantMatrix) Persist(ctx context.Context, draft *domain.ProductDraft, ref string) (*domain.Variant, error) {
	idx, err := findVariant(draft, ref)
	if err != nil {
		return nil, err
	}
	if draft.Variants[idx].Persisted() {
		return &draft.Variants[idx], nil
	}
	err = m.create(ctx, draft, idx)
	return &draft.Variants[idx], err
}

func (m *VariantMatrix) create(ctx context.Context, draft *domain.ProductDraft, idx int) error {
	v := &draft.Variants[idx]
	price, _ := strconv.ParseFloat(v.Price, 64)
	stock, _ := strconv.Atoi(v.Stock)

	created, err := m.variants.CreateVariant(ctx, draft.ID, domain.VariantPayload{
		SKU:        v.SKU,
		Price:      price,
		Stock:      stock,
		Attributes: v.Attributes,
	})
	if err != nil {
		return variantFieldError(v, "sku", err)
	}

	v.ID = created.ID
	if created.SKU != "" {
		v.SKU = created.SKU
	}
	v.FieldErrors = nil
	logger.WithContext(ctx).Info().Str("variant_id", v.ID).Str("sku", v.SKU).Msg("Variant created")
	return nil
}

// Remove deletes a persisted variant upstream first; a draft-only variant is dropped locally.
func (m *VariantMatrix) Remove(ctx context.Context, draft *domain.ProductDraft, ref string) error {
	idx, err := findVariant(draft, ref)
	if err != nil {
		return err
	}
	if v := draft.Variants[idx]; v.Persisted() {
		if err := m.variants.DeleteVariant(ctx, v.ID); err != nil {
			return err
		}
	}
	draft.Variants = append(draft.Variants[:idx], draft.Variants[idx+1:]...)
	return nil
}

// Update changes one of sku, price or stock and, for persisted variants, saves just that field.
func (m *VariantMatrix) Update(ctx context.Context, draft *domain.ProductDraft, ref, field, value string) error {
	idx, err := findVariant(draft, ref)
	if err != nil {
		return err
	}
	v := &draft.Variants[idx]
	value = strings.TrimSpace(value)

	var patch domain.VariantPatch
	switch field {
	case "sku":
		if fields := validateVariantFields(value, "0", "0"); len(fields) > 0 {
			return domain.NewValidationError(string(domain.SectionVariants), fields)
		}
		v.SKU = value
		patch = domain.VariantPatch{"sku": value}
	case "price":
		price, err := parseVariantPrice(value)
		if err != nil {
			return err
		}
		v.Price = value
		patch = domain.VariantPatch{"price": price}
	case "stock":
		stock, err := parseVariantStock(value)
		if err != nil {
			return err
		}
		v.Stock = value
		patch = domain.VariantPatch{"stock": stock}
	default:
		return domain.FieldInvalid("field", "variant field %q cannot be edited", field)
	}

	if !v.Persisted() {
		return nil
	}
	if err := m.variants.UpdateVariant(ctx, v.ID, patch); err != nil {
		return variantFieldError(v, field, err)
	}
	delete(v.FieldErrors, field)
	return nil
}

// SetAttributes replaces the variant's assignment. Values must belong to the parent
// category schema; required attributes are not enforced per variant.
func (m *VariantMatrix) SetAttributes(ctx context.Context, draft *domain.ProductDraft, ref string, schema []domain.Attribute, assignment domain.AttributeAssignment) error {
	idx, err := findVariant(draft, ref)
	if err != nil {
		return err
	}
	if assignment == nil {
		assignment = domain.AttributeAssignment{}
	}
	if fields := domain.ValidateAssignment(schema, assignment, false); len(fields) > 0 {
		return domain.NewValidationError(string(domain.SectionVariants), fields)
	}

	v := &draft.Variants[idx]
	v.Attributes = assignment.Clone()
	if !v.Persisted() {
		return nil
	}
	if err := m.variants.UpdateVariant(ctx, v.ID, domain.VariantPatch{"attributes": v.Attributes}); err != nil {
		return variantFieldError(v, "attributes", err)
	}
	delete(v.FieldErrors, "attributes")
	return nil
}

// Refresh reloads persisted variants from the catalog, keeping local keys, media and
// any variants that were never persisted.
func (m *VariantMatrix) Refresh(ctx context.Context, draft *domain.ProductDraft) error {
	listed, err := m.variants.ListVariants(ctx, draft.ID)
	if err != nil {
		return err
	}

	known := make(map[string]domain.Variant, len(draft.Variants))
	var drafts []domain.Variant
	for _, v := range draft.Variants {
		if v.Persisted() {
			known[v.ID] = v
		} else {
			drafts = append(drafts, v)
		}
	}

	merged := make([]domain.Variant, 0, len(listed)+len(drafts))
	for _, v := range listed {
		if prev, ok := known[v.ID]; ok {
			v.Key = prev.Key
			if len(v.Media) == 0 {
				v.Media = prev.Media
			}
			v.Stats = prev.Stats
		}
		if v.Key == "" {
			v.Key = v.ID
		}
		merged = append(merged, v)
	}
	draft.Variants = append(merged, drafts...)
	return nil
}

func findVariant(draft *domain.ProductDraft, ref string) (int, error) {
	idx := draft.FindVariant(ref)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", domain.ErrVariantNotFound, ref)
	}
	return idx, nil
}

// variantFieldError pins a server rejection to the variant field it concerns.
func variantFieldError(v *domain.Variant, field string, err error) error {
	var persistErr *domain.PersistenceError
	if !errors.As(err, &persistErr) {
		return err
	}
	if persistErr.Field != "" {
		field = persistErr.Field
	}
	if v.FieldErrors == nil {
		v.FieldErrors = map[string]string{}
	}
	v.FieldErrors[field] = persistErr.Error()

	pinned := *persistErr
	pinned.Field = fmt.Sprintf("variants.%s.%s", v.Key, field)
	return &pinned
}

func validateVariantFields(sku, price, stock string) []domain.FieldError {
	var fields []domain.FieldError
	if strings.TrimSpace(sku) == "" {
		fields = append(fields, domain.FieldError{Field: "sku", Message: "Variant SKU is required"})
	}
	if _, err := parseVariantPrice(price); err != nil {
		fields = append(fields, domain.FieldError{Field: "price", Message: "Variant price must be a number of at least 0"})
	}
	if _, err := parseVariantStock(stock); err != nil {
		fields = append(fields, domain.FieldError{Field: "stock", Message: "Variant stock must be a whole number of at least 0"})
	}
	return fields
}

func parseVariantPrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || price < 0 {
		return 0, domain.FieldInvalid("price", "Variant price must be a number of at least 0")
	}
	return price, nil
}

func parseVariantStock(raw string) (int, error) {
	stock, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || stock < 0 {
		return 0, domain.FieldInvalid("stock", "Variant stock must be a whole number of at least 0")
	}
	return stock, nil
}
