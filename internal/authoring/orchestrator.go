package authoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"
)

// Orchestrator sequences the partial saves of a draft. The base product must exist
// before any other section can be touched; after that each section saves on its own and
// keeps its own message state. Nothing is retried automatically.
type Orchestrator struct {
	products domain.ProductWriter
	schema   *SchemaProvider
	media    *MediaSlotAllocator
	variants *VariantMatrix
	sessions *SessionManager
}

func NewOrchestrator(products domain.ProductWriter, schema *SchemaProvider, media *MediaSlotAllocator, variants *VariantMatrix, sessions *SessionManager) *Orchestrator {
	return &Orchestrator{
		products: products,
		schema:   schema,
		media:    media,
		variants: variants,
		sessions: sessions,
	}
}

// step is the working copy an operation mutates. It is committed to the session only
// if the session is still open when the operation returns.
type step struct {
	draft    *domain.ProductDraft
	state    domain.DraftState
	warnings []domain.FieldError
	// local marks edits that do not touch the section's message state.
	local bool
}

type opFunc func(ctx context.Context, st *step) (string, error)

func (o *Orchestrator) run(ctx context.Context, s *Session, sec domain.Section, op opFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Closed() {
		return domain.ErrSessionNotFound
	}
	if err := lockedError(s.state, sec); err != nil {
		return err
	}

	st := &step{draft: s.draft.Clone(), state: s.state}
	msg, opErr := op(ctx, st)

	if s.Closed() {
		logger.WithSession(ctx, s.ID).Debug().
			Str("section", string(sec)).
			Msg("Session closed during operation, result discarded")
		return domain.ErrSessionNotFound
	}

	// A failed local edit leaves the draft as it was.
	if opErr == nil || !st.local {
		s.draft = st.draft
		s.state = st.state
	}
	s.updatedAt = time.Now()
	if !st.local || opErr != nil {
		s.sections[sec] = sectionOutcome(msg, st.warnings, opErr)
	}

	saveErr := o.sessions.save(ctx, s)
	if s.Closed() {
		logger.WithSession(ctx, s.ID).Debug().
			Str("section", string(sec)).
			Msg("Session closed while saving, result discarded")
		return domain.ErrSessionNotFound
	}
	if saveErr != nil && opErr == nil {
		return saveErr
	}
	return opErr
}

// sectionOutcome converts an operation result into the section's message state.
func sectionOutcome(msg string, warnings []domain.FieldError, err error) domain.SectionState {
	if err == nil {
		return domain.SectionState{Success: msg, FieldErrors: warnings}
	}

	state := domain.SectionState{
		Error:     domain.UserMessage(err),
		Retryable: domain.IsRetryable(err),
	}
	var valErr *domain.ValidationError
	var persistErr *domain.PersistenceError
	switch {
	case errors.As(err, &valErr):
		state.FieldErrors = valErr.Fields
	case errors.As(err, &persistErr) && persistErr.Field != "":
		// Field level rejection: shown next to the field, not as a section banner.
		state.Error = ""
		state.FieldErrors = []domain.FieldError{{Field: persistErr.Field, Message: persistErr.Error()}}
	}
	return state
}

// --- Draft Fields ---

type FieldUpdate struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ApplyFields performs local field-level edits. Fields of locked sections are rejected.
func (o *Orchestrator) ApplyFields(ctx context.Context, s *Session, updates []FieldUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	sec := domain.FieldSection(updates[0].Field)
	for _, u := range updates[1:] {
		if domain.FieldSection(u.Field) != sec {
			return domain.FieldInvalid(u.Field, "fields of different sections must be updated separately")
		}
	}
	return o.run(ctx, s, sec, func(_ context.Context, st *step) (string, error) {
		st.local = true
		for _, u := range updates {
			if err := st.draft.Set(u.Field, u.Value); err != nil {
				return "", err
			}
		}
		return "", nil
	})
}

// SaveBase validates the core fields and creates or updates the product. The first
// successful save moves an UNSAVED draft to BASE_SAVED.
func (o *Orchestrator) SaveBase(ctx context.Context, s *Session) error {
	return o.run(ctx, s, domain.SectionBase, func(ctx context.Context, st *step) (string, error) {
		if err := st.draft.ValidateBase(); err != nil {
			return "", err
		}
		saved, err := o.products.SaveBaseProduct(ctx, st.draft.BasePayload())
		if err != nil {
			return "", err
		}
		st.draft.ID = saved.ProductID
		if saved.SKU != "" {
			st.draft.SKU = saved.SKU
		}
		if st.state == domain.StateUnsaved {
			st.state = domain.StateBaseSaved
		}
		logger.WithSession(ctx, s.ID).Info().Str("product_id", saved.ProductID).Msg("Base product saved")
		return "Product information saved.", nil
	})
}

// --- Attributes ---

// AssignAttribute stores one attribute value typed by the merchant.
func (o *Orchestrator) AssignAttribute(ctx context.Context, s *Session, attributeID, raw string) error {
	return o.withAttribute(ctx, s, attributeID, func(st *step, attr domain.Attribute) error {
		return domain.AssignAttribute(st.draft.Attributes, attr, raw)
	})
}

// ToggleAttribute flips one option of a multiselect attribute.
func (o *Orchestrator) ToggleAttribute(ctx context.Context, s *Session, attributeID, option string) error {
	return o.withAttribute(ctx, s, attributeID, func(st *step, attr domain.Attribute) error {
		return domain.ToggleAttribute(st.draft.Attributes, attr, option)
	})
}

func (o *Orchestrator) withAttribute(ctx context.Context, s *Session, attributeID string, apply func(*step, domain.Attribute) error) error {
	return o.run(ctx, s, domain.SectionAttributes, func(ctx context.Context, st *step) (string, error) {
		st.local = true
		if st.draft.CategoryID == "" {
			return "", domain.FieldInvalid("categoryId", "select a category first")
		}
		attr, err := o.schema.Attribute(ctx, st.draft.CategoryID, attributeID)
		if err != nil {
			return "", err
		}
		if st.draft.Attributes == nil {
			st.draft.Attributes = domain.AttributeAssignment{}
		}
		return "", apply(st, attr)
	})
}

// SaveAttributes validates every attribute of the category schema, reporting one error
// per failing attribute, then saves the assignment.
func (o *Orchestrator) SaveAttributes(ctx context.Context, s *Session) error {
	return o.run(ctx, s, domain.SectionAttributes, func(ctx context.Context, st *step) (string, error) {
		schema, err := o.schema.GetSchema(ctx, st.draft.CategoryID)
		if err != nil {
			return "", err
		}
		if fields := domain.ValidateAssignment(schema, st.draft.Attributes, true); len(fields) > 0 {
			return "", domain.NewValidationError(string(domain.SectionAttributes), fields)
		}

		values := domain.AttributeAssignment{}
		for _, attr := range schema {
			if v, ok := st.draft.Attributes[attr.ID]; ok && !v.IsEmpty() {
				values[attr.ID] = v
			}
		}
		if err := o.products.SaveAttributeValues(ctx, st.draft.ID, values); err != nil {
			return "", err
		}
		return "Attributes saved.", nil
	})
}

// --- Shipping & Meta ---

func (o *Orchestrator) SaveShipping(ctx context.Context, s *Session) error {
	return o.run(ctx, s, domain.SectionShipping, func(ctx context.Context, st *step) (string, error) {
		if err := st.draft.ValidateShipping(); err != nil {
			return "", err
		}
		if err := o.products.SaveShipping(ctx, st.draft.ID, st.draft.ShippingPayload()); err != nil {
			return "", err
		}
		return "Shipping details saved.", nil
	})
}

func (o *Orchestrator) SaveMeta(ctx context.Context, s *Session) error {
	return o.run(ctx, s, domain.SectionMeta, func(ctx context.Context, st *step) (string, error) {
		if err := o.products.SaveMeta(ctx, st.draft.ID, st.draft.MetaPayload()); err != nil {
			return "", err
		}
		return "SEO details saved.", nil
	})
}

// --- Media ---

// mediaTarget resolves the owner of a media operation: the product for an empty
// variantRef, otherwise a persisted variant.
type mediaTarget struct {
	owner domain.MediaOwner
	items *[]domain.MediaItem
	stats **domain.MediaStats
}

func resolveMediaTarget(draft *domain.ProductDraft, variantRef string) (*mediaTarget, error) {
	if variantRef == "" {
		return &mediaTarget{owner: draft.Owner(), items: &draft.Media, stats: &draft.MediaStats}, nil
	}
	idx, err := findVariant(draft, variantRef)
	if err != nil {
		return nil, err
	}
	v := &draft.Variants[idx]
	if !v.Persisted() {
		return nil, domain.FieldInvalid("variants."+v.Key, "save the variant before adding media")
	}
	return &mediaTarget{owner: v.Owner(), items: &v.Media, stats: &v.Stats}, nil
}

func mediaSection(variantRef string) domain.Section {
	if variantRef == "" {
		return domain.SectionMedia
	}
	return domain.SectionVariants
}

// MediaStats refreshes the slot counts of the product or one of its variants.
func (o *Orchestrator) MediaStats(ctx context.Context, s *Session, variantRef string) (*domain.MediaStats, error) {
	var stats *domain.MediaStats
	err := o.run(ctx, s, mediaSection(variantRef), func(ctx context.Context, st *step) (string, error) {
		st.local = true
		target, err := resolveMediaTarget(st.draft, variantRef)
		if err != nil {
			return "", err
		}
		if stats, err = o.media.Stats(ctx, target.owner); err != nil {
			return "", err
		}
		*target.stats = stats
		return "", nil
	})
	return stats, err
}

// UploadMedia sends a batch to the product (empty variantRef) or a variant. Per-file
// failures are reported in the result and as section warnings; they do not fail the call.
func (o *Orchestrator) UploadMedia(ctx context.Context, s *Session, variantRef string, files []domain.MediaFile) (*UploadReport, error) {
	var report *UploadReport
	err := o.run(ctx, s, mediaSection(variantRef), func(ctx context.Context, st *step) (string, error) {
		target, err := resolveMediaTarget(st.draft, variantRef)
		if err != nil {
			return "", err
		}
		if report, err = o.media.Upload(ctx, target.owner, files); err != nil {
			return "", err
		}

		uploaded := report.Uploaded()
		*target.items = append(*target.items, uploaded...)
		if report.Stats != nil {
			*target.stats = report.Stats
		}
		for _, f := range report.Failures() {
			st.warnings = append(st.warnings, domain.FieldError{Field: "files." + f.Name, Message: f.Error})
		}
		return fmt.Sprintf("%d of %d files uploaded.", len(uploaded), len(files)), nil
	})
	return report, err
}

func (o *Orchestrator) DeleteMedia(ctx context.Context, s *Session, variantRef, mediaID string) error {
	return o.run(ctx, s, mediaSection(variantRef), func(ctx context.Context, st *step) (string, error) {
		target, err := resolveMediaTarget(st.draft, variantRef)
		if err != nil {
			return "", err
		}
		stats, err := o.media.Delete(ctx, target.owner, mediaID)
		if err != nil {
			return "", err
		}
		*target.items = domain.RemoveMedia(*target.items, mediaID)
		*target.stats = stats
		return "Media removed.", nil
	})
}

func (o *Orchestrator) SetPrimaryMedia(ctx context.Context, s *Session, variantRef, mediaID string) error {
	return o.run(ctx, s, mediaSection(variantRef), func(ctx context.Context, st *step) (string, error) {
		target, err := resolveMediaTarget(st.draft, variantRef)
		if err != nil {
			return "", err
		}
		if err := o.media.SetPrimary(ctx, target.owner, target.items, mediaID); err != nil {
			return "", err
		}
		return "Primary media updated.", nil
	})
}

// --- Variants ---

func (o *Orchestrator) variantSchema(ctx context.Context, draft *domain.ProductDraft) ([]domain.Attribute, error) {
	if draft.CategoryID == "" {
		return nil, nil
	}
	return o.schema.GetSchema(ctx, draft.CategoryID)
}

func (o *Orchestrator) AddVariant(ctx context.Context, s *Session, input VariantInput) (*domain.Variant, error) {
	var added domain.Variant
	err := o.run(ctx, s, domain.SectionVariants, func(ctx context.Context, st *step) (string, error) {
		schema, err := o.variantSchema(ctx, st.draft)
		if err != nil {
			return "", err
		}
		v, err := o.variants.Add(ctx, st.draft, schema, input)
		if v != nil {
			added = v.Clone()
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Variant %s added.", v.SKU), nil
	})
	if added.Key == "" {
		return nil, err
	}
	return &added, err
}

func (o *Orchestrator) PersistVariant(ctx context.Context, s *Session, ref string) error {
	return o.run(ctx, s, domain.SectionVariants, func(ctx context.Context, st *step) (string, error) {
		v, err := o.variants.Persist(ctx, st.draft, ref)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Variant %s saved.", v.SKU), nil
	})
}

// UpdateVariant saves a single variant field.
func (o *Orchestrator) UpdateVariant(ctx context.Context, s *Session, ref, field, value string) error {
	return o.run(ctx, s, domain.SectionVariants, func(ctx context.Context, st *step) (string, error) {
		if err := o.variants.Update(ctx, st.draft, ref, field, value); err != nil {
			return "", err
		}
		return "Variant updated.", nil
	})
}

func (o *Orchestrator) SetVariantAttributes(ctx context.Context, s *Session, ref string, assignment domain.AttributeAssignment) error {
	return o.run(ctx, s, domain.SectionVariants, func(ctx context.Context, st *step) (string, error) {
		schema, err := o.variantSchema(ctx, st.draft)
		if err != nil {
			return "", err
		}
		if err := o.variants.SetAttributes(ctx, st.draft, ref, schema, assignment); err != nil {
			return "", err
		}
		return "Variant attributes saved.", nil
	})
}

func (o *Orchestrator) RemoveVariant(ctx context.Context, s *Session, ref string) error {
	return o.run(ctx, s, domain.SectionVariants, func(ctx context.Context, st *step) (string, error) {
		if err := o.variants.Remove(ctx, st.draft, ref); err != nil {
			return "", err
		}
		return "Variant removed.", nil
	})
}

func (o *Orchestrator) RefreshVariants(ctx context.Context, s *Session) error {
	return o.run(ctx, s, domain.SectionVariants, func(ctx context.Context, st *step) (string, error) {
		st.local = true
		return "", o.variants.Refresh(ctx, st.draft)
	})
}
