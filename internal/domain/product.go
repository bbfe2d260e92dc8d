package domain

// --- Catalog Reference Data (read-only for the authoring core) ---

type Category struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	ParentID *string    `json:"parentId"`
	Children []Category `json:"children"`
}

type Brand struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type TaxCategory struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Rate float64 `json:"rate"` // Display only
}

// --- Attribute Schema ---

type AttributeType string

const (
	AttributeText        AttributeType = "text"
	AttributeNumber      AttributeType = "number"
	AttributeSelect      AttributeType = "select"
	AttributeMultiSelect AttributeType = "multiselect"
	AttributeBoolean     AttributeType = "boolean"
)

// IsEnumerated reports whether values must come from a declared option list.
func (t AttributeType) IsEnumerated() bool {
	return t == AttributeSelect || t == AttributeMultiSelect
}

type AttributeValueOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type Attribute struct {
	ID       string                 `json:"id"`
	Name     string                 `json:"name"`
	Type     AttributeType          `json:"type"`
	Required bool                   `json:"required"`
	HelpText string                 `json:"helpText"`
	Values   []AttributeValueOption `json:"values"`
}

// MatchOption resolves raw against the declared options, by label first then by code.
func (a Attribute) MatchOption(raw string) (AttributeValueOption, bool) {
	for _, opt := range a.Values {
		if opt.Label == raw {
			return opt, true
		}
	}
	for _, opt := range a.Values {
		if opt.Code == raw {
			return opt, true
		}
	}
	return AttributeValueOption{}, false
}

// --- Variants ---

type Variant struct {
	ID         string              `json:"id,omitempty"` // Empty until persisted
	Key        string              `json:"key"`          // Local handle, stable across persistence
	SKU        string              `json:"sku"`
	Price      string              `json:"price"`
	Stock      string              `json:"stock"`
	Attributes AttributeAssignment `json:"attributes"`
	Media      []MediaItem         `json:"media"`
	Stats      *MediaStats         `json:"mediaStats,omitempty"`

	// Last persistence failure per field (e.g. "sku" on a duplicate SKU).
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func (v *Variant) Persisted() bool {
	return v.ID != ""
}

// Owner is the media scope of the variant. Only valid once persisted.
func (v *Variant) Owner() MediaOwner {
	return MediaOwner{Kind: OwnerVariant, ID: v.ID}
}

// Matches reports whether ref addresses this variant by persisted id or local key.
func (v *Variant) Matches(ref string) bool {
	return ref != "" && (v.ID == ref || v.Key == ref)
}

// VariantPayload is what the catalog API receives on create.
type VariantPayload struct {
	SKU        string              `json:"sku"`
	Price      float64             `json:"price"`
	Stock      int                 `json:"stock"`
	Attributes AttributeAssignment `json:"attributes"`
}

// VariantPatch carries exactly one changed field per call.
type VariantPatch map[string]interface{}

func (v Variant) Clone() Variant {
	out := v
	out.Attributes = v.Attributes.Clone()
	out.Media = append([]MediaItem(nil), v.Media...)
	if v.Stats != nil {
		stats := *v.Stats
		out.Stats = &stats
	}
	if v.FieldErrors != nil {
		out.FieldErrors = make(map[string]string, len(v.FieldErrors))
		for k, msg := range v.FieldErrors {
			out.FieldErrors[k] = msg
		}
	}
	return out
}
