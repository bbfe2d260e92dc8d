package domain

import "context"

type ContextKey string

const (
	MerchantContextKey ContextKey = "merchant"
	BearerContextKey   ContextKey = "bearer"
)

// Merchant is built from token claims; no lookup is made per request.
type Merchant struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func WithMerchant(ctx context.Context, m *Merchant) context.Context {
	return context.WithValue(ctx, MerchantContextKey, m)
}

func MerchantFrom(ctx context.Context) (*Merchant, bool) {
	m, ok := ctx.Value(MerchantContextKey).(*Merchant)
	return m, ok && m != nil
}

// WithBearer attaches the credential forwarded to the catalog API.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, BearerContextKey, token)
}

func BearerFrom(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(BearerContextKey).(string)
	return t, ok && t != ""
}
