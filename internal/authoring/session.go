package authoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/cache"
	"merchant-studio/pkg/logger"
	"merchant-studio/pkg/utils"

	"golang.org/x/sync/singleflight"
)

// Session is one editing session: exactly one draft, its lifecycle state and the
// message state of each section. Operations on a session are serialized.
type Session struct {
	mu     sync.Mutex
	closed atomic.Bool
	// persistMu orders store writes against Close.
	persistMu sync.Mutex

	ID         string
	MerchantID string
	state      domain.DraftState
	draft      *domain.ProductDraft
	sections   map[domain.Section]domain.SectionState
	updatedAt  time.Time
}

func newSession(merchantID string, state domain.DraftState, draft *domain.ProductDraft) *Session {
	return &Session{
		ID:         utils.GenerateUUID(),
		MerchantID: merchantID,
		state:      state,
		draft:      draft,
		sections:   map[domain.Section]domain.SectionState{},
		updatedAt:  time.Now(),
	}
}

func restoreSession(snap *domain.SessionSnapshot) *Session {
	s := &Session{
		ID:         snap.ID,
		MerchantID: snap.MerchantID,
		state:      snap.State,
		draft:      snap.Draft,
		sections:   snap.Sections,
		updatedAt:  snap.UpdatedAt,
	}
	if s.draft == nil {
		s.draft = domain.NewProductDraft()
	}
	if s.sections == nil {
		s.sections = map[domain.Section]domain.SectionState{}
	}
	return s
}

// Snapshot returns a deep copy safe to encode or hand out.
func (s *Session) Snapshot() *domain.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *domain.SessionSnapshot {
	sections := make(map[domain.Section]domain.SectionState, len(s.sections))
	for k, v := range s.sections {
		sections[k] = v
	}
	return &domain.SessionSnapshot{
		ID:         s.ID,
		MerchantID: s.MerchantID,
		State:      s.state,
		Draft:      s.draft.Clone(),
		Sections:   sections,
		UpdatedAt:  s.updatedAt,
	}
}

func (s *Session) Closed() bool {
	return s.closed.Load()
}

// SectionView is what the UI renders for one section.
type SectionView struct {
	Section domain.Section `json:"section"`
	Enabled bool           `json:"enabled"`
	// LockedReason explains a disabled section.
	LockedReason string `json:"lockedReason,omitempty"`
	domain.SectionState
}

// Sections reports every section in display order.
func (s *Session) Sections() []SectionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	views := make([]SectionView, 0, len(domain.Sections))
	for _, sec := range domain.Sections {
		view := SectionView{Section: sec, Enabled: true, SectionState: s.sections[sec]}
		if err := lockedError(s.state, sec); err != nil {
			view.Enabled = false
			view.LockedReason = "Save the basic product information first."
		}
		views = append(views, view)
	}
	return views
}

func lockedError(state domain.DraftState, sec domain.Section) error {
	if sec == domain.SectionBase || state.Persisted() {
		return nil
	}
	return &domain.SectionLockedError{Section: sec, State: state}
}

// SessionManager opens, resumes and closes sessions. Live sessions sit in a cache; every
// change is also written to the draft store so a session survives a restart.
type SessionManager struct {
	products domain.ProductWriter
	variants domain.VariantGateway
	store    domain.DraftStore
	live     cache.CacheService
	ttl      time.Duration
	resume   singleflight.Group
}

func NewSessionManager(products domain.ProductWriter, variants domain.VariantGateway, store domain.DraftStore, live cache.CacheService, ttl time.Duration) *SessionManager {
	return &SessionManager{
		products: products,
		variants: variants,
		store:    store,
		live:     live,
		ttl:      ttl,
	}
}

func liveKey(id string) string {
	return "session:" + id
}

// Open starts a session. With an empty productID the draft is new (UNSAVED); otherwise the
// product and its variants are loaded and the session starts in EDITING.
func (m *SessionManager) Open(ctx context.Context, merchantID, productID string) (*Session, error) {
	var s *Session
	if productID == "" {
		s = newSession(merchantID, domain.StateUnsaved, domain.NewProductDraft())
	} else {
		draft, err := m.products.FetchProduct(ctx, productID)
		if err != nil {
			return nil, err
		}
		variants, err := m.variants.ListVariants(ctx, productID)
		if err != nil {
			return nil, err
		}
		draft.ID = productID
		if draft.Attributes == nil {
			draft.Attributes = domain.AttributeAssignment{}
		}
		draft.Variants = variants
		for i := range draft.Variants {
			if draft.Variants[i].Key == "" {
				draft.Variants[i].Key = draft.Variants[i].ID
			}
		}
		draft.MarginPercent = domain.Margin(draft.CostPrice, draft.SellingPrice)
		s = newSession(merchantID, domain.StateEditing, draft)
	}

	if err := m.store.Save(ctx, s.snapshotLocked()); err != nil {
		return nil, fmt.Errorf("failed to store new session: %w", err)
	}
	m.live.Set(liveKey(s.ID), s, m.ttl)
	logger.WithSession(ctx, s.ID).Info().
		Str("merchant_id", merchantID).
		Str("product_id", productID).
		Str("state", string(s.state)).
		Msg("Authoring session opened")
	return s, nil
}

// Get returns the live session or resumes it from the draft store. Sessions of other
// merchants are reported as not found.
func (m *SessionManager) Get(ctx context.Context, merchantID, id string) (*Session, error) {
	var s *Session
	if val, found := m.live.Get(liveKey(id)); found {
		s = val.(*Session)
	} else {
		// Concurrent resumes of one id must end up with the same *Session.
		val, err, _ := m.resume.Do(id, func() (interface{}, error) {
			if val, found := m.live.Get(liveKey(id)); found {
				return val, nil
			}
			snap, err := m.store.Load(ctx, id)
			if err != nil {
				return nil, err
			}
			restored := restoreSession(snap)
			m.live.Set(liveKey(restored.ID), restored, m.ttl)
			logger.WithSession(ctx, restored.ID).Debug().Msg("Authoring session resumed from store")
			return restored, nil
		})
		if err != nil {
			return nil, err
		}
		s = val.(*Session)
	}

	if s.MerchantID != merchantID || s.Closed() {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Close ends the session. Operations still in flight finish their network calls but
// their results are discarded.
func (m *SessionManager) Close(ctx context.Context, merchantID, id string) error {
	s, err := m.Get(ctx, merchantID, id)
	if err != nil {
		return err
	}
	s.closed.Store(true)
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	m.live.Delete(liveKey(id))
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	logger.WithSession(ctx, id).Info().Msg("Authoring session closed")
	return nil
}

// save writes the session to the draft store and refreshes its live TTL. A closed session
// is never written back.
func (m *SessionManager) save(ctx context.Context, s *Session) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.Closed() {
		return domain.ErrSessionNotFound
	}
	if err := m.store.Save(ctx, s.snapshotLocked()); err != nil {
		return fmt.Errorf("failed to store session %s: %w", s.ID, err)
	}
	m.live.Set(liveKey(s.ID), s, m.ttl)
	return nil
}
