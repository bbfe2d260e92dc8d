package authoring

import (
	"context"
	"sync"
	"testing"
	"time"

	"merchant-studio/internal/domain"
	"merchant-studio/internal/infrastructure/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type SessionManagerTestSuite struct {
	suite.Suite
	catalog *MockCatalog
	store   domain.DraftStore
	manager *SessionManager
	ctx     context.Context
}

func (s *SessionManagerTestSuite) SetupTest() {
	s.catalog = new(MockCatalog)
	s.store = cache.NewMemoryDraftStore(time.Hour)
	s.manager = NewSessionManager(s.catalog, s.catalog, s.store, cache.NewMemoryCache(time.Hour, 0), time.Hour)
	s.ctx = context.Background()
}

func (s *SessionManagerTestSuite) TestOpenNewDraft() {
	session, err := s.manager.Open(s.ctx, "m1", "")
	s.Require().NoError(err)

	snap := session.Snapshot()
	s.NotEmpty(snap.ID)
	s.Equal(domain.StateUnsaved, snap.State)
	s.Empty(snap.Draft.ID)

	stored, err := s.store.Load(s.ctx, session.ID)
	s.Require().NoError(err)
	s.Equal("m1", stored.MerchantID)
}

func (s *SessionManagerTestSuite) TestOpenExistingProduct() {
	s.catalog.On("FetchProduct", mock.Anything, "p1").Return(&domain.ProductDraft{
		Name:         "Linen Shirt",
		CostPrice:    "80",
		SellingPrice: "100",
		CategoryID:   "shirts",
	}, nil).Once()
	s.catalog.On("ListVariants", mock.Anything, "p1").Return([]domain.Variant{{ID: "v1", SKU: "A"}}, nil).Once()

	session, err := s.manager.Open(s.ctx, "m1", "p1")
	s.Require().NoError(err)

	snap := session.Snapshot()
	s.Equal(domain.StateEditing, snap.State)
	s.Equal("p1", snap.Draft.ID)
	s.Equal(25.0, snap.Draft.MarginPercent)
	s.NotNil(snap.Draft.Attributes)
	s.Require().Len(snap.Draft.Variants, 1)
	s.Equal("v1", snap.Draft.Variants[0].Key)

	for _, view := range session.Sections() {
		s.True(view.Enabled, view.Section)
	}
	s.catalog.AssertExpectations(s.T())
}

func (s *SessionManagerTestSuite) TestOpenExistingProductFailure() {
	s.catalog.On("FetchProduct", mock.Anything, "p404").Return(nil, &domain.NetworkError{Op: "fetch product", Status: 404}).Once()

	session, err := s.manager.Open(s.ctx, "m1", "p404")
	s.Nil(session)
	s.True(domain.IsRetryable(err))
}

func (s *SessionManagerTestSuite) TestGetIsScopedToMerchant() {
	session, err := s.manager.Open(s.ctx, "m1", "")
	s.Require().NoError(err)

	got, err := s.manager.Get(s.ctx, "m1", session.ID)
	s.Require().NoError(err)
	s.Same(session, got)

	_, err = s.manager.Get(s.ctx, "m2", session.ID)
	s.ErrorIs(err, domain.ErrSessionNotFound)

	_, err = s.manager.Get(s.ctx, "m1", "missing")
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *SessionManagerTestSuite) TestResumeFromStore() {
	session, err := s.manager.Open(s.ctx, "m1", "")
	s.Require().NoError(err)

	restarted := NewSessionManager(s.catalog, s.catalog, s.store, cache.NewMemoryCache(time.Hour, 0), time.Hour)
	resumed, err := restarted.Get(s.ctx, "m1", session.ID)
	s.Require().NoError(err)
	s.NotSame(session, resumed)
	s.Equal(session.ID, resumed.ID)
	s.Equal(domain.StateUnsaved, resumed.Snapshot().State)

	_, err = restarted.Get(s.ctx, "m2", session.ID)
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func (s *SessionManagerTestSuite) TestConcurrentResumeSharesOneSession() {
	session, err := s.manager.Open(s.ctx, "m1", "")
	s.Require().NoError(err)

	restarted := NewSessionManager(s.catalog, s.catalog, s.store, cache.NewMemoryCache(time.Hour, 0), time.Hour)
	resumed := make([]*Session, 8)
	var wg sync.WaitGroup
	for i := range resumed {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := restarted.Get(s.ctx, "m1", session.ID)
			s.NoError(err)
			resumed[i] = got
		}(i)
	}
	wg.Wait()

	s.Require().NotNil(resumed[0])
	for _, got := range resumed[1:] {
		s.Same(resumed[0], got)
	}
}

func (s *SessionManagerTestSuite) TestClose() {
	session, err := s.manager.Open(s.ctx, "m1", "")
	s.Require().NoError(err)

	s.ErrorIs(s.manager.Close(s.ctx, "m2", session.ID), domain.ErrSessionNotFound)
	s.Require().NoError(s.manager.Close(s.ctx, "m1", session.ID))
	s.True(session.Closed())

	_, err = s.manager.Get(s.ctx, "m1", session.ID)
	s.ErrorIs(err, domain.ErrSessionNotFound)
	_, err = s.store.Load(s.ctx, session.ID)
	s.ErrorIs(err, domain.ErrSessionNotFound)
}

func TestSessionManagerTestSuite(t *testing.T) {
	suite.Run(t, new(SessionManagerTestSuite))
}

func TestSession_SnapshotIsACopy(t *testing.T) {
	s := newSession("m1", domain.StateBaseSaved, savedDraft())
	snap := s.Snapshot()
	snap.Draft.Name = "changed"
	snap.Sections[domain.SectionMeta] = domain.SectionState{Success: "x"}

	again := s.Snapshot()
	assert.Empty(t, again.Draft.Name)
	assert.NotContains(t, again.Sections, domain.SectionMeta)
	require.Equal(t, "p1", again.Draft.ID)
}
