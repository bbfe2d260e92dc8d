package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"merchant-studio/internal/domain"

	"github.com/goccy/go-json"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type DraftRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo *DraftRepository
	ctx  context.Context
}

func (suite *DraftRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	require.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewDraftRepository(mock)
	suite.ctx = context.Background()
}

func (suite *DraftRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestDraftRepoTestSuite(t *testing.T) {
	suite.Run(t, new(DraftRepoTestSuite))
}

func sampleSnapshot() *domain.SessionSnapshot {
	draft := domain.NewProductDraft()
	draft.ID = "p1"
	draft.Name = "Mug"
	draft.Attributes["1"] = domain.ScalarValue("Red")
	return &domain.SessionSnapshot{
		ID:         "s1",
		MerchantID: "m1",
		State:      domain.StateBaseSaved,
		Draft:      draft,
		Sections: map[domain.Section]domain.SectionState{
			domain.SectionBase: {Success: "Product information saved."},
		},
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (suite *DraftRepoTestSuite) TestEnsureSchema() {
	suite.mock.ExpectExec(`CREATE TABLE IF NOT EXISTS authoring_sessions`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	assert.NoError(suite.T(), suite.repo.EnsureSchema(suite.ctx))
}

func (suite *DraftRepoTestSuite) TestSave_Upserts() {
	snap := sampleSnapshot()
	suite.mock.ExpectExec(`INSERT INTO authoring_sessions \(id, merchant_id, state, snapshot, updated_at\)`).
		WithArgs("s1", "m1", "BASE_SAVED", pgxmock.AnyArg(), snap.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.repo.Save(suite.ctx, snap))
}

func (suite *DraftRepoTestSuite) TestSave_DatabaseError() {
	suite.mock.ExpectExec(`INSERT INTO authoring_sessions`).
		WillReturnError(errors.New("database connection failed"))

	err := suite.repo.Save(suite.ctx, sampleSnapshot())
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "database connection failed")
}

func (suite *DraftRepoTestSuite) TestLoad_DecodesSnapshot() {
	data, err := json.Marshal(sampleSnapshot())
	require.NoError(suite.T(), err)

	suite.mock.ExpectQuery(`SELECT snapshot FROM authoring_sessions WHERE id = \$1`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"snapshot"}).AddRow(data))

	snap, err := suite.repo.Load(suite.ctx, "s1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "m1", snap.MerchantID)
	assert.Equal(suite.T(), domain.StateBaseSaved, snap.State)
	assert.Equal(suite.T(), "Mug", snap.Draft.Name)
	assert.Equal(suite.T(), "Red", snap.Draft.Attributes["1"].Scalar)
	assert.Equal(suite.T(), "Product information saved.", snap.Sections[domain.SectionBase].Success)
}

func (suite *DraftRepoTestSuite) TestLoad_NotFound() {
	suite.mock.ExpectQuery(`SELECT snapshot FROM authoring_sessions`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := suite.repo.Load(suite.ctx, "missing")
	assert.ErrorIs(suite.T(), err, domain.ErrSessionNotFound)
}

func (suite *DraftRepoTestSuite) TestDelete() {
	suite.mock.ExpectExec(`DELETE FROM authoring_sessions WHERE id = \$1`).
		WithArgs("s1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(suite.T(), suite.repo.Delete(suite.ctx, "s1"))
}

func (suite *DraftRepoTestSuite) TestDelete_NoRows() {
	suite.mock.ExpectExec(`DELETE FROM authoring_sessions`).
		WithArgs("gone").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(suite.T(), suite.repo.Delete(suite.ctx, "gone"), domain.ErrSessionNotFound)
}
