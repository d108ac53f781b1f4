package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/msseason/ai-grant-finder/internal/models"
)

type ApplicationRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ApplicationRepository
	userID  uuid.UUID
	appID   uuid.UUID
	context context.Context
}

func (suite *ApplicationRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewApplicationRepository(mock)
	suite.userID = uuid.New()
	suite.appID = uuid.New()
	suite.context = context.Background()
}

func (suite *ApplicationRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestApplicationRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ApplicationRepoTestSuite))
}

func applicationRows(app *models.Application) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "user_id", "grant_name", "provider", "amount", "status", "deadline", "award_amount", "assigned_to", "notes", "submitted_date", "created_at", "updated_at"}).
		AddRow(app.ID, app.UserID, app.GrantName, app.Provider, app.Amount, app.Status, app.Deadline, app.AwardAmount, app.AssignedTo, app.Notes, app.SubmittedDate, app.CreatedAt, app.UpdatedAt)
}

func sampleApplication(id, userID uuid.UUID) *models.Application {
	return &models.Application{
		ID:        id,
		UserID:    userID,
		GrantName: "NSF SBIR Phase I",
		Provider:  "National Science Foundation",
		Amount:    275000,
		Status:    models.ApplicationStatusSubmitted,
		Deadline:  time.Now().AddDate(0, 0, 60),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func statsRow(total, draft, inProgress, submitted, underReview, awarded, rejected int, totalRequested, totalAwarded float64) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"count", "draft", "in_progress", "submitted", "under_review", "awarded", "rejected", "total_requested", "total_awarded"}).
		AddRow(total, draft, inProgress, submitted, underReview, awarded, rejected, totalRequested, totalAwarded)
}

func (suite *ApplicationRepoTestSuite) TestCreate_Success() {
	app := sampleApplication(suite.appID, suite.userID)
	stamped := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`(?s)INSERT INTO applications.+RETURNING created_at, updated_at`).
		WithArgs(app.ID, app.UserID, app.GrantName, app.Provider, app.Amount, app.Status, app.Deadline, app.AwardAmount, app.AssignedTo, app.Notes, app.SubmittedDate).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(stamped, stamped))

	err := suite.repo.Create(suite.context, app)
	assert.NoError(suite.T(), err)
	// The struct carries the database-stamped timestamps, not client clocks.
	assert.Equal(suite.T(), stamped, app.CreatedAt)
	assert.Equal(suite.T(), stamped, app.UpdatedAt)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ApplicationRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM applications\s+WHERE id = \$1`).
		WithArgs(suite.appID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := suite.repo.GetByID(suite.context, suite.appID)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ApplicationRepoTestSuite) TestGetByUser_ReturnsOwnRecords() {
	app := sampleApplication(suite.appID, suite.userID)

	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM applications\s+WHERE user_id = \$1`).
		WithArgs(suite.userID).
		WillReturnRows(applicationRows(app))

	apps, err := suite.repo.GetByUser(suite.context, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), apps, 1)
	assert.Equal(suite.T(), suite.userID, apps[0].UserID)
}

func (suite *ApplicationRepoTestSuite) TestUpdate_NotFound() {
	status := models.ApplicationStatusAwarded
	patch := &models.ApplicationUpdate{Status: &status}

	suite.mock.ExpectQuery(`UPDATE applications`).
		WithArgs(patch.GrantName, patch.Provider, patch.Amount, patch.Status, patch.Deadline, patch.AwardAmount, patch.AssignedTo, patch.Notes, patch.SubmittedDate, suite.appID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := suite.repo.Update(suite.context, suite.appID, patch)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ApplicationRepoTestSuite) TestUpdate_StatusPatchKeepsOtherFields() {
	app := sampleApplication(suite.appID, suite.userID)
	app.Status = models.ApplicationStatusAwarded
	award := 275000.0
	app.AwardAmount = &award

	status := models.ApplicationStatusAwarded
	patch := &models.ApplicationUpdate{Status: &status, AwardAmount: &award}

	suite.mock.ExpectQuery(`UPDATE applications`).
		WithArgs(patch.GrantName, patch.Provider, patch.Amount, patch.Status, patch.Deadline, patch.AwardAmount, patch.AssignedTo, patch.Notes, patch.SubmittedDate, suite.appID).
		WillReturnRows(applicationRows(app))

	got, err := suite.repo.Update(suite.context, suite.appID, patch)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ApplicationStatusAwarded, got.Status)
	assert.Equal(suite.T(), "NSF SBIR Phase I", got.GrantName)
	assert.Equal(suite.T(), 275000.0, *got.AwardAmount)
}

func (suite *ApplicationRepoTestSuite) TestGetStats_EmptySet() {
	suite.mock.ExpectQuery(`(?s)SELECT COUNT\(\*\),.+FROM applications`).
		WithArgs((*uuid.UUID)(nil)).
		WillReturnRows(statsRow(0, 0, 0, 0, 0, 0, 0, 0, 0))

	stats, err := suite.repo.GetStats(suite.context, nil)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, stats.Total)
	assert.Equal(suite.T(), 0.0, stats.TotalRequested)
	assert.Equal(suite.T(), 0.0, stats.TotalAwarded)
	assert.Equal(suite.T(), "0.0", stats.SuccessRate)
}

func (suite *ApplicationRepoTestSuite) TestGetStats_SubmittedOnly() {
	suite.mock.ExpectQuery(`(?s)SELECT COUNT\(\*\),.+FROM applications`).
		WithArgs(&suite.userID).
		WillReturnRows(statsRow(1, 0, 0, 1, 0, 0, 0, 275000, 0))

	stats, err := suite.repo.GetStats(suite.context, &suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, stats.Total)
	assert.Equal(suite.T(), 1, stats.Submitted)
	assert.Equal(suite.T(), 275000.0, stats.TotalRequested)
	assert.Equal(suite.T(), 0.0, stats.TotalAwarded)
	assert.Equal(suite.T(), "0.0", stats.SuccessRate)
}

func (suite *ApplicationRepoTestSuite) TestGetStats_AwardedComputesSuccessRate() {
	suite.mock.ExpectQuery(`(?s)SELECT COUNT\(\*\),.+FROM applications`).
		WithArgs(&suite.userID).
		WillReturnRows(statsRow(1, 0, 0, 0, 0, 1, 0, 275000, 275000))

	stats, err := suite.repo.GetStats(suite.context, &suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, stats.Awarded)
	assert.Equal(suite.T(), 275000.0, stats.TotalAwarded)
	assert.Equal(suite.T(), "100.0", stats.SuccessRate)
}

func (suite *ApplicationRepoTestSuite) TestGetStats_MixedStatuses() {
	suite.mock.ExpectQuery(`(?s)SELECT COUNT\(\*\),.+FROM applications`).
		WithArgs(&suite.userID).
		WillReturnRows(statsRow(3, 0, 1, 1, 0, 1, 0, 425000, 100000))

	stats, err := suite.repo.GetStats(suite.context, &suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, stats.Total)
	assert.Equal(suite.T(), 1, stats.InProgress)
	assert.Equal(suite.T(), 1, stats.Submitted)
	assert.Equal(suite.T(), 1, stats.Awarded)
	assert.Equal(suite.T(), 425000.0, stats.TotalRequested)
	assert.Equal(suite.T(), 100000.0, stats.TotalAwarded)
	assert.Equal(suite.T(), "33.3", stats.SuccessRate)
}

func (suite *ApplicationRepoTestSuite) TestListUpcomingDeadlines_OpenStatusesOnly() {
	app := sampleApplication(suite.appID, suite.userID)
	app.Status = models.ApplicationStatusInProgress
	cutoff := time.Now().AddDate(0, 0, 7)

	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM applications\s+WHERE deadline <= \$1 AND status IN`).
		WithArgs(cutoff).
		WillReturnRows(applicationRows(app))

	apps, err := suite.repo.ListUpcomingDeadlines(suite.context, cutoff)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), apps, 1)
	assert.Equal(suite.T(), models.ApplicationStatusInProgress, apps[0].Status)
}

func (suite *ApplicationRepoTestSuite) TestDelete_Success() {
	suite.mock.ExpectExec(`DELETE FROM applications WHERE id = \$1`).
		WithArgs(suite.appID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.appID)
	assert.NoError(suite.T(), err)
}
