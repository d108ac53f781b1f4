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

type UserRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    UserRepository
	userID  uuid.UUID
	context context.Context
}

func (suite *UserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewUserRepository(mock)
	suite.userID = uuid.New()
	suite.context = context.Background()
}

func (suite *UserRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}

func userRows(user *models.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "email", "password_hash", "full_name", "company_name", "plan", "role", "status", "trial_ends_at", "created_at", "updated_at"}).
		AddRow(user.ID, user.Email, user.PasswordHash, user.FullName, user.CompanyName, user.Plan, user.Role, user.Status, user.TrialEndsAt, user.CreatedAt, user.UpdatedAt)
}

func sampleUser(id uuid.UUID) *models.User {
	return &models.User{
		ID:           id,
		Email:        "founder@example.com",
		PasswordHash: "$2a$10$hash",
		FullName:     "Sam Founder",
		CompanyName:  "Example LLC",
		Plan:         models.PlanStarter,
		Role:         models.RoleOwner,
		Status:       models.UserStatusTrial,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func (suite *UserRepoTestSuite) TestCreate_Success() {
	user := sampleUser(suite.userID)
	stamped := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	suite.mock.ExpectQuery(`(?s)INSERT INTO users.+RETURNING created_at, updated_at`).
		WithArgs(user.ID, user.Email, user.PasswordHash, user.FullName, user.CompanyName, user.Plan, user.Role, user.Status, user.TrialEndsAt).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(stamped, stamped))

	err := suite.repo.Create(suite.context, user)
	assert.NoError(suite.T(), err)
	// The struct carries the database-stamped timestamps, not client clocks.
	assert.Equal(suite.T(), stamped, user.CreatedAt)
	assert.Equal(suite.T(), stamped, user.UpdatedAt)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *UserRepoTestSuite) TestGetByEmail_Found() {
	user := sampleUser(suite.userID)

	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE email = \$1`).
		WithArgs(user.Email).
		WillReturnRows(userRows(user))

	got, err := suite.repo.GetByEmail(suite.context, user.Email)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), user.ID, got.ID)
	assert.Equal(suite.T(), user.Email, got.Email)
}

func (suite *UserRepoTestSuite) TestGetByEmail_NotFound() {
	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE email = \$1`).
		WithArgs("missing@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := suite.repo.GetByEmail(suite.context, "missing@example.com")
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *UserRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+WHERE id = \$1`).
		WithArgs(suite.userID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := suite.repo.GetByID(suite.context, suite.userID)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *UserRepoTestSuite) TestUpdate_PartialPatchKeepsOtherFields() {
	user := sampleUser(suite.userID)
	user.Plan = models.PlanProfessional

	newPlan := models.PlanProfessional
	patch := &models.UserUpdate{Plan: &newPlan}

	suite.mock.ExpectQuery(`UPDATE users`).
		WithArgs(patch.FullName, patch.CompanyName, patch.Plan, patch.Status, suite.userID).
		WillReturnRows(userRows(user))

	got, err := suite.repo.Update(suite.context, suite.userID, patch)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.PlanProfessional, got.Plan)
	assert.Equal(suite.T(), user.Email, got.Email)
}

func (suite *UserRepoTestSuite) TestUpdate_NotFound() {
	newName := "New Name"
	patch := &models.UserUpdate{FullName: &newName}

	suite.mock.ExpectQuery(`UPDATE users`).
		WithArgs(patch.FullName, patch.CompanyName, patch.Plan, patch.Status, suite.userID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	got, err := suite.repo.Update(suite.context, suite.userID, patch)
	assert.Nil(suite.T(), got)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *UserRepoTestSuite) TestExpireTrials_ReportsRowsChanged() {
	cutoff := time.Now()

	suite.mock.ExpectExec(`(?s)UPDATE users\s+SET status = 'expired'`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))

	expired, err := suite.repo.ExpireTrials(suite.context, cutoff)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(2), expired)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *UserRepoTestSuite) TestDelete_Success() {
	suite.mock.ExpectExec(`DELETE FROM users WHERE id = \$1`).
		WithArgs(suite.userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.Delete(suite.context, suite.userID)
	assert.NoError(suite.T(), err)
}

func (suite *UserRepoTestSuite) TestList_ReturnsAllRows() {
	user1 := sampleUser(uuid.New())
	user2 := sampleUser(uuid.New())
	user2.Email = "second@example.com"

	rows := userRows(user1).
		AddRow(user2.ID, user2.Email, user2.PasswordHash, user2.FullName, user2.CompanyName, user2.Plan, user2.Role, user2.Status, user2.TrialEndsAt, user2.CreatedAt, user2.UpdatedAt)

	suite.mock.ExpectQuery(`(?s)SELECT .+ FROM users\s+ORDER BY created_at DESC`).
		WithArgs(100, 0).
		WillReturnRows(rows)

	users, err := suite.repo.List(suite.context, 100, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), users, 2)
	assert.Equal(suite.T(), "second@example.com", users[1].Email)
}
