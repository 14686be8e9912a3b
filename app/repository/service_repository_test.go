package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/vikramdxb02-del/smmcompare/app/models"
)

func newMockedServiceRepo(t *testing.T) (ServiceRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewServiceRepository(db), mock
}

// upsertPattern matches the generated INSERT ... ON DUPLICATE KEY UPDATE
// statement and requires every mutable column in the update list, so a
// column silently dropped from the conflict clause fails here.
func upsertPattern() string {
	columns := []string{
		"name", "category", "type", "rate", "min_quantity", "max_quantity",
		"description", "refill", "cancel", "dripfeed", "avg_time", "is_active",
		"updated_at",
	}
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, fmt.Sprintf("`%s`=VALUES\\(`%s`\\)", col, col))
	}
	return "INSERT INTO `services` .*ON DUPLICATE KEY UPDATE " + strings.Join(parts, ",")
}

func TestUpsertService(t *testing.T) {
	t.Run("insert reports created", func(t *testing.T) {
		repo, mock := newMockedServiceRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(upsertPattern()).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		created, err := repo.UpsertService(&models.Service{
			ProviderID:        1,
			ProviderServiceID: "1042",
			Name:              "Instagram Followers",
			Rate:              1.25,
		})
		require.NoError(t, err)
		assert.True(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("same key with new rate reports updated", func(t *testing.T) {
		// MySQL reports two affected rows when the conflict clause rewrites
		// an existing row, so the second upsert of one key counts as an
		// update, never a second row.
		repo, mock := newMockedServiceRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec(upsertPattern()).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		created, err := repo.UpsertService(&models.Service{
			ProviderID:        1,
			ProviderServiceID: "1042",
			Name:              "Instagram Followers",
			Rate:              1.30,
		})
		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeactivateMissingQuery(t *testing.T) {
	repo, mock := newMockedServiceRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `services` SET .*`is_active`=.* WHERE provider_id = .* AND is_active = .* AND provider_service_id NOT IN").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	affected, err := repo.DeactivateMissing(1, []string{"1042", "1043"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}
