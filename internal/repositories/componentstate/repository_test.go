package componentstate

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/models"
)

func newTestRepository(t *testing.T) (*Repository, database.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logging.NewNopLogger()
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	instance := database.NewDatabaseInstance(sqlxDB, logger)
	return NewRepository(instance, logger), instance, mock
}

func stateRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "contract_id", "component_type",
		"start_date", "start_event_created_at", "end_date", "end_event_created_at",
		"created_at", "updated_at",
	})
}

func TestLockPair_JoinsAmbientTransaction(t *testing.T) {
	repo, db, mock := newTestRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs("contract-100", "battery_optimization").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ctx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, repo.LockPair(ctx, "contract-100", "battery_optimization"))

	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_LocksRowInTransaction(t *testing.T) {
	repo, db, mock := newTestRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs("contract-100", "battery_optimization").
		WillReturnRows(stateRows().AddRow(
			"state-1", "contract-100", "battery_optimization",
			time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC), nil, nil,
			time.Now(), time.Now(),
		))
	mock.ExpectCommit()

	ctx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)

	state, err := repo.GetForUpdate(ctx, "contract-100", "battery_optimization")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.Equal(t, "battery_optimization", state.ComponentType)
	assert.Equal(t, "2024-03-03", state.StartDate.String())
	assert.Nil(t, state.EndDate)

	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_NoRowReturnsNil(t *testing.T) {
	repo, db, mock := newTestRepository(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FOR UPDATE").
		WithArgs("contract-100", "energy_supply").
		WillReturnRows(stateRows())
	mock.ExpectRollback()

	ctx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)

	state, err := repo.GetForUpdate(ctx, "contract-100", "energy_supply")
	require.NoError(t, err)
	assert.Nil(t, state)

	require.NoError(t, tx.Rollback(ctx))
}

func TestUpsert_JoinsAmbientTransaction(t *testing.T) {
	repo, db, mock := newTestRepository(t)
	ctx := context.Background()

	startDate, err := models.ParseDate("2024-03-03")
	require.NoError(t, err)
	createdAt := time.Date(2024, 3, 3, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO component_states")).
		WithArgs(sqlmock.AnyArg(), "contract-100", "battery_optimization", startDate, createdAt, nil, nil).
		WillReturnRows(stateRows().AddRow(
			"state-1", "contract-100", "battery_optimization",
			time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), createdAt, nil, nil,
			time.Now(), time.Now(),
		))
	mock.ExpectCommit()

	ctx, tx, err := db.GetTx(ctx, nil)
	require.NoError(t, err)

	state, err := repo.Upsert(ctx, "contract-100", "battery_optimization", models.ComponentStateFields{
		StartDate:           &startDate,
		StartEventCreatedAt: &createdAt,
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-03", state.StartDate.String())

	require.NoError(t, tx.Commit(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByContract(t *testing.T) {
	repo, _, mock := newTestRepository(t)

	mock.ExpectQuery("SELECT").
		WithArgs("contract-100").
		WillReturnRows(stateRows().
			AddRow("state-1", "contract-100", "battery_optimization",
				time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), time.Now(), nil, nil, time.Now(), time.Now()).
			AddRow("state-2", "contract-100", "energy_supply",
				nil, nil, nil, nil, time.Now(), time.Now()))

	states, err := repo.ListByContract(context.Background(), "contract-100")
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "battery_optimization", states[0].ComponentType)
	assert.Nil(t, states[1].StartDate)
}
