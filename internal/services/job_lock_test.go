package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newLockTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:               gormLogger.Default.LogMode(gormLogger.Silent),
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}
	return db, mock
}

func TestAcquireJobLockHeldElsewhere(t *testing.T) {
	db, mock := newLockTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_lock($1)")).
		WithArgs(priceRefreshLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	unlock, err := acquireJobLock(context.Background(), db, priceRefreshLockKey)
	if !errors.Is(err, ErrJobRunning) {
		t.Fatalf("expected ErrJobRunning, got %v", err)
	}
	if unlock != nil {
		t.Fatal("expected no release func when the lock is held elsewhere")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestJobLockReleasedAfterContextCancel(t *testing.T) {
	db, mock := newLockTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_lock($1)")).
		WithArgs(riskRecalcLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WithArgs(riskRecalcLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_advisory_unlock"}).AddRow(true))

	ctx, cancel := context.WithCancel(context.Background())

	unlock, err := acquireJobLock(ctx, db, riskRecalcLockKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Worker shutdown cancels the job context mid-run. The release must still
	// reach the server, or the lock leaks and every later run skips.
	cancel()
	unlock()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unlock did not reach the database: %v", err)
	}
}

func TestJobLockAcquireAndRelease(t *testing.T) {
	db, mock := newLockTestDB(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_lock($1)")).
		WithArgs(dailySummaryLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_advisory_unlock($1)")).
		WithArgs(dailySummaryLockKey).
		WillReturnRows(sqlmock.NewRows([]string{"pg_advisory_unlock"}).AddRow(true))

	unlock, err := acquireJobLock(context.Background(), db, dailySummaryLockKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unlock()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
