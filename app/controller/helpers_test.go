package controller

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

type sqlmockDB struct {
	*sql.DB
	mock sqlmock.Sqlmock
}

func newSQLMock(t *testing.T) *sqlmockDB {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &sqlmockDB{DB: db, mock: mock}
}

func (d *sqlmockDB) expectationsMet(t *testing.T) {
	t.Helper()
	if err := d.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
