package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := [][]any{
		{"run-1", "Harris", 2017},
		{"run-1", "Travis", 2016},
	}
	mock.ExpectCopyFrom(pgx.Identifier{"disruption_records"}, []string{"run_id", "unit", "year"}).
		WillReturnResult(2)

	n, err := CopyFrom(context.Background(), mock, "disruption_records", []string{"run_id", "unit", "year"}, rows)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromEmptyRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// No rows means no round trip at all.
	n, err := CopyFrom(context.Background(), mock, "disruption_records", []string{"run_id"}, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFromError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"novel_reforms"}, []string{"run_id"}).
		WillReturnError(assert.AnError)

	_, err = CopyFrom(context.Background(), mock, "novel_reforms", []string{"run_id"}, [][]any{{"run-1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO novel_reforms")
}
