package db_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/platform/db"
)

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
	commitErr  error
}

func (f *fakeTx) Commit(context.Context) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	if f.committed {
		return pgx.ErrTxClosed
	}
	f.rolledBack = true
	return nil
}

type fakeConn struct {
	tx       *fakeTx
	opts     pgx.TxOptions
	beginErr error
}

func (c *fakeConn) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	if c.beginErr != nil {
		return nil, c.beginErr
	}
	c.opts = opts
	return c.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{}}

	err := db.WithTx(context.Background(), conn, func(pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.True(t, conn.tx.committed)
	assert.False(t, conn.tx.rolledBack)
	assert.Equal(t, pgx.RepeatableRead, conn.opts.IsoLevel)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	conn := &fakeConn{tx: &fakeTx{}}
	boom := errors.New("boom")

	err := db.WithTx(context.Background(), conn, func(pgx.Tx) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, conn.tx.rolledBack)
	assert.False(t, conn.tx.committed)
}

func TestWithTxReportsBeginAndCommitFailures(t *testing.T) {
	err := db.WithTx(context.Background(), &fakeConn{beginErr: errors.New("refused")}, func(pgx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	require.ErrorContains(t, err, "platform/db: begin tx")

	conn := &fakeConn{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
	err = db.WithTx(context.Background(), conn, func(pgx.Tx) error { return nil })
	require.ErrorContains(t, err, "platform/db: commit tx")
	assert.True(t, conn.tx.rolledBack)
}
