package activity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingExec struct {
	sqls []string
	args [][]any
	err  error
}

func (r *recordingExec) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sqls = append(r.sqls, sql)
	r.args = append(r.args, args)
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}

func TestFeedRecentNewestFirst(t *testing.T) {
	feed := NewFeed(3, nil, nil)
	actor := Actor{ID: 4, Name: "Shiraj"}
	for i := 1; i <= 5; i++ {
		feed.Record(context.Background(), actor, "logged a collection from", fmt.Sprintf("payer-%d", i))
	}

	recent := feed.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "payer-5", recent[0].Target)
	assert.Equal(t, "payer-3", recent[2].Target)
	assert.Equal(t, int64(5), recent[0].ID)

	assert.Len(t, feed.Recent(2), 2)
}

func TestFeedPartiallyFilled(t *testing.T) {
	feed := NewFeed(10, nil, nil)
	assert.Empty(t, feed.Recent(5))

	feed.Record(context.Background(), Actor{Name: "Benhur"}, "resolved service job #SJ-9817 for", "City Walk Building 7 BMS")
	recent := feed.Recent(5)
	require.Len(t, recent, 1)
	assert.Equal(t, "Benhur", recent[0].User.Name)
}

func TestFeedWritesToSink(t *testing.T) {
	exec := &recordingExec{}
	feed := NewFeed(5, NewPGSink(exec), nil)
	fixed := time.Date(2024, 7, 22, 10, 0, 0, 0, time.UTC)
	feed.now = func() time.Time { return fixed }

	feed.Record(context.Background(), Actor{ID: 2, Name: "Suhair Mahmoud"}, "approved payment to", "Bosch Security Systems")

	require.Len(t, exec.sqls, 1)
	assert.True(t, strings.HasPrefix(exec.sqls[0], "INSERT INTO audit_logs"))
	assert.Equal(t, int64(2), exec.args[0][0])
	assert.Equal(t, "approved payment to", exec.args[0][1])
	assert.Equal(t, fixed, exec.args[0][4])
}

func TestFeedSinkFailureIsSwallowed(t *testing.T) {
	exec := &recordingExec{err: errors.New("db down")}
	feed := NewFeed(5, NewPGSink(exec), nil)

	entry := feed.Record(context.Background(), Actor{Name: "Elwin"}, "confirmed deposit for", "Main Operations")
	assert.Equal(t, int64(1), entry.ID)
	assert.Len(t, feed.Recent(0), 1)
}

func TestPGSinkMissingTable(t *testing.T) {
	sink := NewPGSink(&recordingExec{err: &pgconn.PgError{Code: pgerrcode.UndefinedTable}})

	err := sink.Write(context.Background(), Entry{Action: "added a new user", Target: "Elwin", User: Actor{ID: 1}})
	require.ErrorIs(t, err, ErrAuditTableMissing)
}

func TestPGSinkRejectsIncompleteEntry(t *testing.T) {
	sink := NewPGSink(&recordingExec{})
	require.Error(t, sink.Write(context.Background(), Entry{Action: "x"}))
	require.NoError(t, sink.EnsureSchema(context.Background()))
}
