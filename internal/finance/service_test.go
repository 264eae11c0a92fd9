package finance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/tasks"
	"github.com/tabdeel/pulse/internal/users"
)

func profile(id int64, name string, limit float64, perms ...rbac.Permission) users.Profile {
	return users.Profile{
		User:           users.User{ID: id, Name: name, Status: users.StatusActive},
		Permissions:    perms,
		FinancialLimit: limit,
	}
}

var (
	shiraj  = profile(4, "Shiraj", 25000, rbac.PermFinanceApprove)
	semeem  = profile(1, "Mohammed Semeem", 100000, rbac.PermSystemAdmin)
	benhur  = profile(7, "Benhur", 0)
	fixedAt = time.Date(2024, 7, 23, 9, 30, 0, 0, time.UTC)
)

type nameSet map[string]bool

func (s nameSet) ActiveAccountHead(name string) bool { return s[name] }
func (s nameSet) ProjectExists(name string) bool     { return s[name] }

type serviceFixture struct {
	service *Service
	feed    *activity.Feed
	tasks   *tasks.Store
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	feed := activity.NewFeed(20, nil, logger)
	store := tasks.NewStore(nil)
	svc := NewService(ServiceConfig{
		Ledger:       NewLedger(SeedData()),
		Feed:         feed,
		Tasks:        store,
		AccountHeads: nameSet{"Main Operations": true},
		Projects:     nameSet{"Al Quoz Labour Camp Internet": true},
		Logger:       logger,
		Now:          func() time.Time { return fixedAt },
	})
	return serviceFixture{service: svc, feed: feed, tasks: store}
}

func TestFinanceUserApprovesWithinLimit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	assert.True(t, shiraj.Gate().HasPermission(rbac.PermFinanceApprove))
	assert.False(t, shiraj.Gate().HasPermission(rbac.PermUsersDelete))

	rec, err := f.service.Approve(ctx, shiraj, "PI-00124", "")
	require.NoError(t, err)
	assert.Equal(t, InstructionApproved, rec.Status)
	assert.Equal(t, HistoryEntry{Status: InstructionApproved, User: "Shiraj", Timestamp: fixedAt}, rec.History[1])

	feed := f.feed.Recent(1)
	require.Len(t, feed, 1)
	assert.Equal(t, "approved payment to", feed[0].Action)
	assert.Equal(t, "Etisalat", feed[0].Target)
	assert.Equal(t, "Shiraj", feed[0].User.Name)
}

func TestApprovalAboveLimitIsRefused(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	big, err := f.service.SubmitInstruction(ctx, benhur, NewInstruction{Payee: "Hikvision", Amount: 42000, DueDate: "2024-08-05"})
	require.NoError(t, err)
	assert.Equal(t, "Benhur", big.SubmittedBy)
	assert.False(t, CanApprove(shiraj, big.Amount))

	_, err = f.service.Approve(ctx, shiraj, big.ID, "")
	assert.ErrorIs(t, err, ErrOverLimit)
	_, err = f.service.Reject(ctx, benhur, big.ID, "")
	assert.ErrorIs(t, err, ErrApprovalNotPermitted)

	rec, err := f.service.Reject(ctx, semeem, big.ID, "wrong vendor")
	require.NoError(t, err)
	assert.Equal(t, InstructionRejected, rec.Status)
	assert.Equal(t, "rejected payment to", f.feed.Recent(1)[0].Action)
}

func TestCollectionAndDepositFlow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.LogCollection(ctx, benhur, NewCollection{Project: "Unknown", Payer: "x", Amount: 1, Type: CollectionCash, Date: "2024-07-23"})
	assert.ErrorIs(t, err, ErrUnknownProject)

	col, err := f.service.LogCollection(ctx, benhur, NewCollection{Project: "Al Quoz Labour Camp Internet", Payer: "Al Naboodah Construction", Amount: 50000, Type: CollectionCheque, Date: "2024-07-23"})
	require.NoError(t, err)
	assert.Equal(t, "logged a collection of AED 50,000 from", f.feed.Recent(1)[0].Action)

	_, err = f.service.MarkDeposited(ctx, benhur, col.ID)
	require.NoError(t, err)

	_, err = f.service.LogDeposit(ctx, benhur, NewDeposit{AccountHead: "Petty Cash Account", Amount: 10, Date: "2024-07-23"})
	assert.ErrorIs(t, err, ErrUnknownAccountHead)
	dep, err := f.service.LogDeposit(ctx, benhur, NewDeposit{AccountHead: "Main Operations", Amount: 50000, Date: "2024-07-23"})
	require.NoError(t, err)

	_, err = f.service.ConfirmDeposit(ctx, benhur, dep.ID)
	assert.ErrorIs(t, err, ErrApprovalNotPermitted)
	confirmed, err := f.service.ConfirmDeposit(ctx, shiraj, dep.ID)
	require.NoError(t, err)
	assert.Equal(t, DepositConfirmed, confirmed.Status)
	assert.Equal(t, "confirmed a deposit to", f.feed.Recent(1)[0].Action)
}

func TestScheduleReminders(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	created, err := f.service.ScheduleReminders(ctx, time.Date(2024, 8, 22, 6, 0, 0, 0, time.UTC), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	list := f.tasks.List()
	require.Len(t, list, 1)
	assert.Equal(t, "2024-08-25", list[0].Deadline)
	assert.Contains(t, list[0].Description, "Etisalat")
	assert.Contains(t, list[0].Description, "AED 15,500.00")

	entry := f.feed.Recent(1)[0]
	assert.Equal(t, "System", entry.User.Name)
	assert.Equal(t, "scheduled a payment reminder for", entry.Action)

	created, err = f.service.ScheduleReminders(ctx, time.Date(2024, 8, 23, 6, 0, 0, 0, time.UTC), 3)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestScheduleRemindersNeedsTaskStore(t *testing.T) {
	svc := NewService(ServiceConfig{Ledger: NewLedger(SeedData())})
	_, err := svc.ScheduleReminders(context.Background(), fixedAt, 3)
	assert.Error(t, err)
}
