package finance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tabdeel/pulse/internal/activity"
	"github.com/tabdeel/pulse/internal/platform/money"
	"github.com/tabdeel/pulse/internal/rbac"
	"github.com/tabdeel/pulse/internal/tasks"
	"github.com/tabdeel/pulse/internal/users"
)

// AccountHeads reports whether deposits may target an account head.
type AccountHeads interface {
	ActiveAccountHead(name string) bool
}

// Projects reports whether a project exists.
type Projects interface {
	ProjectExists(name string) bool
}

// ServiceConfig lists the collaborators of Service. AccountHeads and Projects
// are optional; when nil, references are not checked.
type ServiceConfig struct {
	Ledger       *Ledger
	Feed         *activity.Feed
	Tasks        *tasks.Store
	AccountHeads AccountHeads
	Projects     Projects
	Logger       *slog.Logger
	Now          func() time.Time
}

// Service applies finance business rules on top of the ledger.
type Service struct {
	ledger   *Ledger
	feed     *activity.Feed
	tasks    *tasks.Store
	accounts AccountHeads
	projects Projects
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Service{
		ledger:   cfg.Ledger,
		feed:     cfg.Feed,
		tasks:    cfg.Tasks,
		accounts: cfg.AccountHeads,
		projects: cfg.Projects,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Ledger exposes the underlying ledger for read paths.
func (s *Service) Ledger() *Ledger {
	return s.ledger
}

// CanApprove reports whether actor may approve an instruction of amount.
func CanApprove(actor users.Profile, amount float64) bool {
	return actor.Gate().HasPermission(rbac.PermFinanceApprove) && amount <= actor.FinancialLimit
}

// SubmitInstruction records a new Pending instruction from actor.
func (s *Service) SubmitInstruction(ctx context.Context, actor users.Profile, in NewInstruction) (Instruction, error) {
	rec, err := s.ledger.AddInstruction(in, actor.Name, s.now().UTC())
	if err != nil {
		return Instruction{}, err
	}
	s.record(ctx, actor.Actor(), "submitted a payment instruction to", rec.Payee)
	return rec, nil
}

// Approve approves a Pending instruction within actor's financial limit.
func (s *Service) Approve(ctx context.Context, actor users.Profile, id, remarks string) (Instruction, error) {
	return s.decide(ctx, actor, id, InstructionApproved, remarks)
}

// Reject rejects a Pending instruction within actor's financial limit.
func (s *Service) Reject(ctx context.Context, actor users.Profile, id, remarks string) (Instruction, error) {
	return s.decide(ctx, actor, id, InstructionRejected, remarks)
}

func (s *Service) decide(ctx context.Context, actor users.Profile, id string, decision InstructionStatus, remarks string) (Instruction, error) {
	if !actor.Gate().HasPermission(rbac.PermFinanceApprove) {
		return Instruction{}, ErrApprovalNotPermitted
	}
	rec, err := s.ledger.Decide(id, decision, actor.Name, actor.FinancialLimit, remarks, s.now().UTC())
	if err != nil {
		return Instruction{}, err
	}
	action := "approved payment to"
	if decision == InstructionRejected {
		action = "rejected payment to"
	}
	s.record(ctx, actor.Actor(), action, rec.Payee)
	return rec, nil
}

// LogCollection records money received against a project.
func (s *Service) LogCollection(ctx context.Context, actor users.Profile, in NewCollection) (Collection, error) {
	if s.projects != nil && !s.projects.ProjectExists(in.Project) {
		return Collection{}, fmt.Errorf("%w: %s", ErrUnknownProject, in.Project)
	}
	rec, err := s.ledger.AddCollection(in)
	if err != nil {
		return Collection{}, err
	}
	s.record(ctx, actor.Actor(), "logged a collection of "+money.Compact(rec.Amount)+" from", rec.Payer)
	return rec, nil
}

// MarkDeposited moves a collection to Deposited.
func (s *Service) MarkDeposited(ctx context.Context, actor users.Profile, id string) (Collection, error) {
	rec, err := s.ledger.MarkDeposited(id)
	if err != nil {
		return Collection{}, err
	}
	s.record(ctx, actor.Actor(), "deposited the collection from", rec.Payer)
	return rec, nil
}

// LogDeposit records a Pending deposit into an active account head.
func (s *Service) LogDeposit(ctx context.Context, actor users.Profile, in NewDeposit) (Deposit, error) {
	if s.accounts != nil && !s.accounts.ActiveAccountHead(in.AccountHead) {
		return Deposit{}, fmt.Errorf("%w: %s", ErrUnknownAccountHead, in.AccountHead)
	}
	rec, err := s.ledger.AddDeposit(in)
	if err != nil {
		return Deposit{}, err
	}
	s.record(ctx, actor.Actor(), "logged a deposit of "+money.Compact(rec.Amount)+" to", rec.AccountHead)
	return rec, nil
}

// ConfirmDeposit confirms a Pending deposit. actor needs finance:approve.
func (s *Service) ConfirmDeposit(ctx context.Context, actor users.Profile, id string) (Deposit, error) {
	if !actor.Gate().HasPermission(rbac.PermFinanceApprove) {
		return Deposit{}, ErrApprovalNotPermitted
	}
	rec, err := s.ledger.ConfirmDeposit(id)
	if err != nil {
		return Deposit{}, err
	}
	s.record(ctx, actor.Actor(), "confirmed a deposit to", rec.AccountHead)
	return rec, nil
}

// ScheduleReminders adds a task for every recurring instruction due within
// leadDays of now. It satisfies the worker's reminder scanner.
func (s *Service) ScheduleReminders(ctx context.Context, now time.Time, leadDays int) (int, error) {
	if s.tasks == nil {
		return 0, fmt.Errorf("finance: reminders need a task store")
	}
	created := 0
	for _, in := range s.ledger.ClaimReminders(now, leadDays) {
		desc := fmt.Sprintf("Pay %s %s (%s) due %s", in.Payee, money.Format(in.Amount), in.ID, in.NextDueDate)
		if _, err := s.tasks.Add(desc, in.NextDueDate); err != nil {
			return created, fmt.Errorf("add reminder for %s: %w", in.ID, err)
		}
		created++
		s.record(ctx, activity.Actor{Name: "System"}, "scheduled a payment reminder for", in.Payee)
	}
	return created, nil
}

func (s *Service) record(ctx context.Context, actor activity.Actor, action, target string) {
	if s.feed == nil {
		return
	}
	s.feed.Record(ctx, actor, action, target)
}
