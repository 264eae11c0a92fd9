package finance

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tabdeel/pulse/internal/platform/money"
)

// Ledger holds the finance records in memory.
type Ledger struct {
	mu             sync.RWMutex
	instructions   []Instruction
	collections    []Collection
	deposits       []Deposit
	instructionSeq int
	collectionSeq  int
	depositSeq     int
	reminded       map[string]string
}

// Seed is the initial ledger content.
type Seed struct {
	Instructions []Instruction
	Collections  []Collection
	Deposits     []Deposit
}

// NewLedger builds a ledger from seed. Id counters continue after the highest
// seeded number.
func NewLedger(seed Seed) *Ledger {
	l := &Ledger{reminded: make(map[string]string)}
	for _, in := range seed.Instructions {
		l.instructions = append(l.instructions, in.clone())
		l.instructionSeq = max(l.instructionSeq, idNumber(in.ID))
	}
	for _, c := range seed.Collections {
		l.collections = append(l.collections, c.clone())
		l.collectionSeq = max(l.collectionSeq, idNumber(c.ID))
	}
	for _, d := range seed.Deposits {
		l.deposits = append(l.deposits, d.clone())
		l.depositSeq = max(l.depositSeq, idNumber(d.ID))
	}
	return l
}

// Instructions returns sorted, filtered copies. The default order is dueDate desc.
func (l *Ledger) Instructions(opts ListOptions) []Instruction {
	l.mu.RLock()
	out := make([]Instruction, 0, len(l.instructions))
	for _, in := range l.instructions {
		if inRange(in.DueDate, opts) {
			out = append(out, in.clone())
		}
	}
	l.mu.RUnlock()

	byAmount := opts.Sort == "amount"
	sortRecords(out, opts.Order, func(a, b Instruction) int {
		if byAmount {
			return cmp.Compare(a.Amount, b.Amount)
		}
		return cmp.Compare(a.DueDate, b.DueDate)
	})
	return out
}

// Instruction returns a copy of the instruction with id.
func (l *Ledger) Instruction(id string) (Instruction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, in := range l.instructions {
		if in.ID == id {
			return in.clone(), true
		}
	}
	return Instruction{}, false
}

// AddInstruction stores a Pending instruction submitted by submittedBy.
func (l *Ledger) AddInstruction(in NewInstruction, submittedBy string, at time.Time) (Instruction, error) {
	if err := validateInstruction(in); err != nil {
		return Instruction{}, err
	}
	rec := Instruction{
		Payee:       strings.TrimSpace(in.Payee),
		Amount:      in.Amount,
		Currency:    money.Currency.String(),
		DueDate:     in.DueDate,
		Status:      InstructionPending,
		IsRecurring: in.IsRecurring,
		SubmittedBy: submittedBy,
		History:     []HistoryEntry{{Status: InstructionPending, User: submittedBy, Timestamp: at}},
	}
	if in.IsRecurring {
		rec.NextDueDate = in.NextDueDate
		b := *in.Balance
		rec.Balance = &b
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.instructionSeq++
	rec.ID = fmt.Sprintf("PI-%05d", l.instructionSeq)
	l.instructions = append(l.instructions, rec)
	return rec.clone(), nil
}

// Decide moves a Pending instruction to decision on behalf of by. The amount is
// checked against limit under the same lock as the status change.
func (l *Ledger) Decide(id string, decision InstructionStatus, by string, limit float64, remarks string, at time.Time) (Instruction, error) {
	if decision != InstructionApproved && decision != InstructionRejected {
		return Instruction{}, fmt.Errorf("%w: decision %q", ErrInvalidInput, decision)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.instructions {
		in := &l.instructions[i]
		if in.ID != id {
			continue
		}
		if in.Status != InstructionPending {
			return Instruction{}, ErrNotPending
		}
		if in.Amount > limit {
			return Instruction{}, ErrOverLimit
		}
		in.Status = decision
		in.History = append(in.History, HistoryEntry{Status: decision, User: by, Timestamp: at, Remarks: strings.TrimSpace(remarks)})
		return in.clone(), nil
	}
	return Instruction{}, ErrNotFound
}

// PendingApprovals sums instructions awaiting a decision.
func (l *Ledger) PendingApprovals() PendingSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out PendingSummary
	for _, in := range l.instructions {
		if in.Status == InstructionPending {
			out.Count++
			out.Amount += in.Amount
		}
	}
	return out
}

// ClaimReminders returns recurring instructions whose next due date falls
// within leadDays of now and marks them so each due date is claimed once.
func (l *Ledger) ClaimReminders(now time.Time, leadDays int) []Instruction {
	today := now.UTC().Format(DateLayout)
	horizon := now.UTC().AddDate(0, 0, leadDays).Format(DateLayout)

	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Instruction
	for _, in := range l.instructions {
		if !in.IsRecurring || in.NextDueDate == "" || in.Status == InstructionRejected {
			continue
		}
		if in.NextDueDate < today || in.NextDueDate > horizon {
			continue
		}
		if l.reminded[in.ID] == in.NextDueDate {
			continue
		}
		l.reminded[in.ID] = in.NextDueDate
		out = append(out, in.clone())
	}
	return out
}

// Collections returns sorted, filtered copies. The default order is date desc.
func (l *Ledger) Collections(opts ListOptions) []Collection {
	l.mu.RLock()
	out := make([]Collection, 0, len(l.collections))
	for _, c := range l.collections {
		if inRange(c.Date, opts) {
			out = append(out, c.clone())
		}
	}
	l.mu.RUnlock()

	byAmount := opts.Sort == "amount"
	sortRecords(out, opts.Order, func(a, b Collection) int {
		if byAmount {
			return cmp.Compare(a.Amount, b.Amount)
		}
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// AddCollection stores a Collected collection.
func (l *Ledger) AddCollection(in NewCollection) (Collection, error) {
	if err := validateCollection(in); err != nil {
		return Collection{}, err
	}
	rec := Collection{
		Project:  strings.TrimSpace(in.Project),
		Payer:    strings.TrimSpace(in.Payer),
		Amount:   in.Amount,
		Type:     in.Type,
		Date:     in.Date,
		Status:   CollectionCollected,
		Document: normalizeDocument(in.Document),
	}
	if in.OutstandingAmount != nil {
		v := *in.OutstandingAmount
		rec.OutstandingAmount = &v
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.collectionSeq++
	rec.ID = fmt.Sprintf("C-%d", l.collectionSeq)
	l.collections = append(l.collections, rec)
	return rec.clone(), nil
}

// Collection returns a copy of the collection with id.
func (l *Ledger) Collection(id string) (Collection, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, c := range l.collections {
		if c.ID == id {
			return c.clone(), true
		}
	}
	return Collection{}, false
}

// MarkDeposited moves a Collected collection to Deposited.
func (l *Ledger) MarkDeposited(id string) (Collection, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.collections {
		c := &l.collections[i]
		if c.ID != id {
			continue
		}
		if c.Status == CollectionDeposited {
			return Collection{}, ErrAlreadyDeposited
		}
		c.Status = CollectionDeposited
		return c.clone(), nil
	}
	return Collection{}, ErrNotFound
}

// CollectedRevenue sums every collection regardless of status.
func (l *Ledger) CollectedRevenue() float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var total float64
	for _, c := range l.collections {
		total += c.Amount
	}
	return total
}

// Deposits returns sorted, filtered copies. The default order is date desc.
func (l *Ledger) Deposits(opts ListOptions) []Deposit {
	l.mu.RLock()
	out := make([]Deposit, 0, len(l.deposits))
	for _, d := range l.deposits {
		if inRange(d.Date, opts) {
			out = append(out, d.clone())
		}
	}
	l.mu.RUnlock()

	byAmount := opts.Sort == "amount"
	sortRecords(out, opts.Order, func(a, b Deposit) int {
		if byAmount {
			return cmp.Compare(a.Amount, b.Amount)
		}
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

// AddDeposit stores a Pending deposit.
func (l *Ledger) AddDeposit(in NewDeposit) (Deposit, error) {
	if err := validateDeposit(in); err != nil {
		return Deposit{}, err
	}
	rec := Deposit{
		AccountHead: strings.TrimSpace(in.AccountHead),
		Amount:      in.Amount,
		Date:        in.Date,
		Status:      DepositPending,
		Document:    normalizeDocument(in.Document),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.depositSeq++
	rec.ID = fmt.Sprintf("D-%d", l.depositSeq)
	l.deposits = append(l.deposits, rec)
	return rec.clone(), nil
}

// Deposit returns a copy of the deposit with id.
func (l *Ledger) Deposit(id string) (Deposit, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, d := range l.deposits {
		if d.ID == id {
			return d.clone(), true
		}
	}
	return Deposit{}, false
}

// ConfirmDeposit moves a Pending deposit to Confirmed.
func (l *Ledger) ConfirmDeposit(id string) (Deposit, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.deposits {
		d := &l.deposits[i]
		if d.ID != id {
			continue
		}
		if d.Status == DepositConfirmed {
			return Deposit{}, ErrAlreadyConfirmed
		}
		d.Status = DepositConfirmed
		return d.clone(), nil
	}
	return Deposit{}, ErrNotFound
}

func sortRecords[T any](items []T, order SortOrder, compare func(a, b T) int) {
	slices.SortStableFunc(items, func(a, b T) int {
		if order == Ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
}

func inRange(date string, opts ListOptions) bool {
	if opts.From != "" && date < opts.From {
		return false
	}
	if opts.To != "" && date > opts.To {
		return false
	}
	return true
}

// idNumber extracts the numeric suffix of ids like "PI-00124" or "C-203".
func idNumber(id string) int {
	_, digits, ok := strings.Cut(id, "-")
	if !ok {
		return 0
	}
	n := 0
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func validDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

func validateInstruction(in NewInstruction) error {
	switch {
	case strings.TrimSpace(in.Payee) == "":
		return fmt.Errorf("%w: payee required", ErrInvalidInput)
	case in.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	case !validDate(in.DueDate):
		return fmt.Errorf("%w: due date %q", ErrInvalidInput, in.DueDate)
	}
	if in.IsRecurring {
		if !validDate(in.NextDueDate) {
			return fmt.Errorf("%w: next due date %q", ErrInvalidInput, in.NextDueDate)
		}
		if in.Balance == nil || *in.Balance < 0 {
			return fmt.Errorf("%w: recurring payments need a balance", ErrInvalidInput)
		}
	}
	return nil
}

func validateCollection(in NewCollection) error {
	switch {
	case strings.TrimSpace(in.Project) == "":
		return fmt.Errorf("%w: project required", ErrInvalidInput)
	case strings.TrimSpace(in.Payer) == "":
		return fmt.Errorf("%w: payer required", ErrInvalidInput)
	case in.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	case in.Type != CollectionCash && in.Type != CollectionCheque:
		return fmt.Errorf("%w: type %q", ErrInvalidInput, in.Type)
	case !validDate(in.Date):
		return fmt.Errorf("%w: date %q", ErrInvalidInput, in.Date)
	case in.OutstandingAmount != nil && *in.OutstandingAmount < 0:
		return fmt.Errorf("%w: outstanding amount must not be negative", ErrInvalidInput)
	}
	return validateDocument(in.Document)
}

func validateDeposit(in NewDeposit) error {
	switch {
	case strings.TrimSpace(in.AccountHead) == "":
		return fmt.Errorf("%w: account head required", ErrInvalidInput)
	case in.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	case !validDate(in.Date):
		return fmt.Errorf("%w: date %q", ErrInvalidInput, in.Date)
	}
	return validateDocument(in.Document)
}
