// Package finance tracks payment instructions, collections and deposits.
package finance

import (
	"errors"
	"time"
)

// DateLayout is the wire format of due and transaction dates.
const DateLayout = "2006-01-02"

var (
	// ErrNotFound indicates an unknown record id.
	ErrNotFound = errors.New("finance: not found")
	// ErrNotPending is returned when deciding an instruction that was already decided.
	ErrNotPending = errors.New("finance: instruction is not pending")
	// ErrOverLimit is returned when the amount exceeds the approver's financial limit.
	ErrOverLimit = errors.New("finance: amount exceeds approval limit")
	// ErrApprovalNotPermitted is returned when the actor lacks finance:approve.
	ErrApprovalNotPermitted = errors.New("finance: approval not permitted")
	// ErrAlreadyDeposited is returned when depositing a collection twice.
	ErrAlreadyDeposited = errors.New("finance: collection already deposited")
	// ErrAlreadyConfirmed is returned when confirming a deposit twice.
	ErrAlreadyConfirmed = errors.New("finance: deposit already confirmed")
	// ErrUnknownAccountHead is returned for deposits into a missing or unapproved account head.
	ErrUnknownAccountHead = errors.New("finance: unknown or inactive account head")
	// ErrUnknownProject is returned for collections against a missing project.
	ErrUnknownProject = errors.New("finance: unknown project")
	// ErrInvalidInput is returned for malformed records.
	ErrInvalidInput = errors.New("finance: invalid input")
)

// InstructionStatus is the approval state of a payment instruction.
type InstructionStatus string

const (
	InstructionPending  InstructionStatus = "Pending"
	InstructionApproved InstructionStatus = "Approved"
	InstructionRejected InstructionStatus = "Rejected"
)

// HistoryEntry records one status change of an instruction.
type HistoryEntry struct {
	Status    InstructionStatus `json:"status"`
	User      string            `json:"user"`
	Timestamp time.Time         `json:"timestamp"`
	Remarks   string            `json:"remarks,omitempty"`
}

// Instruction is a request to pay a payee.
type Instruction struct {
	ID          string            `json:"id"`
	Payee       string            `json:"payee"`
	Amount      float64           `json:"amount"`
	Currency    string            `json:"currency"`
	DueDate     string            `json:"dueDate"`
	Status      InstructionStatus `json:"status"`
	IsRecurring bool              `json:"isRecurring"`
	NextDueDate string            `json:"nextDueDate,omitempty"`
	Balance     *float64          `json:"balance,omitempty"`
	SubmittedBy string            `json:"submittedBy"`
	History     []HistoryEntry    `json:"history"`
}

func (i Instruction) clone() Instruction {
	i.History = append([]HistoryEntry(nil), i.History...)
	if i.Balance != nil {
		b := *i.Balance
		i.Balance = &b
	}
	return i
}

// NewInstruction carries the fields accepted when submitting an instruction.
type NewInstruction struct {
	Payee       string
	Amount      float64
	DueDate     string
	IsRecurring bool
	NextDueDate string
	Balance     *float64
}

// CollectionType is how a collection was paid.
type CollectionType string

const (
	CollectionCash   CollectionType = "Cash"
	CollectionCheque CollectionType = "Cheque"
)

// CollectionStatus tracks a collection through deposit.
type CollectionStatus string

const (
	CollectionCollected CollectionStatus = "Collected"
	CollectionDeposited CollectionStatus = "Deposited"
)

// Collection is money received from a client against a project.
type Collection struct {
	ID                string           `json:"id"`
	Project           string           `json:"project"`
	Payer             string           `json:"payer"`
	Amount            float64          `json:"amount"`
	Type              CollectionType   `json:"type"`
	Date              string           `json:"date"`
	Status            CollectionStatus `json:"status"`
	OutstandingAmount *float64         `json:"outstandingAmount,omitempty"`
	Document          *Document        `json:"document,omitempty"`
}

func (c Collection) clone() Collection {
	if c.OutstandingAmount != nil {
		v := *c.OutstandingAmount
		c.OutstandingAmount = &v
	}
	c.Document = c.Document.clone()
	return c
}

// NewCollection carries the fields accepted when logging a collection.
type NewCollection struct {
	Project           string
	Payer             string
	Amount            float64
	Type              CollectionType
	Date              string
	OutstandingAmount *float64
	Document          *Document
}

// DepositStatus is the bank confirmation state of a deposit.
type DepositStatus string

const (
	DepositPending   DepositStatus = "Pending"
	DepositConfirmed DepositStatus = "Confirmed"
)

// Deposit is money placed into an account head.
type Deposit struct {
	ID          string        `json:"id"`
	AccountHead string        `json:"accountHead"`
	Amount      float64       `json:"amount"`
	Date        string        `json:"date"`
	Status      DepositStatus `json:"status"`
	Document    *Document     `json:"document,omitempty"`
}

func (d Deposit) clone() Deposit {
	d.Document = d.Document.clone()
	return d
}

// NewDeposit carries the fields accepted when logging a deposit.
type NewDeposit struct {
	AccountHead string
	Amount      float64
	Date        string
	Document    *Document
}

// SortOrder is asc or desc.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// ListOptions sorts and filters a list. Sort is "dueDate" or "date" (the
// default for the list) or "amount". From and To bound the date inclusively
// and may be empty.
type ListOptions struct {
	Sort  string
	Order SortOrder
	From  string
	To    string
}

// PendingSummary aggregates instructions awaiting a decision.
type PendingSummary struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}
