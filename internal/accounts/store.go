// Package accounts manages the bank account heads deposits are made into.
package accounts

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

var (
	// ErrNotFound indicates an unknown account head id.
	ErrNotFound = errors.New("accounts: not found")
	// ErrInvalidAccountNumber is returned for account numbers with fewer than four digits.
	ErrInvalidAccountNumber = errors.New("accounts: account number needs at least 4 digits")
	// ErrAlreadyActive is returned when approving an active head.
	ErrAlreadyActive = errors.New("accounts: already active")
	// ErrInvalidHead is returned when name or bank name is blank.
	ErrInvalidHead = errors.New("accounts: name and bank name required")
)

// Status is the approval state of an account head.
type Status string

const (
	StatusPendingApproval Status = "Pending Approval"
	StatusActive          Status = "Active"
)

// AccountHead is a bank account that can receive deposits.
type AccountHead struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
	Status        Status `json:"status"`
}

// MaskAccountNumber keeps only the last four digits of number. Digits from
// any script count, e.g. Arabic-Indic.
func MaskAccountNumber(number string) (string, error) {
	digits := []rune(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number))
	if len(digits) < 4 {
		return "", ErrInvalidAccountNumber
	}
	return "**** **** **** " + string(digits[len(digits)-4:]), nil
}

// Store is the in-memory account head register.
type Store struct {
	mu    sync.RWMutex
	items []AccountHead
	seq   int
}

// NewStore seeds a store.
func NewStore(seed []AccountHead) *Store {
	s := &Store{items: append([]AccountHead(nil), seed...)}
	for _, h := range seed {
		if n, err := strconv.Atoi(strings.TrimPrefix(h.ID, "AH-")); err == nil && n > s.seq {
			s.seq = n
		}
	}
	return s
}

// SeedAccountHeads returns the initial heads.
func SeedAccountHeads() []AccountHead {
	return []AccountHead{
		{ID: "AH-001", Name: "Main Operations", BankName: "Dubai Islamic Bank", AccountNumber: "**** **** **** 1234", Status: StatusActive},
		{ID: "AH-002", Name: "Project Alpha Payouts", BankName: "Emirates NBD", AccountNumber: "**** **** **** 5678", Status: StatusActive},
		{ID: "AH-003", Name: "Petty Cash Account", BankName: "First Abu Dhabi Bank", AccountNumber: "**** **** **** 9012", Status: StatusPendingApproval},
	}
}

// List returns a copy of all heads.
func (s *Store) List() []AccountHead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]AccountHead(nil), s.items...)
}

// Get returns head id.
func (s *Store) Get(id string) (AccountHead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	return AccountHead{}, false
}

// ActiveAccountHead reports whether name refers to an approved head.
func (s *Store) ActiveAccountHead(name string) bool {
	name = strings.TrimSpace(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.items {
		if h.Status == StatusActive && strings.EqualFold(h.Name, name) {
			return true
		}
	}
	return false
}

// Add registers a head awaiting approval. The account number is stored masked.
func (s *Store) Add(name, bankName, accountNumber string) (AccountHead, error) {
	name, bankName = strings.TrimSpace(name), strings.TrimSpace(bankName)
	if name == "" || bankName == "" {
		return AccountHead{}, ErrInvalidHead
	}
	masked, err := MaskAccountNumber(accountNumber)
	if err != nil {
		return AccountHead{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	h := AccountHead{
		ID:            fmt.Sprintf("AH-%03d", s.seq),
		Name:          name,
		BankName:      bankName,
		AccountNumber: masked,
		Status:        StatusPendingApproval,
	}
	s.items = append(s.items, h)
	return h, nil
}

// Update renames head id. A non-empty accountNumber replaces the masked number.
func (s *Store) Update(id, name, bankName, accountNumber string) (AccountHead, error) {
	name, bankName = strings.TrimSpace(name), strings.TrimSpace(bankName)
	if name == "" || bankName == "" {
		return AccountHead{}, ErrInvalidHead
	}
	var masked string
	if strings.TrimSpace(accountNumber) != "" {
		var err error
		if masked, err = MaskAccountNumber(accountNumber); err != nil {
			return AccountHead{}, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return AccountHead{}, ErrNotFound
	}
	s.items[i].Name = name
	s.items[i].BankName = bankName
	if masked != "" {
		s.items[i].AccountNumber = masked
	}
	return s.items[i], nil
}

// Approve activates a pending head.
func (s *Store) Approve(id string) (AccountHead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return AccountHead{}, ErrNotFound
	}
	if s.items[i].Status == StatusActive {
		return AccountHead{}, ErrAlreadyActive
	}
	s.items[i].Status = StatusActive
	return s.items[i], nil
}

// Delete removes head id and returns it.
func (s *Store) Delete(id string) (AccountHead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return AccountHead{}, ErrNotFound
	}
	h := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	return h, nil
}

func (s *Store) indexLocked(id string) int {
	for i, h := range s.items {
		if h.ID == id {
			return i
		}
	}
	return -1
}
