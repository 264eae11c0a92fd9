package finance

import "time"

// SeedData returns the initial finance records.
func SeedData() Seed {
	return Seed{
		Instructions: []Instruction{
			{
				ID: "PI-00124", Payee: "Etisalat", Amount: 15500.00, Currency: "AED", DueDate: "2024-07-25",
				Status: InstructionPending, IsRecurring: true, NextDueDate: "2024-08-25", Balance: amount(186000), SubmittedBy: "Shiraj",
				History: []HistoryEntry{{Status: InstructionPending, User: "Shiraj", Timestamp: stamp("2024-07-22 10:00")}},
			},
			{
				ID: "PI-00123", Payee: "Bosch Security Systems", Amount: 42500.75, Currency: "AED", DueDate: "2024-07-20",
				Status: InstructionApproved, SubmittedBy: "Elwin",
				History: []HistoryEntry{
					{Status: InstructionPending, User: "Elwin", Timestamp: stamp("2024-07-18 14:30")},
					{Status: InstructionApproved, User: "Suhair Mahmoud", Timestamp: stamp("2024-07-19 09:15")},
				},
			},
			{
				ID: "PI-00122", Payee: "Hikvision Middle East", Amount: 13200.00, Currency: "AED", DueDate: "2024-07-19",
				Status: InstructionRejected, SubmittedBy: "Peesto",
				History: []HistoryEntry{
					{Status: InstructionPending, User: "Peesto", Timestamp: stamp("2024-07-18 11:00")},
					{Status: InstructionRejected, User: "Suhair Mahmoud", Timestamp: stamp("2024-07-18 16:45"), Remarks: "PO number mismatch"},
				},
			},
			{
				ID: "PI-00121", Payee: "DEWA", Amount: 2850.50, Currency: "AED", DueDate: "2024-07-15",
				Status: InstructionApproved, IsRecurring: true, NextDueDate: "2024-08-15", Balance: amount(34206.00), SubmittedBy: "Shiraj",
				History: []HistoryEntry{
					{Status: InstructionPending, User: "Shiraj", Timestamp: stamp("2024-07-13 09:00")},
					{Status: InstructionApproved, User: "Suhair Mahmoud", Timestamp: stamp("2024-07-14 11:20")},
				},
			},
		},
		Collections: []Collection{
			{ID: "C-201", Project: "Al Quoz Labour Camp Internet", Payer: "Al Naboodah Construction", Amount: 50000, Type: CollectionCheque, Date: "2024-07-22", Status: CollectionDeposited, OutstandingAmount: amount(150000)},
			{ID: "C-202", Project: "ICD Brookfield Place Security System Upgrade", Payer: "ICD Brookfield", Amount: 125000, Type: CollectionCheque, Date: "2024-07-21", Status: CollectionDeposited, OutstandingAmount: amount(0)},
			{ID: "C-203", Project: "Jebel Ali Labour Village Connectivity", Payer: "DP World", Amount: 75000, Type: CollectionCash, Date: "2024-07-22", Status: CollectionCollected, OutstandingAmount: amount(75000)},
		},
		Deposits: []Deposit{
			{ID: "D-101", AccountHead: "Main Operations", Amount: 17500.00, Date: "2024-07-22", Status: DepositConfirmed},
			{ID: "D-102", AccountHead: "Project Alpha Payouts", Amount: 7500.00, Date: "2024-07-22", Status: DepositPending},
		},
	}
}

func amount(v float64) *float64 { return &v }

func stamp(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}
