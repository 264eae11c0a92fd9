package servicejobs

import (
	"time"

	"github.com/tabdeel/pulse/internal/users"
)

var (
	nouman = Person{ID: 6, Name: "NOUMAN", AvatarURL: users.AvatarURL("nouman")}
	benhur = Person{ID: 7, Name: "Benhur", AvatarURL: users.AvatarURL("benhur")}
	nakul  = Person{ID: 8, Name: "Nakul", AvatarURL: users.AvatarURL("nakul")}
)

// SeedJobs returns the initial board.
func SeedJobs() []Job {
	return []Job{
		{ID: "SJ-9812", Title: "Perform quarterly maintenance on CCTV server", Project: "ICD Brookfield Place Security System Upgrade", Technician: nouman, Status: StatusCompleted, Priority: PriorityMedium},
		{ID: "SJ-9813", Title: "Diagnose network outage in finance department", Project: "Jebel Ali Labour Village Connectivity", Technician: benhur, Status: StatusInProgress, Priority: PriorityHigh},
		{ID: "SJ-9814", Title: "Install new biometric scanner at main entrance", Project: "City Walk Building 7 BMS", Technician: nouman, Status: StatusInProgress, Priority: PriorityHigh},
		{ID: "SJ-9815", Title: "Replace faulty smoke detector in server room", Project: "City Walk Building 7 BMS", Technician: benhur, Status: StatusAssigned, Priority: PriorityMedium},
		{ID: "SJ-9816", Title: "Deploy guest Wi-Fi solution for lobby area", Project: "Al Quoz Labour Camp Internet", Technician: nakul, Status: StatusAssigned, Priority: PriorityLow},
		{ID: "SJ-9817", Title: "Integrate fire alarm with new BMS panel", Project: "City Walk Building 7 BMS", Technician: benhur, Status: StatusResolved, Priority: PriorityHigh},
		{ID: "SJ-9818", Title: "Cable patching for new office workstations", Project: "Dubai Hills Villa ELV Integration", Technician: nouman, Status: StatusAssigned, Priority: PriorityLow},
		{ID: "SJ-9819", Title: "Firmware upgrade for all access points", Project: "Al Quoz Labour Camp Internet", Technician: nakul, Status: StatusInProgress, Priority: PriorityMedium},
	}
}

// SeedComments returns the initial job comments.
func SeedComments() []Comment {
	suju := Person{ID: 5, Name: "Suju", AvatarURL: users.AvatarURL("suju")}
	return []Comment{
		{ID: 1, JobID: "SJ-9814", User: suju, Text: "Please check the main valve first, could be a pressure issue.", Timestamp: time.Date(2024, 7, 22, 8, 0, 0, 0, time.UTC)},
		{ID: 2, JobID: "SJ-9814", User: nouman, Text: "Will do. I am on my way to the site now.", Timestamp: time.Date(2024, 7, 22, 9, 0, 0, 0, time.UTC)},
	}
}
