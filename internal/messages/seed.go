package messages

import (
	"time"

	"github.com/tabdeel/pulse/internal/users"
)

// SeedThreads returns the initial conversations.
func SeedThreads() []SeedThread {
	semeem := Participant{ID: 1, Name: "Mohammed Semeem", AvatarURL: users.AvatarURL("semeem")}
	suhair := Participant{ID: 2, Name: "Suhair Mahmoud", AvatarURL: users.AvatarURL("suhair")}
	shiraj := Participant{ID: 4, Name: "Shiraj", AvatarURL: users.AvatarURL("shiraj")}
	day := time.Date(2024, time.July, 22, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	return []SeedThread{
		{
			ID:           "thread-1",
			Title:        "Project Alpha Planning",
			Participants: []Participant{semeem, suhair},
			Messages: []Message{
				{ID: 1, User: semeem, Text: "Hey Suhair, can we sync up on the Project Alpha timeline?", Timestamp: at(10, 30)},
				{ID: 2, User: suhair, Text: "Sure, I'm free after 2 PM. I'll send over the latest budget figures before then.", Timestamp: at(10, 32)},
				{ID: 3, User: suhair, Text: "Here are the updated budget figures. The cabling allowance went up by 12% after the site survey, and the CCTV scope now covers the parking levels as well.", Timestamp: at(10, 45)},
			},
			Unread: map[int64]int{semeem.ID: 1},
		},
		{
			ID:           "thread-2",
			Title:        "Q3 Marketing Campaign",
			Participants: []Participant{shiraj, semeem},
			Messages: []Message{
				{ID: 1, User: shiraj, Text: "The creatives for the new campaign are ready for review.", Timestamp: day.Add(-24*time.Hour + 16*time.Hour)},
			},
		},
	}
}
