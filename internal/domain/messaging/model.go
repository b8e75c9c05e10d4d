package messaging

import "time"

type Thread struct {
	ID        int       `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Thread) TableName() string { return "message_threads" }

// Participant links a user to a thread. (threadID, userID) pairs are
// deliberately not unique; duplicates are possible.
type Participant struct {
	ID       int `gorm:"primaryKey"`
	ThreadID int `gorm:"not null;index"`
	UserID   int `gorm:"not null;index"`
}

func (Participant) TableName() string { return "thread_participants" }

type Message struct {
	ID           int       `gorm:"primaryKey"`
	ThreadID     int       `gorm:"not null;index"`
	SenderUserID int       `gorm:"not null"`
	Body         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// ThreadWithParticipants is the inbox row: a thread plus the user ids
// participating in it.
type ThreadWithParticipants struct {
	Thread       Thread
	Participants []int
}
