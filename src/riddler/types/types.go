package types

import "time"

// Settings
type Setting struct {
	ID    uint8  `gorm:"primaryKey"`
	Name  string `gorm:"size:64;uniqueIndex;not null"`
	Value string `gorm:"size:256;not null"`
}

// Analyses: one row per scored trigger, kept for the status API and audits.
type Analysis struct {
	ID           string `gorm:"primaryKey;size:36"`
	TriggerID    string `gorm:"size:32;index;not null"`
	ParentID     string `gorm:"size:32"`
	AuthorID     string `gorm:"size:32;index"`
	AuthorHandle string `gorm:"size:64"`
	Score        int
	Tier         string `gorm:"size:32"`
	Report       string `gorm:"size:1024"`
	CreatedAt    time.Time
}

// Answered triggers, so a pass never replies to the same trigger twice.
type TriggerLog struct {
	TriggerID  string `gorm:"primaryKey;size:32"`
	AnsweredAt time.Time
}

// Checkpoints, e.g. the newest trigger ID already searched past.
type Checkpoint struct {
	Name      string `gorm:"primaryKey;size:32"`
	Value     string `gorm:"size:64"`
	UpdatedAt time.Time
}
