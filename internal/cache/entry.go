package cache

import "time"

// Entry is the persisted form of one ephemeral cache record. The primary key
// is a fingerprint of the sorted logical request parameters, not a raw key
// string.
type Entry struct {
	Fingerprint string    `gorm:"primaryKey;size:64"`
	Payload     []byte    `gorm:"type:blob"`
	TTLSeconds  int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

// TableName fixes the SQLite table name.
func (Entry) TableName() string { return "cache_entries" }

func (e Entry) validAt(now time.Time) bool {
	return e.CreatedAt.Add(time.Duration(e.TTLSeconds) * time.Second).After(now)
}
