package models

// User is a registered account. Every other entity references users by
// their numeric ID and never owns them.
type User struct {
	ID       int64  `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
}
