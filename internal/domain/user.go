package domain

import "time"

// User represents a bot user
type User struct {
	ID         int64
	TelegramID int64
	Username   string
	CreatedAt  time.Time
}
