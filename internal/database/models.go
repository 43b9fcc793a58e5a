package database

import "time"

// KnownUser is a user the bot has observed in any chat. It lets handles be
// resolved to ids, which the Bot API cannot do for private accounts.
type KnownUser struct {
	UserID    int64     `db:"user_id"`
	Username  string    `db:"username"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	IsBot     bool      `db:"is_bot"`
	IsPremium bool      `db:"is_premium"`
	FirstSeen time.Time `db:"first_seen"`
	LastSeen  time.Time `db:"last_seen"`
}
