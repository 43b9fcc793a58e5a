// Package moderation implements the command authorization and action dispatch
// pipeline: per-user rate limiting, admin verification, target resolution,
// membership event de-duplication and the audit trail of every attempted action.
package moderation

import (
	"context"
	"time"
)

const (
	// CommandCooldown is the minimum spacing between two authorized commands of the same user.
	CommandCooldown = 2 * time.Second
	// DedupWindow is how long a welcome/goodbye key suppresses repeated notifications.
	DedupWindow = 30 * time.Second
	// BatchDelay spaces notifications produced by a single batch membership event.
	BatchDelay = time.Second
	// StaleCooldownMultiple bounds how long idle rate limit entries are retained.
	StaleCooldownMultiple = 10
)

// UserRef is a transient reference to a platform user.
type UserRef struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	IsBot     bool
	IsPremium bool
}

// Label returns "@handle" when the user has one, otherwise the first name.
func (u UserRef) Label() string {
	if u.Username != "" {
		return "@" + u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return "-"
}

// FullName joins first and last name.
func (u UserRef) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// EntityKind distinguishes individual accounts from chats and channels.
type EntityKind int

const (
	EntityUser EntityKind = iota
	EntityGroup
	EntityChannel
)

// Entity is the result of a directory lookup by id or handle.
type Entity struct {
	Kind  EntityKind
	User  UserRef
	Title string
}

// IsUser reports whether the entity denotes an individual account.
func (e Entity) IsUser() bool {
	return e.Kind == EntityUser
}

// Role is a participant's standing inside a chat.
type Role int

const (
	RoleNotFound Role = iota
	RoleRegular
	RoleBanned
	RoleAdmin
	RoleCreator
)

func (r Role) String() string {
	switch r {
	case RoleRegular:
		return "member"
	case RoleBanned:
		return "banned"
	case RoleAdmin:
		return "admin"
	case RoleCreator:
		return "creator"
	default:
		return "not_found"
	}
}

// IsParticipant reports whether the role denotes someone known to the chat.
// Banned users still count so that they can be unbanned.
func (r Role) IsParticipant() bool {
	return r != RoleNotFound
}

// IsAdminOrCreator reports whether the role carries elevated rights.
func (r Role) IsAdminOrCreator() bool {
	return r == RoleAdmin || r == RoleCreator
}

// ReplyTarget describes the message a command replied to.
type ReplyTarget struct {
	MessageID int
	// AuthorID is zero when the platform did not expose an author.
	AuthorID int64
	// AuthorIsChat is set when the message was posted on behalf of a chat or channel.
	AuthorIsChat bool
}

// CommandRequest is a single inbound command, discarded after dispatch.
type CommandRequest struct {
	ChatID    int64
	MessageID int
	Issuer    UserRef
	Text      string
	ReplyTo   *ReplyTarget
}

// Directory answers participant-role and entity queries for chats.
type Directory interface {
	// ParticipantRole returns RoleNotFound without error when the user is not in the chat.
	ParticipantRole(ctx context.Context, chatID, userID int64) (Role, error)
	// EntityByID returns ErrEntityNotFound when nothing is known about the id.
	EntityByID(ctx context.Context, id int64) (Entity, error)
	// EntityByHandle returns ErrEntityNotFound when the handle does not resolve.
	EntityByHandle(ctx context.Context, handle string) (Entity, error)
}

// Executor performs restriction and removal calls on the platform.
type Executor interface {
	ApplyRestriction(ctx context.Context, chatID, userID int64, rights Rights) error
	RemoveParticipant(ctx context.Context, chatID, userID int64) error
}
