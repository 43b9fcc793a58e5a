package moderation

import (
	"errors"
	"fmt"
)

var (
	// ErrEntityNotFound is the soft miss returned by directory lookups.
	ErrEntityNotFound = errors.New("entity not found")

	// ErrPermissionRevoked means the bot lost the rights needed for the action.
	ErrPermissionRevoked = errors.New("bot lacks permission")
	// ErrTargetNotInChat means the platform does not see the target in the chat.
	ErrTargetNotInChat = errors.New("target not in chat")
	// ErrTargetProtected means the platform refused to act on a privileged target.
	ErrTargetProtected = errors.New("target is protected")
)

// DenyReason is the closed set of policy denials.
type DenyReason int

const (
	DenyNone DenyReason = iota
	DenyRateLimited
	DenyNotAdmin
	DenyNoTargetSpecified
	DenyUserNotFound
	DenyNotAUserAccount
	DenyNotAMember
	DenyBotNotAdmin
	DenyCannotModerateCreator
	DenyCannotModerateAdmin
	DenyCannotModerateSelf
)

func (r DenyReason) String() string {
	switch r {
	case DenyRateLimited:
		return "rate_limited"
	case DenyNotAdmin:
		return "not_admin"
	case DenyNoTargetSpecified:
		return "no_target_specified"
	case DenyUserNotFound:
		return "user_not_found"
	case DenyNotAUserAccount:
		return "not_a_user_account"
	case DenyNotAMember:
		return "not_a_member"
	case DenyBotNotAdmin:
		return "bot_not_admin"
	case DenyCannotModerateCreator:
		return "cannot_moderate_creator"
	case DenyCannotModerateAdmin:
		return "cannot_moderate_admin"
	case DenyCannotModerateSelf:
		return "cannot_moderate_self"
	default:
		return "none"
	}
}

// Denial is returned when a guard rejects a request.
type Denial struct {
	Reason DenyReason
	// Subject is the raw target specifier, when one was given.
	Subject string
}

func (d *Denial) Error() string {
	if d.Subject != "" {
		return fmt.Sprintf("denied: %s (%s)", d.Reason, d.Subject)
	}
	return "denied: " + d.Reason.String()
}

func deny(reason DenyReason) *Denial {
	return &Denial{Reason: reason}
}

// ReasonOf extracts the deny reason carried by err, or DenyNone.
func ReasonOf(err error) DenyReason {
	var d *Denial
	if errors.As(err, &d) {
		return d.Reason
	}
	return DenyNone
}

// FailureKind classifies errors raised by the executor after every guard passed.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailurePermissionRevoked
	FailureTargetNotInChat
	FailureTargetProtected
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailurePermissionRevoked:
		return "permission_revoked"
	case FailureTargetNotInChat:
		return "target_not_in_chat"
	case FailureTargetProtected:
		return "target_protected"
	case FailureOther:
		return "other"
	default:
		return "none"
	}
}

// ClassifyFailure maps an executor error onto a FailureKind.
func ClassifyFailure(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, ErrPermissionRevoked):
		return FailurePermissionRevoked
	case errors.Is(err, ErrTargetNotInChat):
		return FailureTargetNotInChat
	case errors.Is(err, ErrTargetProtected):
		return FailureTargetProtected
	default:
		return FailureOther
	}
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
