package moderation

// Rights lists which capabilities are withheld from a user. The zero value
// withholds nothing.
type Rights struct {
	ViewMessages bool
	SendMessages bool
}

var (
	// MuteRights keep the user able to read but not to write.
	MuteRights = Rights{SendMessages: true}
	// BanRights remove both reading and writing.
	BanRights = Rights{ViewMessages: true, SendMessages: true}
	// UnbanRights clear every restriction.
	UnbanRights = Rights{}
)

// Restricted reports whether any capability is withheld.
func (r Rights) Restricted() bool {
	return r.ViewMessages || r.SendMessages
}

// Action is a moderation command kind.
type Action string

const (
	ActionBan    Action = "ban"
	ActionUnban  Action = "unban"
	ActionMute   Action = "mute"
	ActionUnmute Action = "unmute"
	ActionKick   Action = "kick"
	// ActionRemove takes a user out of the chat through the participant
	// removal primitive (the /goodbye command).
	ActionRemove Action = "remove"
)

// Actions lists every moderation action in command order.
var Actions = []Action{ActionBan, ActionUnban, ActionMute, ActionUnmute, ActionKick, ActionRemove}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Rights returns the payload applied for the action. Kick and remove return
// the ban payload, which is undone right after it is applied.
func (a Action) Rights() Rights {
	switch a {
	case ActionBan, ActionKick, ActionRemove:
		return BanRights
	case ActionMute:
		return MuteRights
	default:
		return UnbanRights
	}
}

// ProtectsAdmins reports whether admins are shielded from the action.
func (a Action) ProtectsAdmins() bool {
	switch a {
	case ActionBan, ActionMute, ActionKick, ActionRemove:
		return true
	default:
		return false
	}
}

// PastTense is used in confirmations and audit lines.
func (a Action) PastTense() string {
	switch a {
	case ActionBan:
		return "banned"
	case ActionUnban:
		return "unbanned"
	case ActionMute:
		return "muted"
	case ActionUnmute:
		return "unmuted"
	case ActionKick:
		return "kicked"
	case ActionRemove:
		return "removed"
	default:
		return string(a)
	}
}
