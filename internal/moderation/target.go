package moderation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// TargetResolver finds the user a command is aimed at.
type TargetResolver struct {
	dir    Directory
	logger *slog.Logger
}

// NewTargetResolver creates a resolver backed by dir.
func NewTargetResolver(dir Directory, logger *slog.Logger) *TargetResolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &TargetResolver{
		dir:    dir,
		logger: logger.With("component", "target_resolver"),
	}
}

// TargetSpecifier returns the second whitespace-delimited token of text with
// a leading "@" removed.
func TargetSpecifier(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", false
	}
	return strings.TrimPrefix(fields[1], "@"), true
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Identify resolves the target identity: an explicit argument first, then the
// author of the replied message. Membership is not checked.
func (r *TargetResolver) Identify(ctx context.Context, req CommandRequest) (UserRef, error) {
	if spec, ok := TargetSpecifier(req.Text); ok {
		return r.identifySpecifier(ctx, spec)
	}

	if req.ReplyTo != nil {
		if req.ReplyTo.AuthorIsChat {
			return UserRef{}, deny(DenyNotAUserAccount)
		}
		if req.ReplyTo.AuthorID == 0 {
			return UserRef{}, deny(DenyUserNotFound)
		}
		entity, err := r.dir.EntityByID(ctx, req.ReplyTo.AuthorID)
		if err != nil {
			r.logLookup(ctx, "reply author", strconv.FormatInt(req.ReplyTo.AuthorID, 10), err)
			return UserRef{}, deny(DenyUserNotFound)
		}
		if !entity.IsUser() {
			return UserRef{}, deny(DenyNotAUserAccount)
		}
		return entity.User, nil
	}

	return UserRef{}, deny(DenyNoTargetSpecified)
}

func (r *TargetResolver) identifySpecifier(ctx context.Context, spec string) (UserRef, error) {
	var (
		entity Entity
		err    error
	)
	switch {
	case spec == "":
		err = ErrEntityNotFound
	case isNumeric(spec):
		id, perr := strconv.ParseInt(spec, 10, 64)
		if perr != nil {
			err = ErrEntityNotFound
			break
		}
		entity, err = r.dir.EntityByID(ctx, id)
	default:
		entity, err = r.dir.EntityByHandle(ctx, spec)
	}
	if err != nil {
		r.logLookup(ctx, "specifier", spec, err)
		return UserRef{}, &Denial{Reason: DenyUserNotFound, Subject: spec}
	}
	if !entity.IsUser() {
		return UserRef{}, &Denial{Reason: DenyNotAUserAccount, Subject: spec}
	}
	return entity.User, nil
}

// logLookup keeps soft misses at debug and surfaces backend failures.
func (r *TargetResolver) logLookup(ctx context.Context, source, subject string, err error) {
	if errors.Is(err, ErrEntityNotFound) {
		r.logger.DebugContext(ctx, "Target lookup missed", "source", source, "subject", subject)
		return
	}
	r.logger.ErrorContext(ctx, "Target lookup failed", "source", source, "subject", subject, "error", err)
}

// Resolve identifies the target and confirms it is a participant of the chat.
func (r *TargetResolver) Resolve(ctx context.Context, req CommandRequest) (UserRef, error) {
	target, err := r.Identify(ctx, req)
	if err != nil {
		return UserRef{}, err
	}

	role, err := r.dir.ParticipantRole(ctx, req.ChatID, target.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Membership check failed, denying",
			"chat_id", req.ChatID, "user_id", target.ID, "error", err)
		return target, deny(DenyNotAMember)
	}
	if !role.IsParticipant() {
		return target, deny(DenyNotAMember)
	}
	return target, nil
}
