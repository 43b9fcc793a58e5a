package moderation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// State is a step of the moderation pipeline. Applied, Denied and Failed are terminal.
type State int

const (
	StateRequested State = iota
	StateRateChecked
	StatePermissionChecked
	StateTargetResolved
	StateGuardsPassed
	StateApplied
	StateDenied
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRequested:
		return "requested"
	case StateRateChecked:
		return "rate_checked"
	case StatePermissionChecked:
		return "permission_checked"
	case StateTargetResolved:
		return "target_resolved"
	case StateGuardsPassed:
		return "guards_passed"
	case StateApplied:
		return "applied"
	case StateDenied:
		return "denied"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Decision is the result of the guard pipeline.
type Decision struct {
	Approved bool
	Action   Action
	Rights   Rights
	// Target is zero when the pipeline stopped before resolution.
	Target  UserRef
	Reason  DenyReason
	Subject string
	// Reached is the last state the request got to.
	Reached State
}

// TargetName labels the target for replies and audit lines.
func (d Decision) TargetName() string {
	if d.Target.ID != 0 {
		return d.Target.Label()
	}
	if d.Subject != "" {
		return "@" + d.Subject
	}
	return "-"
}

// Outcome is the terminal result of Moderate.
type Outcome struct {
	Decision
	State   State
	Failure FailureKind
	Err     error
	Entry   AuditEntry
}

// EngineDeps wires the engine collaborators.
type EngineDeps struct {
	Logger   *slog.Logger
	Limiter  *RateLimiter
	Guard    *PermissionGuard
	Resolver *TargetResolver
	Executor Executor
	Audit    *AuditLog
}

// Engine applies moderation actions once every guard has passed.
type Engine struct {
	limiter  *RateLimiter
	guard    *PermissionGuard
	resolver *TargetResolver
	executor Executor
	audit    *AuditLog
	logger   *slog.Logger
}

// NewEngine creates an engine from deps.
func NewEngine(deps EngineDeps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		limiter:  deps.Limiter,
		guard:    deps.Guard,
		resolver: deps.Resolver,
		executor: deps.Executor,
		audit:    deps.Audit,
		logger:   logger.With("component", "moderation_engine"),
	}
}

// Authorize runs the issuer gates shared by every admin command: the cooldown
// and the admin check. It returns a *Denial on rejection.
func (e *Engine) Authorize(ctx context.Context, req CommandRequest) error {
	if !e.limiter.Allow(req.Issuer.ID) {
		return deny(DenyRateLimited)
	}
	if !e.guard.IsAdminOrCreator(ctx, req.ChatID, req.Issuer.ID) {
		return deny(DenyNotAdmin)
	}
	return nil
}

// Evaluate runs the guards in precedence order and stops at the first denial.
func (e *Engine) Evaluate(ctx context.Context, req CommandRequest, action Action) Decision {
	d := Decision{Action: action, Rights: action.Rights(), Reached: StateRequested}
	denied := func(reason DenyReason) Decision {
		d.Reason = reason
		return d
	}

	if !e.limiter.Allow(req.Issuer.ID) {
		return denied(DenyRateLimited)
	}
	d.Reached = StateRateChecked

	if !e.guard.IsAdminOrCreator(ctx, req.ChatID, req.Issuer.ID) {
		return denied(DenyNotAdmin)
	}
	d.Reached = StatePermissionChecked

	target, err := e.resolver.Resolve(ctx, req)
	d.Target = target
	if err != nil {
		if spec, ok := TargetSpecifier(req.Text); ok {
			d.Subject = spec
		}
		reason := ReasonOf(err)
		if reason == DenyNone {
			reason = DenyUserNotFound
		}
		return denied(reason)
	}
	d.Reached = StateTargetResolved

	if !e.guard.BotIsAdminOrCreator(ctx, req.ChatID) {
		return denied(DenyBotNotAdmin)
	}
	if e.guard.IsCreator(ctx, req.ChatID, target.ID) {
		return denied(DenyCannotModerateCreator)
	}
	if action.ProtectsAdmins() && e.guard.IsAdminOrCreator(ctx, req.ChatID, target.ID) {
		return denied(DenyCannotModerateAdmin)
	}
	if target.ID == e.guard.BotID() {
		return denied(DenyCannotModerateSelf)
	}

	d.Reached = StateGuardsPassed
	d.Approved = true
	return d
}

// Moderate evaluates the request, applies the action when approved and records
// exactly one audit entry whatever the result.
func (e *Engine) Moderate(ctx context.Context, req CommandRequest, action Action) Outcome {
	d := e.Evaluate(ctx, req, action)
	out := Outcome{Decision: d}

	entry := AuditEntry{
		IssuerID:   req.Issuer.ID,
		IssuerName: req.Issuer.Label(),
		Action:     action,
		TargetID:   d.Target.ID,
		TargetName: d.TargetName(),
		ChatID:     req.ChatID,
	}

	if !d.Approved {
		out.State = StateDenied
		entry.Detail = d.Reason.String()
		out.Entry = e.audit.Append(entry)
		denialCount.WithLabelValues(d.Reason.String()).Inc()
		actionCount.WithLabelValues(string(action), out.State.String()).Inc()
		e.logger.InfoContext(ctx, "Moderation denied",
			"action", string(action), "reason", d.Reason.String(), "reached", d.Reached.String(),
			"chat_id", req.ChatID, "issuer_id", req.Issuer.ID, "target_id", d.Target.ID)
		return out
	}

	if err := e.apply(ctx, req.ChatID, d.Target.ID, action); err != nil {
		out.State = StateFailed
		out.Err = err
		out.Failure = ClassifyFailure(err)
		entry.Detail = out.Failure.String()
		out.Entry = e.audit.Append(entry)
		executorFailureCount.WithLabelValues(out.Failure.String()).Inc()
		actionCount.WithLabelValues(string(action), out.State.String()).Inc()
		e.logger.ErrorContext(ctx, "Moderation action failed",
			"action", string(action), "kind", out.Failure.String(),
			"chat_id", req.ChatID, "target_id", d.Target.ID, "error", err)
		return out
	}

	out.State = StateApplied
	entry.Success = true
	out.Entry = e.audit.Append(entry)
	actionCount.WithLabelValues(string(action), out.State.String()).Inc()
	e.logger.InfoContext(ctx, "Moderation action applied",
		"action", string(action), "chat_id", req.ChatID, "target_id", d.Target.ID)
	return out
}

func (e *Engine) apply(ctx context.Context, chatID, userID int64, action Action) error {
	switch action {
	case ActionKick:
		// Ban then lift it: the user leaves the chat but may rejoin.
		if err := e.executor.ApplyRestriction(ctx, chatID, userID, BanRights); err != nil {
			return fmt.Errorf("kick ban step: %w", err)
		}
		if err := e.executor.ApplyRestriction(ctx, chatID, userID, UnbanRights); err != nil {
			return fmt.Errorf("kick unban step: %w", err)
		}
		return nil
	case ActionRemove:
		return e.executor.RemoveParticipant(ctx, chatID, userID)
	default:
		return e.executor.ApplyRestriction(ctx, chatID, userID, action.Rights())
	}
}
