package moderation_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/edgard/modbot/internal/moderation"
)

const (
	testChatID  int64 = -100123
	testBotID   int64 = 999
	testAdminID int64 = 10
	testOwnerID int64 = 11
	testUserID  int64 = 20
)

var errBackend = errors.New("backend unavailable")

type roleKey struct {
	chatID int64
	userID int64
}

type fakeDirectory struct {
	mu       sync.Mutex
	roles    map[roleKey]moderation.Role
	roleErrs map[roleKey]error
	byID     map[int64]moderation.Entity
	byHandle map[string]moderation.Entity

	roleCalls   int
	idCalls     int
	handleCalls int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		roles:    make(map[roleKey]moderation.Role),
		roleErrs: make(map[roleKey]error),
		byID:     make(map[int64]moderation.Entity),
		byHandle: make(map[string]moderation.Entity),
	}
}

func (d *fakeDirectory) addUser(chatID int64, user moderation.UserRef, role moderation.Role) {
	d.mu.Lock()
	defer d.mu.Unlock()
	entity := moderation.Entity{Kind: moderation.EntityUser, User: user}
	d.byID[user.ID] = entity
	if user.Username != "" {
		d.byHandle[strings.ToLower(user.Username)] = entity
	}
	d.roles[roleKey{chatID, user.ID}] = role
}

func (d *fakeDirectory) setRole(chatID, userID int64, role moderation.Role) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roles[roleKey{chatID, userID}] = role
}

func (d *fakeDirectory) failRole(chatID, userID int64, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roleErrs[roleKey{chatID, userID}] = err
}

func (d *fakeDirectory) ParticipantRole(_ context.Context, chatID, userID int64) (moderation.Role, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roleCalls++
	if err, ok := d.roleErrs[roleKey{chatID, userID}]; ok {
		return moderation.RoleNotFound, err
	}
	return d.roles[roleKey{chatID, userID}], nil
}

func (d *fakeDirectory) EntityByID(_ context.Context, id int64) (moderation.Entity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.idCalls++
	e, ok := d.byID[id]
	if !ok {
		return moderation.Entity{}, moderation.ErrEntityNotFound
	}
	return e, nil
}

func (d *fakeDirectory) EntityByHandle(_ context.Context, handle string) (moderation.Entity, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handleCalls++
	e, ok := d.byHandle[strings.ToLower(handle)]
	if !ok {
		return moderation.Entity{}, moderation.ErrEntityNotFound
	}
	return e, nil
}

func (d *fakeDirectory) lookups() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idCalls + d.handleCalls
}

type restriction struct {
	chatID int64
	userID int64
	rights moderation.Rights
}

type fakeExecutor struct {
	mu       sync.Mutex
	applied  []restriction
	removed  []int64
	applyErr error
}

func (e *fakeExecutor) ApplyRestriction(_ context.Context, chatID, userID int64, rights moderation.Rights) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.applyErr != nil {
		return e.applyErr
	}
	e.applied = append(e.applied, restriction{chatID, userID, rights})
	return nil
}

func (e *fakeExecutor) RemoveParticipant(_ context.Context, _, userID int64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.applyErr != nil {
		return e.applyErr
	}
	e.removed = append(e.removed, userID)
	return nil
}

type greeting struct {
	kind   moderation.NotificationKind
	chatID int64
	userID int64
}

type fakeGreeter struct {
	mu   sync.Mutex
	sent []greeting
	err  error
}

func (g *fakeGreeter) Welcome(_ context.Context, chat moderation.ChatRef, user moderation.UserRef, _ int) error {
	return g.record(moderation.NotifyWelcome, chat, user)
}

func (g *fakeGreeter) Goodbye(_ context.Context, chat moderation.ChatRef, user moderation.UserRef) error {
	return g.record(moderation.NotifyGoodbye, chat, user)
}

func (g *fakeGreeter) record(kind moderation.NotificationKind, chat moderation.ChatRef, user moderation.UserRef) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return g.err
	}
	g.sent = append(g.sent, greeting{kind, chat.ID, user.ID})
	return nil
}

func (g *fakeGreeter) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}
