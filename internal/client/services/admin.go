package services

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/store"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// RowView is what the admin table shows for one user.
type RowView struct {
	Row  models.AdminUserRow
	Edit *models.LimitEdit
	// Pending is set on the row an action is running for.
	Pending bool
	// Disabled is set on every row while any action is running.
	Disabled  bool
	CanUpdate bool
}

// AdminPanel edits per-user document quotas and deletes users. Only one
// action runs at a time; the store's shared action triplet reflects it.
type AdminPanel struct {
	api   client.API
	store *store.Store
	log   logging.Logger
	lock  RowLock

	mu    sync.Mutex
	edits map[int64]models.LimitEdit
}

// NewAdminPanel returns an admin panel.
func NewAdminPanel(api client.API, st *store.Store, log logging.Logger) *AdminPanel {
	return &AdminPanel{
		api:   api,
		store: st,
		log:   log.With("component", "admin"),
		edits: make(map[int64]models.LimitEdit),
	}
}

// Refresh reloads the user list. Edit buffers are kept.
func (a *AdminPanel) Refresh(ctx context.Context) error {
	p := a.store.Profile()
	if p == nil {
		return ErrNoProfile
	}

	a.store.UserListLoading()
	rows, err := a.api.ListUsers(ctx, p.ID)
	if err != nil {
		a.store.UserListFailed(client.Describe(err))
		return err
	}
	a.store.UserListLoaded(rows)
	return nil
}

func (a *AdminPanel) row(id int64) (models.AdminUserRow, bool) {
	for _, r := range a.store.User().UserList {
		if r.ID == id {
			return r, true
		}
	}
	return models.AdminUserRow{}, false
}

// EditLimit records the quota typed for user id. Blank input clears the
// value and counts as a change; a non-negative whole number counts as a
// change when it differs from the listed quota; anything else is rejected
// with ErrInvalidLimit and leaves the buffer untouched.
func (a *AdminPanel) EditLimit(id int64, text string) (models.LimitEdit, error) {
	r, ok := a.row(id)
	if !ok {
		return models.LimitEdit{}, ErrUnknownUser
	}

	var edit models.LimitEdit
	text = strings.TrimSpace(text)
	if text == "" {
		edit = models.LimitEdit{Changed: true}
	} else {
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return models.LimitEdit{}, ErrInvalidLimit
		}
		edit = models.LimitEdit{Value: &n, Changed: n != r.TotalDocumentsAllowed}
	}

	a.mu.Lock()
	a.edits[id] = edit
	a.mu.Unlock()
	return edit, nil
}

func (a *AdminPanel) edit(id int64) (models.LimitEdit, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.edits[id]
	return e, ok
}

func (a *AdminPanel) clearEdits() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.edits)
}

// UpdateLimit sends the edited quota of user id together with the row's
// current upload count.
func (a *AdminPanel) UpdateLimit(ctx context.Context, id int64) error {
	e, ok := a.edit(id)
	if !ok || e.Value == nil {
		return ErrInvalidLimit
	}
	if !e.Changed {
		return ErrNoChange
	}
	r, ok := a.row(id)
	if !ok {
		return ErrUnknownUser
	}

	return a.run(ctx, id, func() error {
		return a.api.UpdateLimit(ctx, id, *e.Value, r.DocumentsUploaded)
	}, a.store.ActionSucceeded)
}

// DeleteUser deletes user id and drops its row.
func (a *AdminPanel) DeleteUser(ctx context.Context, id int64) error {
	return a.run(ctx, id, func() error {
		return a.api.DeleteUser(ctx, id)
	}, func() { a.store.UserDeleted(id) })
}

// run holds the row lock around call and settles the store's action
// triplet. On success edit buffers are cleared and the list is refreshed.
func (a *AdminPanel) run(ctx context.Context, id int64, call func() error, succeeded func()) error {
	if !a.lock.TryAcquire(id) {
		return ErrActionPending
	}

	a.store.ActionStarted(id)
	err := call()
	if err != nil {
		a.store.ActionFailed(client.Describe(err))
		a.lock.Release(id)
		a.log.Warn(ctx, "admin action failed", "user_id", id, "error", err)
		return err
	}
	succeeded()
	a.lock.Release(id)

	a.clearEdits()
	_ = a.Refresh(ctx)
	return nil
}

// Row returns the view state of user id.
func (a *AdminPanel) Row(id int64) (RowView, bool) {
	r, ok := a.row(id)
	if !ok {
		return RowView{}, false
	}

	holder, busy := a.lock.Holder()
	v := RowView{
		Row:      r,
		Pending:  busy && holder == id,
		Disabled: busy,
	}
	if e, ok := a.edit(id); ok {
		v.Edit = &e
		v.CanUpdate = !busy && e.Changed && e.Value != nil
	}
	return v, true
}
