package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/store"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

func adminRows() []models.AdminUserRow {
	return []models.AdminUserRow{
		{ID: 10, Username: "ann", DocumentsUploaded: 3, TotalDocumentsAllowed: 10},
		{ID: 11, Username: "bob", DocumentsUploaded: 0, TotalDocumentsAllowed: 5},
	}
}

func newAdmin(t *testing.T, api *fakeAPI) (*AdminPanel, *store.Store) {
	t.Helper()
	if api.listUsersFn == nil {
		api.listUsersFn = func() ([]models.AdminUserRow, error) { return adminRows(), nil }
	}
	st := storeWithProfile(1)
	a := NewAdminPanel(api, st, logging.Nop())
	require.NoError(t, a.Refresh(context.Background()))
	return a, st
}

func TestEditLimit(t *testing.T) {
	a, _ := newAdmin(t, &fakeAPI{})

	tests := []struct {
		name    string
		text    string
		wantErr error
		value   *int
		changed bool
	}{
		{name: "new value", text: "25", value: ptr(25), changed: true},
		{name: "same value", text: " 10 ", value: ptr(10), changed: false},
		{name: "zero", text: "0", value: ptr(0), changed: true},
		{name: "cleared", text: "", changed: true},
		{name: "negative", text: "-1", wantErr: ErrInvalidLimit},
		{name: "not a number", text: "12abc", wantErr: ErrInvalidLimit},
		{name: "fraction", text: "1.5", wantErr: ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := a.EditLimit(10, tt.text)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.value, e.Value)
			assert.Equal(t, tt.changed, e.Changed)
		})
	}

	_, err := a.EditLimit(99, "1")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestEditLimit_RejectedInputKeepsBuffer(t *testing.T) {
	a, _ := newAdmin(t, &fakeAPI{})

	_, err := a.EditLimit(10, "30")
	require.NoError(t, err)
	_, err = a.EditLimit(10, "x")
	require.ErrorIs(t, err, ErrInvalidLimit)

	v, ok := a.Row(10)
	require.True(t, ok)
	require.NotNil(t, v.Edit)
	assert.Equal(t, 30, *v.Edit.Value)
	assert.True(t, v.CanUpdate)
}

func TestUpdateLimit_SendsUploadCount(t *testing.T) {
	var gotID int64
	var gotLimit, gotUploaded int
	api := &fakeAPI{
		updateLimitFn: func(id int64, limit, uploaded int) error {
			gotID, gotLimit, gotUploaded = id, limit, uploaded
			return nil
		},
	}
	a, st := newAdmin(t, api)

	_, err := a.EditLimit(10, "25")
	require.NoError(t, err)
	require.NoError(t, a.UpdateLimit(context.Background(), 10))

	assert.Equal(t, int64(10), gotID)
	assert.Equal(t, 25, gotLimit)
	assert.Equal(t, 3, gotUploaded)

	u := st.User()
	assert.Equal(t, models.ActionSucceeded, u.ActionStatus)
	assert.Nil(t, u.CurrentActionUserID)
	assert.Equal(t, 2, api.count("ListUsers"), "list refreshed after success")

	v, _ := a.Row(10)
	assert.Nil(t, v.Edit, "edits cleared after success")
}

func TestUpdateLimit_Refusals(t *testing.T) {
	api := &fakeAPI{}
	a, _ := newAdmin(t, api)

	assert.ErrorIs(t, a.UpdateLimit(context.Background(), 10), ErrInvalidLimit, "no edit")

	_, _ = a.EditLimit(10, "")
	assert.ErrorIs(t, a.UpdateLimit(context.Background(), 10), ErrInvalidLimit, "cleared input")

	_, _ = a.EditLimit(10, "10")
	assert.ErrorIs(t, a.UpdateLimit(context.Background(), 10), ErrNoChange)

	assert.Zero(t, api.count("UpdateLimit"))
}

func TestUpdateLimit_FailureKeepsEdit(t *testing.T) {
	api := &fakeAPI{
		updateLimitFn: func(int64, int, int) error {
			return &client.APIError{StatusCode: 403, Message: "Forbidden"}
		},
	}
	a, st := newAdmin(t, api)

	_, _ = a.EditLimit(11, "7")
	require.Error(t, a.UpdateLimit(context.Background(), 11))

	u := st.User()
	assert.Equal(t, models.ActionFailed, u.ActionStatus)
	assert.Equal(t, "Forbidden", u.ActionError)
	assert.Nil(t, u.CurrentActionUserID)

	v, _ := a.Row(11)
	require.NotNil(t, v.Edit)
	assert.True(t, v.CanUpdate)
	assert.Equal(t, 1, api.count("ListUsers"))
}

func TestAdmin_OneActionAtATime(t *testing.T) {
	release := make(chan struct{})
	api := &fakeAPI{
		updateLimitFn: func(int64, int, int) error {
			<-release
			return nil
		},
	}
	a, st := newAdmin(t, api)
	_, _ = a.EditLimit(10, "20")

	done := make(chan error, 1)
	go func() { done <- a.UpdateLimit(context.Background(), 10) }()

	require.Eventually(t, func() bool {
		return st.User().ActionStatus == models.ActionPending
	}, time.Second, time.Millisecond)

	mine, _ := a.Row(10)
	assert.True(t, mine.Pending)
	assert.False(t, mine.CanUpdate)
	other, _ := a.Row(11)
	assert.True(t, other.Disabled)
	assert.False(t, other.Pending)

	u := st.User()
	require.NotNil(t, u.CurrentActionUserID)
	assert.Equal(t, int64(10), *u.CurrentActionUserID)
	assert.Equal(t, models.ActionPending, u.ActionStatus)

	assert.ErrorIs(t, a.DeleteUser(context.Background(), 11), ErrActionPending)
	assert.Zero(t, api.count("DeleteUser"))

	close(release)
	require.NoError(t, <-done)

	v, _ := a.Row(10)
	assert.False(t, v.Pending)
	assert.False(t, v.Disabled)
}

func TestDeleteUser_RemovesRow(t *testing.T) {
	listed := 0
	api := &fakeAPI{}
	api.listUsersFn = func() ([]models.AdminUserRow, error) {
		listed++
		if listed == 1 {
			return adminRows(), nil
		}
		return adminRows()[1:], nil
	}
	a, st := newAdmin(t, api)

	require.NoError(t, a.DeleteUser(context.Background(), 10))

	_, ok := a.Row(10)
	assert.False(t, ok)
	rows := st.User().UserList
	require.Len(t, rows, 1)
	assert.Equal(t, int64(11), rows[0].ID)
	assert.Equal(t, models.ActionSucceeded, st.User().ActionStatus)
}

func TestAdminRefresh_Failure(t *testing.T) {
	api := &fakeAPI{listUsersFn: func() ([]models.AdminUserRow, error) {
		return nil, client.ErrNoResponse
	}}
	st := storeWithProfile(1)
	a := NewAdminPanel(api, st, logging.Nop())

	require.Error(t, a.Refresh(context.Background()))
	u := st.User()
	assert.Equal(t, models.StatusFailed, u.UserListStatus)
	assert.Equal(t, client.NoResponseText, u.UserListError)

	assert.ErrorIs(t, NewAdminPanel(api, store.New(), logging.Nop()).Refresh(context.Background()), ErrNoProfile)
}

func TestRowLock(t *testing.T) {
	var l RowLock

	_, held := l.Holder()
	assert.False(t, held)

	require.True(t, l.TryAcquire(3))
	assert.False(t, l.TryAcquire(3))
	assert.False(t, l.TryAcquire(4))

	l.Release(4)
	id, held := l.Holder()
	assert.True(t, held, "release by a non-holder is ignored")
	assert.Equal(t, int64(3), id)

	l.Release(3)
	assert.True(t, l.TryAcquire(4))
}

func ptr[T any](v T) *T { return &v }
