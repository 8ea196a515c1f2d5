package store

import (
	"slices"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// ProfileLoading, ProfileLoaded and ProfileFailed drive the profile fetch.
func (s *Store) ProfileLoading() {
	s.update(false, func(st *State) {
		st.User.Status = models.StatusLoading
		st.User.Error = ""
	})
}

func (s *Store) ProfileLoaded(p models.UserProfile) {
	s.update(false, func(st *State) {
		st.User.Profile = &p
		st.User.Status = models.StatusSucceeded
	})
}

func (s *Store) ProfileFailed(msg string) {
	s.update(false, func(st *State) {
		st.User.Status = models.StatusFailed
		st.User.Error = msg
	})
}

// Profile returns a copy of the loaded profile, or nil.
func (s *Store) Profile() *models.UserProfile {
	return s.Snapshot().User.Profile
}

// UserListLoading, UserListLoaded and UserListFailed drive the admin list fetch.
func (s *Store) UserListLoading() {
	s.update(false, func(st *State) {
		st.User.UserListStatus = models.StatusLoading
		st.User.UserListError = ""
	})
}

func (s *Store) UserListLoaded(rows []models.AdminUserRow) {
	s.update(false, func(st *State) {
		if rows == nil {
			rows = []models.AdminUserRow{}
		}
		st.User.UserList = rows
		st.User.UserListStatus = models.StatusSucceeded
	})
}

func (s *Store) UserListFailed(msg string) {
	s.update(false, func(st *State) {
		st.User.UserListStatus = models.StatusFailed
		st.User.UserListError = msg
	})
}

// ActionStarted marks an admin mutation on userID as pending. The store
// does not refuse a second start; the admin panel's row lock does.
func (s *Store) ActionStarted(userID int64) {
	s.update(false, func(st *State) {
		st.User.ActionStatus = models.ActionPending
		st.User.ActionError = ""
		st.User.CurrentActionUserID = &userID
	})
}

// ActionSucceeded settles the pending admin mutation.
func (s *Store) ActionSucceeded() {
	s.update(false, func(st *State) {
		st.User.ActionStatus = models.ActionSucceeded
		st.User.CurrentActionUserID = nil
	})
}

// UserDeleted settles a successful delete and drops the row in the same
// transition.
func (s *Store) UserDeleted(userID int64) {
	s.update(false, func(st *State) {
		st.User.ActionStatus = models.ActionSucceeded
		st.User.CurrentActionUserID = nil
		st.User.UserList = slices.DeleteFunc(st.User.UserList, func(r models.AdminUserRow) bool {
			return r.ID == userID
		})
	})
}

// ActionFailed settles the pending admin mutation with an error.
func (s *Store) ActionFailed(msg string) {
	s.update(false, func(st *State) {
		st.User.ActionStatus = models.ActionFailed
		st.User.ActionError = msg
		st.User.CurrentActionUserID = nil
	})
}

// DocumentsLoading, DocumentsLoaded and DocumentsFailed drive the document
// list fetch.
func (s *Store) DocumentsLoading() {
	s.update(false, func(st *State) {
		st.User.DocumentsStatus = models.StatusLoading
		st.User.DocumentsError = ""
	})
}

func (s *Store) DocumentsLoaded(docs []models.DocumentRecord) {
	s.update(false, func(st *State) {
		if docs == nil {
			docs = []models.DocumentRecord{}
		}
		st.User.Documents = docs
		st.User.DocumentsStatus = models.StatusSucceeded
	})
}

func (s *Store) DocumentsFailed(msg string) {
	s.update(false, func(st *State) {
		st.User.DocumentsStatus = models.StatusFailed
		st.User.DocumentsError = msg
	})
}

// User returns the user slice.
func (s *Store) User() UserState {
	return s.Snapshot().User
}
