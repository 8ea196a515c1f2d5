// Package store is the session store of the docchat client: three
// independent slices (auth, chat, user) mutated only through the transition
// methods of Store. Every transition bumps a version and notifies registered
// observers with an immutable snapshot.
package store

import (
	"slices"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// ChatState is the chat slice.
type ChatState struct {
	ChatHistory  []models.ChatSession `json:"chatHistory"`
	CurrentChat  []models.Message     `json:"currentChat"`
	ActiveChatID string               `json:"activeChatId,omitempty"`
	Status       models.Status        `json:"status"`
	Error        string               `json:"error,omitempty"`
}

// UserState is the user slice: profile, admin user list with the shared
// action triplet, and the document list.
type UserState struct {
	Profile *models.UserProfile `json:"profile"`
	Status  models.Status       `json:"status"`
	Error   string              `json:"error,omitempty"`

	UserList       []models.AdminUserRow `json:"userList"`
	UserListStatus models.Status         `json:"userListStatus"`
	UserListError  string                `json:"userListError,omitempty"`

	ActionStatus        models.ActionStatus `json:"actionStatus"`
	ActionError         string              `json:"actionError,omitempty"`
	CurrentActionUserID *int64              `json:"currentActionUserId"`

	Documents       []models.DocumentRecord `json:"documents"`
	DocumentsStatus models.Status           `json:"documentsStatus"`
	DocumentsError  string                  `json:"documentsError,omitempty"`
}

// State is the whole store.
type State struct {
	Auth models.AuthIdentity
	Chat ChatState
	User UserState
}

func initialChat() ChatState {
	return ChatState{
		ChatHistory: []models.ChatSession{},
		CurrentChat: []models.Message{},
		Status:      models.StatusIdle,
	}
}

func initialUser() UserState {
	return UserState{
		Status:          models.StatusIdle,
		UserList:        []models.AdminUserRow{},
		UserListStatus:  models.StatusIdle,
		ActionStatus:    models.ActionIdle,
		Documents:       []models.DocumentRecord{},
		DocumentsStatus: models.StatusIdle,
	}
}

// Initial returns the logged-out state.
func Initial() State {
	return State{Chat: initialChat(), User: initialUser()}
}

// clone deep-copies everything an observer could alias.
func (s State) clone() State {
	out := s

	if s.Auth.User != nil {
		u := *s.Auth.User
		out.Auth.User = &u
	}

	out.Chat.ChatHistory = slices.Clone(s.Chat.ChatHistory)
	out.Chat.CurrentChat = slices.Clone(s.Chat.CurrentChat)
	for i := range out.Chat.CurrentChat {
		out.Chat.CurrentChat[i].Citations = slices.Clone(out.Chat.CurrentChat[i].Citations)
	}

	if s.User.Profile != nil {
		p := *s.User.Profile
		if p.TotalDocumentsAllowed != nil {
			n := *p.TotalDocumentsAllowed
			p.TotalDocumentsAllowed = &n
		}
		out.User.Profile = &p
	}
	if s.User.CurrentActionUserID != nil {
		id := *s.User.CurrentActionUserID
		out.User.CurrentActionUserID = &id
	}
	out.User.UserList = slices.Clone(s.User.UserList)
	out.User.Documents = slices.Clone(s.User.Documents)

	return out
}

// settle turns states that only make sense while a request is in flight
// back into idle ones. Used when state is restored from disk.
func (s *State) settle() {
	if s.Chat.Status == models.StatusLoading {
		s.Chat.Status = models.StatusIdle
	}
	if s.User.Status == models.StatusLoading {
		s.User.Status = models.StatusIdle
	}
	if s.User.UserListStatus == models.StatusLoading {
		s.User.UserListStatus = models.StatusIdle
	}
	if s.User.DocumentsStatus == models.StatusLoading {
		s.User.DocumentsStatus = models.StatusIdle
	}
	if s.User.ActionStatus == models.ActionPending {
		s.User.ActionStatus = models.ActionIdle
	}
	s.User.CurrentActionUserID = nil

	if s.Chat.ChatHistory == nil {
		s.Chat.ChatHistory = []models.ChatSession{}
	}
	if s.Chat.CurrentChat == nil {
		s.Chat.CurrentChat = []models.Message{}
	}
	if s.User.UserList == nil {
		s.User.UserList = []models.AdminUserRow{}
	}
	if s.User.Documents == nil {
		s.User.Documents = []models.DocumentRecord{}
	}
	if s.Chat.Status == "" {
		s.Chat.Status = models.StatusIdle
	}
	if s.User.Status == "" {
		s.User.Status = models.StatusIdle
	}
	if s.User.UserListStatus == "" {
		s.User.UserListStatus = models.StatusIdle
	}
	if s.User.DocumentsStatus == "" {
		s.User.DocumentsStatus = models.StatusIdle
	}
	if s.User.ActionStatus == "" {
		s.User.ActionStatus = models.ActionIdle
	}
}
