package store

import (
	"slices"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// AddMessage appends m to the current conversation.
func (s *Store) AddMessage(m models.Message) {
	s.update(false, func(st *State) {
		st.Chat.CurrentChat = append(st.Chat.CurrentChat, m)
	})
}

// SetActiveChat marks id as the active session without touching messages.
// Used when the first send of a fresh conversation registers a session.
func (s *Store) SetActiveChat(id string) {
	s.update(false, func(st *State) {
		st.Chat.ActiveChatID = id
	})
}

// AddChatSession prepends a session to the history list.
func (s *Store) AddChatSession(c models.ChatSession) {
	s.update(false, func(st *State) {
		st.Chat.ChatHistory = slices.Insert(st.Chat.ChatHistory, 0, c)
	})
}

// NewChat clears the active session and its messages. The next send
// registers a new session.
func (s *Store) NewChat() {
	s.update(false, func(st *State) {
		st.Chat.ActiveChatID = ""
		st.Chat.CurrentChat = []models.Message{}
		st.Chat.Error = ""
	})
}

// SwitchSession makes id active, drops the previous session's messages and
// sets the chat status to loading, before any fetch starts.
func (s *Store) SwitchSession(id string) {
	s.update(false, func(st *State) {
		st.Chat.ActiveChatID = id
		st.Chat.CurrentChat = []models.Message{}
		st.Chat.Status = models.StatusLoading
		st.Chat.Error = ""
	})
}

// ConversationLoaded installs the fetched messages of chatID. A response for
// a session that is no longer active is ignored.
func (s *Store) ConversationLoaded(chatID string, msgs []models.Message) {
	s.update(false, func(st *State) {
		if st.Chat.ActiveChatID != chatID {
			return
		}
		st.Chat.CurrentChat = msgs
		st.Chat.Status = models.StatusSucceeded
	})
}

// ConversationFailed records a failed conversation fetch for chatID.
func (s *Store) ConversationFailed(chatID string, msg string) {
	s.update(false, func(st *State) {
		if st.Chat.ActiveChatID != chatID {
			return
		}
		st.Chat.Status = models.StatusFailed
		st.Chat.Error = msg
	})
}

// HistoryLoading, HistoryLoaded and HistoryFailed drive the session list fetch.
func (s *Store) HistoryLoading() {
	s.update(false, func(st *State) {
		st.Chat.Status = models.StatusLoading
	})
}

func (s *Store) HistoryLoaded(h []models.ChatSession) {
	s.update(false, func(st *State) {
		if h == nil {
			h = []models.ChatSession{}
		}
		st.Chat.ChatHistory = h
		st.Chat.Status = models.StatusSucceeded
	})
}

func (s *Store) HistoryFailed(msg string) {
	s.update(false, func(st *State) {
		st.Chat.Status = models.StatusFailed
		st.Chat.Error = msg
	})
}

// Chat returns the chat slice.
func (s *Store) Chat() ChatState {
	return s.Snapshot().Chat
}
