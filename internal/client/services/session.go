package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/docchat/internal/client/auth"
	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/store"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// IdentityProvider is the part of auth.Provider the session service uses.
type IdentityProvider interface {
	HasAccount(ctx context.Context) (bool, error)
	Identity(ctx context.Context) (models.AuthIdentity, error)
	Login(ctx context.Context, prompt auth.PromptFunc) (models.AuthIdentity, error)
	SignOut(ctx context.Context) error
}

// SessionService drives sign-in, the post-login profile and history fetch,
// session switching and logout.
//
// Contract:
//   - Bootstrap: restore a signed-in session silently when an account is cached.
//   - Login: interactive sign-in followed by the same profile and history fetch.
//   - Logout: reset the store (which clears the persisted slices) and forget the account.
//   - SelectSession / NewChat / RefreshHistory: chat history navigation.
type SessionService interface {
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, prompt auth.PromptFunc) error
	Logout(ctx context.Context) error
	SelectSession(ctx context.Context, chatID string) error
	NewChat()
	RefreshHistory(ctx context.Context) error
}

type sessionService struct {
	api   client.API
	ids   IdentityProvider
	store *store.Store
	log   logging.Logger
}

// NewSessionService returns a SessionService.
func NewSessionService(api client.API, ids IdentityProvider, st *store.Store, log logging.Logger) SessionService {
	return &sessionService{api: api, ids: ids, store: st, log: log.With("component", "session")}
}

func (s *sessionService) Bootstrap(ctx context.Context) error {
	if !s.store.Auth().IsAuthenticated {
		has, err := s.ids.HasAccount(ctx)
		if err != nil {
			return err
		}
		if !has {
			return nil
		}

		id, err := s.ids.Identity(ctx)
		if err != nil {
			s.store.AuthFailed(err.Error())
			return err
		}
		s.store.SetAuth(id)
	}

	if p := s.store.Profile(); p != nil && p.ID != 0 {
		return nil
	}
	return s.afterLogin(ctx)
}

func (s *sessionService) Login(ctx context.Context, prompt auth.PromptFunc) error {
	id, err := s.ids.Login(ctx, prompt)
	if err != nil {
		s.store.AuthFailed(err.Error())
		return err
	}
	s.store.SetAuth(id)
	return s.afterLogin(ctx)
}

// afterLogin fetches the profile and then the chat history.
func (s *sessionService) afterLogin(ctx context.Context) error {
	s.store.ProfileLoading()
	p, err := s.api.FetchProfile(ctx)
	if err != nil {
		s.store.ProfileFailed(client.Describe(err))
		return fmt.Errorf("fetch profile: %w", err)
	}
	if p.ID == 0 {
		s.store.ProfileFailed(ErrMissingUserID.Error())
		return ErrMissingUserID
	}
	s.store.ProfileLoaded(p)
	s.log.Info(ctx, "profile loaded", "user_id", p.ID)

	return s.RefreshHistory(ctx)
}

func (s *sessionService) Logout(ctx context.Context) error {
	s.store.Logout()
	if err := s.ids.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (s *sessionService) RefreshHistory(ctx context.Context) error {
	p := s.store.Profile()
	if p == nil {
		return ErrNoProfile
	}

	s.store.HistoryLoading()
	sessions, err := s.api.ListSessions(ctx, p.ID)
	if err != nil {
		s.store.HistoryFailed(client.Describe(err))
		return err
	}
	s.store.HistoryLoaded(sessions)
	return nil
}

// SelectSession makes chatID active and loads its conversation. The store
// drops the previous messages before the fetch starts.
func (s *sessionService) SelectSession(ctx context.Context, chatID string) error {
	p := s.store.Profile()
	if p == nil {
		return ErrNoProfile
	}

	s.store.SwitchSession(chatID)
	turns, err := s.api.FetchConversation(ctx, chatID, p.ID)
	if err != nil {
		s.store.ConversationFailed(chatID, client.Describe(err))
		return err
	}
	s.store.ConversationLoaded(chatID, conversationMessages(chatID, turns))
	return nil
}

func (s *sessionService) NewChat() {
	s.store.NewChat()
}

// conversationMessages expands stored turns into alternating user and bot
// messages with ids derived from the chat id and turn index.
func conversationMessages(chatID string, turns []client.ConversationTurn) []models.Message {
	msgs := make([]models.Message, 0, 2*len(turns))
	for i, t := range turns {
		msgs = append(msgs,
			models.Message{
				ID:       fmt.Sprintf("%s-q-%d", chatID, i),
				Text:     t.Question,
				Sender:   models.SenderUser,
				ImageURL: t.ImageURL,
			},
			models.Message{
				ID:        fmt.Sprintf("%s-a-%d", chatID, i),
				Text:      t.Answer,
				Sender:    models.SenderBot,
				Citations: t.Citations,
			},
		)
	}
	return msgs
}
