package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/store"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

const (
	maxTitleRunes = 50
	fallbackTitle = "New Chat"
)

// ChatService turns a composed input into one user message and one bot
// message, registering a chat session first when none is active.
type ChatService interface {
	Send(ctx context.Context, c *Composer) bool
}

type chatService struct {
	api      client.API
	store    *store.Store
	log      logging.Logger
	readFile func(string) ([]byte, error)
}

// NewChatService returns a ChatService writing to st.
func NewChatService(api client.API, st *store.Store, log logging.Logger) ChatService {
	return &chatService{api: api, store: st, log: log.With("component", "chat"), readFile: os.ReadFile}
}

// Send does nothing and returns false when there is neither text nor an
// image, or when no profile is loaded. Otherwise it appends the user
// message before any network call, then exactly one bot message carrying
// either the answer or the error text, and clears the composer's text and
// image. Callers serialize sends.
func (s *chatService) Send(ctx context.Context, c *Composer) bool {
	if strings.TrimSpace(c.Text) == "" && c.Image == nil {
		return false
	}
	profile := s.store.Profile()
	if profile == nil {
		return false
	}

	c.Busy = true
	defer c.reset()

	text := c.Text
	history := models.FormatHistory(s.store.Chat().CurrentChat)

	userMsg := models.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    models.SenderUser,
		WebSearch: c.WebSearch,
	}
	if c.Image != nil {
		userMsg.ImageURL = (&url.URL{Scheme: "file", Path: c.Image.Path}).String()
	}
	s.store.AddMessage(userMsg)

	botMsg, err := s.exchange(ctx, profile.ID, text, history, c)
	if err != nil {
		s.log.Warn(ctx, "send failed", "error", err)
		botMsg = models.Message{Text: ChatErrorText(err), Sender: models.SenderBot}
	}
	botMsg.ID = uuid.NewString()
	s.store.AddMessage(botMsg)
	return true
}

func (s *chatService) exchange(ctx context.Context, userID int64, text string, history []models.HistoryPair, c *Composer) (models.Message, error) {
	var images []string
	if c.Image != nil {
		dataURL, err := s.dataURL(c.Image)
		if err != nil {
			s.log.Error(ctx, "image conversion failed", "path", c.Image.Path, "error", err)
			return models.Message{}, ErrImageAttachment
		}
		images = append(images, dataURL)
	}

	sessionID, err := s.ensureSession(ctx, userID, text)
	if err != nil {
		return models.Message{}, err
	}

	if c.ImageGeneration {
		img, err := s.api.GenerateImage(ctx, userID, sessionID, text)
		if err != nil {
			return models.Message{}, err
		}
		msg := models.Message{Text: img.Answer, Sender: models.SenderBot, Citations: img.Citations}
		if len(img.ImageURLs) > 0 {
			msg.ImageURL = img.ImageURLs[0]
		}
		return msg, nil
	}

	ans, err := s.api.InteractWithAgent(ctx, client.InteractRequest{
		UserID:         userID,
		SessionID:      sessionID,
		UserInput:      text,
		History:        history,
		ImageURLs:      images,
		SearchInternet: c.WebSearch,
	})
	if err != nil {
		return models.Message{}, err
	}
	return models.Message{Text: ans.Answer, Sender: models.SenderBot, Citations: ans.Citations}, nil
}

// ensureSession returns the active chat id, registering a new session when
// there is none.
func (s *chatService) ensureSession(ctx context.Context, userID int64, text string) (string, error) {
	if id := s.store.Chat().ActiveChatID; id != "" {
		return id, nil
	}

	title := common.TruncateRunes(text, maxTitleRunes)
	if title == "" {
		title = fallbackTitle
	}

	reg, err := s.api.RegisterSession(ctx, title, userID)
	if err != nil {
		return "", err
	}
	if reg.ChatID == "" {
		s.log.Error(ctx, "session registered without chat_id", "title", title)
		return "", ErrMissingChatID
	}

	chatTitle := reg.ChatTitle
	if chatTitle == "" {
		chatTitle = title
	}
	s.store.SetActiveChat(reg.ChatID)
	s.store.AddChatSession(models.ChatSession{ChatID: reg.ChatID, ChatTitle: chatTitle})
	s.log.Info(ctx, "chat session created", "chat_id", reg.ChatID)
	return reg.ChatID, nil
}

func (s *chatService) dataURL(img *models.StagedFile) (string, error) {
	b, err := s.readFile(img.Path)
	if err != nil {
		return "", err
	}
	ct := img.ContentType
	if ct == "" {
		return "", fmt.Errorf("unknown content type for %s", img.Name)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}
