package services

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/docchat/internal/client/auth"
	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/store"
)

// fakeAPI implements client.API with overridable funcs and call counters.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	profileFn      func() (models.UserProfile, error)
	listUsersFn    func() ([]models.AdminUserRow, error)
	updateLimitFn  func(userID int64, limit, uploaded int) error
	deleteUserFn   func(userID int64) error
	sessionsFn     func() ([]models.ChatSession, error)
	conversationFn func(sessionID string) ([]client.ConversationTurn, error)
	registerFn     func(title string) (client.RegisteredSession, error)
	interactFn     func(req client.InteractRequest) (client.AgentAnswer, error)
	imageFn        func(sessionID, input string) (client.GeneratedImage, error)
	listDocsFn     func() ([]models.DocumentRecord, error)
	uploadFn       func(name string, body []byte) error
	deleteDocFn    func(docID int64) error
	docStatusFn    func(docID int64) (string, error)
	citationFn     func(docID string, page *int) (client.CitationDocument, error)
}

var _ client.API = (*fakeAPI)(nil)

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) FetchProfile(ctx context.Context) (models.UserProfile, error) {
	f.hit("FetchProfile")
	if f.profileFn == nil {
		return models.UserProfile{ID: 1}, nil
	}
	return f.profileFn()
}

func (f *fakeAPI) ListUsers(ctx context.Context, userID int64) ([]models.AdminUserRow, error) {
	f.hit("ListUsers")
	if f.listUsersFn == nil {
		return nil, nil
	}
	return f.listUsersFn()
}

func (f *fakeAPI) UpdateLimit(ctx context.Context, userID int64, limit, uploaded int) error {
	f.hit("UpdateLimit")
	if f.updateLimitFn == nil {
		return nil
	}
	return f.updateLimitFn(userID, limit, uploaded)
}

func (f *fakeAPI) DeleteUser(ctx context.Context, userID int64) error {
	f.hit("DeleteUser")
	if f.deleteUserFn == nil {
		return nil
	}
	return f.deleteUserFn(userID)
}

func (f *fakeAPI) ListSessions(ctx context.Context, userID int64) ([]models.ChatSession, error) {
	f.hit("ListSessions")
	if f.sessionsFn == nil {
		return nil, nil
	}
	return f.sessionsFn()
}

func (f *fakeAPI) FetchConversation(ctx context.Context, sessionID string, userID int64) ([]client.ConversationTurn, error) {
	f.hit("FetchConversation")
	if f.conversationFn == nil {
		return nil, nil
	}
	return f.conversationFn(sessionID)
}

func (f *fakeAPI) RegisterSession(ctx context.Context, title string, userID int64) (client.RegisteredSession, error) {
	f.hit("RegisterSession")
	if f.registerFn == nil {
		return client.RegisteredSession{ChatID: "chat-1"}, nil
	}
	return f.registerFn(title)
}

func (f *fakeAPI) InteractWithAgent(ctx context.Context, req client.InteractRequest) (client.AgentAnswer, error) {
	f.hit("InteractWithAgent")
	if f.interactFn == nil {
		return client.AgentAnswer{Answer: "ok"}, nil
	}
	return f.interactFn(req)
}

func (f *fakeAPI) GenerateImage(ctx context.Context, userID int64, sessionID, input string) (client.GeneratedImage, error) {
	f.hit("GenerateImage")
	if f.imageFn == nil {
		return client.GeneratedImage{Answer: "image"}, nil
	}
	return f.imageFn(sessionID, input)
}

func (f *fakeAPI) ListDocuments(ctx context.Context, userID int64) ([]models.DocumentRecord, error) {
	f.hit("ListDocuments")
	if f.listDocsFn == nil {
		return nil, nil
	}
	return f.listDocsFn()
}

func (f *fakeAPI) UploadDocument(ctx context.Context, userID int64, name, contentType string, r io.Reader) error {
	f.hit("UploadDocument")
	body, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if f.uploadFn == nil {
		return nil
	}
	return f.uploadFn(name, body)
}

func (f *fakeAPI) DeleteDocument(ctx context.Context, userID, docID int64) error {
	f.hit("DeleteDocument")
	if f.deleteDocFn == nil {
		return nil
	}
	return f.deleteDocFn(docID)
}

func (f *fakeAPI) DocumentStatus(ctx context.Context, userID, docID int64) (string, error) {
	f.hit("DocumentStatus")
	if f.docStatusFn == nil {
		return "processed", nil
	}
	return f.docStatusFn(docID)
}

func (f *fakeAPI) CitationDocument(ctx context.Context, userID int64, docID string, page *int) (client.CitationDocument, error) {
	f.hit("CitationDocument")
	if f.citationFn == nil {
		return client.CitationDocument{}, nil
	}
	return f.citationFn(docID, page)
}

// fakeIDs implements IdentityProvider.
type fakeIDs struct {
	has       bool
	identity  models.AuthIdentity
	err       error
	signedOut bool
	prompted  bool
}

func (f *fakeIDs) HasAccount(ctx context.Context) (bool, error) { return f.has, nil }

func (f *fakeIDs) Identity(ctx context.Context) (models.AuthIdentity, error) {
	return f.identity, f.err
}

func (f *fakeIDs) Login(ctx context.Context, prompt auth.PromptFunc) (models.AuthIdentity, error) {
	f.prompted = true
	prompt(auth.DeviceCode{UserCode: "CODE"})
	return f.identity, f.err
}

func (f *fakeIDs) SignOut(ctx context.Context) error {
	f.signedOut = true
	return nil
}

// storeWithProfile returns a store with a loaded profile.
func storeWithProfile(id int64) *store.Store {
	s := store.New()
	s.ProfileLoaded(models.UserProfile{ID: id, Username: "ann"})
	return s
}
