package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"

	"github.com/dmitrijs2005/docchat/internal/client/auth"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// API is the backend contract used by the client services.
type API interface {
	FetchProfile(ctx context.Context) (models.UserProfile, error)

	ListUsers(ctx context.Context, userID int64) ([]models.AdminUserRow, error)
	UpdateLimit(ctx context.Context, userID int64, limit, uploaded int) error
	DeleteUser(ctx context.Context, userID int64) error

	ListSessions(ctx context.Context, userID int64) ([]models.ChatSession, error)
	FetchConversation(ctx context.Context, sessionID string, userID int64) ([]ConversationTurn, error)
	RegisterSession(ctx context.Context, title string, userID int64) (RegisteredSession, error)
	InteractWithAgent(ctx context.Context, req InteractRequest) (AgentAnswer, error)
	GenerateImage(ctx context.Context, userID int64, sessionID, input string) (GeneratedImage, error)

	ListDocuments(ctx context.Context, userID int64) ([]models.DocumentRecord, error)
	UploadDocument(ctx context.Context, userID int64, name, contentType string, r io.Reader) error
	DeleteDocument(ctx context.Context, userID, docID int64) error
	DocumentStatus(ctx context.Context, userID, docID int64) (string, error)
	CitationDocument(ctx context.Context, userID int64, docID string, page *int) (CitationDocument, error)
}

// HTTPClient implements API over one resty client. Every request passes
// through a hook that asks the token source for a bearer token; when that
// fails the request is not sent and the token error is returned as is.
type HTTPClient struct {
	rest *resty.Client
	log  logging.Logger
}

var _ API = (*HTTPClient)(nil)

// New returns a client for the API rooted at baseURL. hc may be nil.
func New(baseURL string, tokens auth.TokenSource, hc *http.Client, log logging.Logger) *HTTPClient {
	var rest *resty.Client
	if hc != nil {
		rest = resty.NewWithClient(hc)
	} else {
		rest = resty.New()
	}

	rest.SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	rest.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		token, err := tokens.Token(r.Context())
		if err != nil {
			return err
		}
		r.SetAuthToken(token)
		return nil
	})

	return &HTTPClient{rest: rest, log: log.With("component", "http")}
}

func (c *HTTPClient) r(ctx context.Context) *resty.Request {
	return c.rest.R().SetContext(ctx)
}

// do executes req and decodes a 2xx body into out when out is non-nil.
func (c *HTTPClient) do(req *resty.Request, method, path string, out any) error {
	resp, err := req.Execute(method, path)
	if err != nil {
		err = classify(err)
		c.log.Debug(req.Context(), "request failed", "method", method, "path", path, "error", err)
		return err
	}

	if !resp.IsSuccess() {
		apiErr := newAPIError(resp.StatusCode(), resp.Body())
		c.log.Debug(req.Context(), "request rejected", "method", method, "path", path, "status", resp.StatusCode())
		return apiErr
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &RequestError{Err: fmt.Errorf("decode %s response: %w", path, err)}
	}
	return nil
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func (c *HTTPClient) FetchProfile(ctx context.Context) (models.UserProfile, error) {
	var p models.UserProfile
	err := c.do(c.r(ctx), http.MethodGet, "/users/login", &p)
	return p, err
}

func (c *HTTPClient) ListUsers(ctx context.Context, userID int64) ([]models.AdminUserRow, error) {
	var rows []models.AdminUserRow
	err := c.do(c.r(ctx).SetBody(userListRequest{UserID: id(userID)}), http.MethodPost, "/users/list", &rows)
	return rows, err
}

func (c *HTTPClient) UpdateLimit(ctx context.Context, userID int64, limit, uploaded int) error {
	body := limitRequest{TotalDocumentsAllowed: limit, DocumentsUploaded: uploaded}
	return c.do(c.r(ctx).SetBody(body), http.MethodPut, "/users/"+id(userID)+"/update/limit", nil)
}

func (c *HTTPClient) DeleteUser(ctx context.Context, userID int64) error {
	return c.do(c.r(ctx), http.MethodDelete, "/users/"+id(userID)+"/delete", nil)
}

func (c *HTTPClient) ListSessions(ctx context.Context, userID int64) ([]models.ChatSession, error) {
	var resp sessionsResponse
	req := c.r(ctx).SetQueryParam("user_id", id(userID))
	if err := c.do(req, http.MethodGet, "/history/sessions", &resp); err != nil {
		return nil, err
	}

	sessions := make([]models.ChatSession, 0, len(resp.Sessions))
	for _, s := range resp.Sessions {
		sessions = append(sessions, models.ChatSession{ChatID: string(s.SessionID), ChatTitle: s.Title})
	}
	return sessions, nil
}

func (c *HTTPClient) FetchConversation(ctx context.Context, sessionID string, userID int64) ([]ConversationTurn, error) {
	var resp conversationResponse
	req := c.r(ctx).SetQueryParam("user_id", id(userID))
	if err := c.do(req, http.MethodGet, "/history/sessions/"+url.PathEscape(sessionID)+"/chats", &resp); err != nil {
		return nil, err
	}
	return resp.Conversation, nil
}

func (c *HTTPClient) RegisterSession(ctx context.Context, title string, userID int64) (RegisteredSession, error) {
	var resp registerResponse
	req := c.r(ctx).SetBody(registerRequest{Title: title, UserID: userID})
	if err := c.do(req, http.MethodPost, "/chat/session/register", &resp); err != nil {
		return RegisteredSession{}, err
	}
	return RegisteredSession{ChatID: string(resp.ChatID), ChatTitle: resp.ChatTitle}, nil
}

func (c *HTTPClient) InteractWithAgent(ctx context.Context, in InteractRequest) (AgentAnswer, error) {
	if in.History == nil {
		in.History = []models.HistoryPair{}
	}
	if in.ImageURLs == nil {
		in.ImageURLs = []string{}
	}

	var out AgentAnswer
	err := c.do(c.r(ctx).SetBody(in), http.MethodPost, "/chat/interact-with-agent", &out)
	return out, err
}

func (c *HTTPClient) GenerateImage(ctx context.Context, userID int64, sessionID, input string) (GeneratedImage, error) {
	var out GeneratedImage
	body := imageRequest{UserID: userID, SessionID: sessionID, UserInput: input}
	err := c.do(c.r(ctx).SetBody(body), http.MethodPost, "/image_generation/generate-image", &out)
	return out, err
}

func (c *HTTPClient) ListDocuments(ctx context.Context, userID int64) ([]models.DocumentRecord, error) {
	var docs []models.DocumentRecord
	err := c.do(c.r(ctx).SetBody(userListRequest{UserID: id(userID)}), http.MethodPost, "/docs/list", &docs)
	return docs, err
}

// UploadDocument sends one file as multipart/form-data with the fields
// user_id and file.
func (c *HTTPClient) UploadDocument(ctx context.Context, userID int64, name, contentType string, r io.Reader) error {
	req := c.r(ctx).
		SetMultipartFormData(map[string]string{"user_id": id(userID)}).
		SetMultipartField("file", name, contentType, r)
	return c.do(req, http.MethodPost, "/docs/upload-train", nil)
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, userID, docID int64) error {
	body := deleteDocumentRequest{UserID: userID, DocID: docID}
	return c.do(c.r(ctx).SetBody(body), http.MethodPost, "/docs/delete-untrain", nil)
}

func (c *HTTPClient) DocumentStatus(ctx context.Context, userID, docID int64) (string, error) {
	var out statusResponse
	req := c.r(ctx).SetQueryParam("user_id", id(userID))
	if err := c.do(req, http.MethodGet, "/docs/"+id(docID)+"/status", &out); err != nil {
		return "", err
	}
	return out.Status, nil
}

func (c *HTTPClient) CitationDocument(ctx context.Context, userID int64, docID string, page *int) (CitationDocument, error) {
	var out CitationDocument
	req := c.r(ctx).SetQueryParam("user_id", id(userID))
	if page != nil {
		req.SetQueryParam("page", strconv.Itoa(*page))
	}
	err := c.do(req, http.MethodGet, "/docs/citation-doc/"+url.PathEscape(docID), &out)
	return out, err
}
