package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// flexID accepts an identifier sent either as a JSON string or a number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

type errorBody struct {
	Detail  any `json:"detail"`
	Message any `json:"message"`
}

func errorDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	s, _ := eb.Detail.(string)
	return s
}

// errorMessage picks the detail or message string out of an error body.
func errorMessage(code int, body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if s, ok := eb.Detail.(string); ok && s != "" {
			return s
		}
		if s, ok := eb.Message.(string); ok && s != "" {
			return s
		}
	}
	return "HTTP Error " + strconv.Itoa(code)
}

type sessionsResponse struct {
	Sessions []struct {
		SessionID flexID `json:"session_id"`
		Title     string `json:"title"`
	} `json:"sessions"`
}

// ConversationTurn is one stored question/answer exchange of a session.
type ConversationTurn struct {
	Question  string              `json:"question"`
	Answer    string              `json:"answer"`
	Citations models.CitationList `json:"citations"`
	ImageURL  string              `json:"image_url"`
}

type conversationResponse struct {
	Conversation []ConversationTurn `json:"conversation"`
}

type registerRequest struct {
	Title  string `json:"title"`
	UserID int64  `json:"user_id"`
}

// RegisteredSession is the answer to a session registration. ChatID is empty
// when the server did not return one.
type RegisteredSession struct {
	ChatID    string
	ChatTitle string
}

type registerResponse struct {
	ChatID    flexID `json:"chat_id"`
	ChatTitle string `json:"chat_title"`
}

// InteractRequest is the agent call of one chat turn.
type InteractRequest struct {
	UserID         int64                `json:"user_id"`
	SessionID      string               `json:"session_id"`
	UserInput      string               `json:"user_input"`
	History        []models.HistoryPair `json:"history"`
	ImageURLs      []string             `json:"image_urls"`
	SearchInternet bool                 `json:"search_internet"`
}

// AgentAnswer is the agent's reply.
type AgentAnswer struct {
	Answer    string              `json:"answer"`
	Citations models.CitationList `json:"citations"`
}

type imageRequest struct {
	UserID    int64  `json:"user_id"`
	SessionID string `json:"session_id"`
	UserInput string `json:"user_input"`
}

// GeneratedImage is the image generation reply.
type GeneratedImage struct {
	Answer    string              `json:"answer"`
	ImageURLs []string            `json:"image_urls"`
	Citations models.CitationList `json:"citations"`
}

type userListRequest struct {
	UserID string `json:"user_id"`
}

type limitRequest struct {
	TotalDocumentsAllowed int `json:"total_documents_allowed"`
	DocumentsUploaded     int `json:"documents_uploaded"`
}

type deleteDocumentRequest struct {
	UserID int64 `json:"user_id"`
	DocID  int64 `json:"doc_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// CitationDocument is a signed link to a cited document.
type CitationDocument struct {
	URL          string `json:"url"`
	DocumentName string `json:"document_name"`
}
