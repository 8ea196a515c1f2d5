package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docchat/internal/client/client"
)

var (
	// ErrNoProfile means the operation needs a loaded user profile.
	ErrNoProfile = errors.New("user profile is not loaded")
	// ErrMissingUserID means the server returned a profile without an id.
	ErrMissingUserID = errors.New("User ID not found in profile data.")

	// ErrImageAttachment means the attached image could not be read.
	ErrImageAttachment = errors.New("Failed to process image attachment.")
	// ErrMissingChatID means session registration returned no chat id.
	ErrMissingChatID = errors.New("Could not create or identify the chat session. (Missing chat_id from response or API error)")
	// ErrNotImage is returned when a non-image file is attached to a message.
	ErrNotImage = errors.New("Please select an image file.")
	// ErrImageGenerationActive is returned when attaching while image
	// generation is enabled.
	ErrImageGenerationActive = errors.New("image attachments are disabled while image generation is on")

	ErrInvalidFileType = errors.New("only PDF, DOCX, CSV and Excel files are allowed")
	ErrFileTooLarge    = errors.New("file is too large")
	ErrBatchTooLarge   = errors.New("total size limit exceeded")
	ErrQuotaExceeded   = errors.New("upload limit reached")
	ErrNothingStaged   = errors.New("no files staged")
	ErrDeleteInFlight  = errors.New("document is already being deleted")

	ErrInvalidLimit  = errors.New("limit must be a non-negative whole number")
	ErrActionPending = errors.New("another user action is in progress")
	ErrUnknownUser   = errors.New("user is not in the list")
	ErrNoChange      = errors.New("limit is unchanged")

	ErrUnknownCitation = errors.New("citation has no known source")
	ErrNoDocumentURL   = errors.New("Failed to get document URL.")
)

// ChatErrorText renders a failed send as the text of the bot message that
// replaces the answer.
func ChatErrorText(err error) string {
	var apiErr *client.APIError
	var reqErr *client.RequestError
	switch {
	case errors.As(err, &apiErr):
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		status := apiErr.Status
		if status == "" {
			status = "Unknown API Error"
		}
		return fmt.Sprintf("Error %d: %s", apiErr.StatusCode, status)
	case errors.As(err, &reqErr):
		return reqErr.Error()
	case errors.Is(err, client.ErrNoResponse):
		return "Error: " + client.NoResponseText
	case errors.Is(err, ErrImageAttachment):
		return "Error: " + ErrImageAttachment.Error()
	case errors.Is(err, ErrMissingChatID):
		return "Error: " + ErrMissingChatID.Error()
	case err == nil:
		return ""
	default:
		return "Error: " + err.Error()
	}
}
