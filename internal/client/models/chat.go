package models

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// ChatSession is one entry of the chat history sidebar.
type ChatSession struct {
	ChatID    string `json:"chatId"`
	ChatTitle string `json:"chatTitle"`
}

// Message is one chat bubble. User and bot messages alternate in send order.
type Message struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Sender    Sender       `json:"sender"`
	Citations CitationList `json:"citations,omitempty"`
	ImageURL  string       `json:"imageUrl,omitempty"`
	WebSearch bool         `json:"webSearch,omitempty"`
}

// HistoryPair is a (question, answer) pair sent back to the agent as
// conversation context. It encodes as a two-element JSON array.
type HistoryPair [2]string

// FormatHistory pairs messages at positions (0,1), (2,3), ... and keeps a
// pair only when it is a user message followed by a bot message. Malformed
// pairs and a trailing unanswered message are dropped.
func FormatHistory(chat []Message) []HistoryPair {
	history := make([]HistoryPair, 0, len(chat)/2)
	for i := 0; i+1 < len(chat); i += 2 {
		if chat[i].Sender == SenderUser && chat[i+1].Sender == SenderBot {
			history = append(history, HistoryPair{chat[i].Text, chat[i+1].Text})
		}
	}
	return history
}
