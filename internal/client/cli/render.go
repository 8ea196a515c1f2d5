package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// printMessage writes message m under number n, followed by its numbered
// sources.
func printMessage(w io.Writer, n int, m models.Message) {
	who := "Bot"
	if m.Sender == models.SenderUser {
		who = "You"
	}

	var tags []string
	if m.WebSearch {
		tags = append(tags, "web search")
	}
	if m.ImageURL != "" {
		tags = append(tags, "image: "+m.ImageURL)
	}

	line := fmt.Sprintf("[%d] %s: %s", n, who, m.Text)
	if len(tags) > 0 {
		line += "  (" + strings.Join(tags, ", ") + ")"
	}
	fmt.Fprintln(w, line)

	if len(m.Citations) == 0 {
		return
	}
	fmt.Fprintln(w, "    Sources:")
	for i, c := range m.Citations {
		fmt.Fprintf(w, "      %d. %s\n", i+1, c.Label())
	}
}

func sessionTitle(c models.ChatSession) string {
	if c.ChatTitle != "" {
		return c.ChatTitle
	}
	return c.ChatID
}

// chatTitle finds the title of id in the history list.
func chatTitle(history []models.ChatSession, id string) string {
	for _, c := range history {
		if c.ChatID == id {
			return sessionTitle(c)
		}
	}
	return id
}

func formatSize(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
