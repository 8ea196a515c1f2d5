package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/services"
)

// Send sends text, together with the attached image, and prints the answer.
func (a *App) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" && a.composer.Image == nil {
		return errUsage("send <text>")
	}

	a.composer.Text = text
	if !a.chat.Send(ctx, a.composer) {
		a.composer.Text = ""
		return services.ErrNoProfile
	}

	msgs := a.store.Chat().CurrentChat
	if n := len(msgs); n > 0 {
		printMessage(a.out, n, msgs[n-1])
	}
	return nil
}

// Show prints the messages of the active conversation.
func (a *App) Show(ctx context.Context) error {
	chat := a.store.Chat()
	switch {
	case chat.Status == models.StatusFailed && chat.Error != "":
		fmt.Fprintln(a.out, "Error:", chat.Error)
	case len(chat.CurrentChat) == 0:
		fmt.Fprintln(a.out, "No messages yet. Type '> your question' to start.")
	}
	for i, m := range chat.CurrentChat {
		printMessage(a.out, i+1, m)
	}
	return nil
}

// Chats refreshes and prints the chat history; the active chat is starred.
func (a *App) Chats(ctx context.Context) error {
	if err := a.session.RefreshHistory(ctx); err != nil {
		return err
	}
	chat := a.store.Chat()
	if len(chat.ChatHistory) == 0 {
		fmt.Fprintln(a.out, "No chats yet.")
		return nil
	}
	for i, c := range chat.ChatHistory {
		mark := " "
		if c.ChatID == chat.ActiveChatID {
			mark = "*"
		}
		fmt.Fprintf(a.out, "%s %2d. %s\n", mark, i+1, sessionTitle(c))
	}
	return nil
}

// Open switches to a chat given by its number in the history list or by id,
// and prints its conversation.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("open <n|chat id>")
	}

	id := args[0]
	hist := a.store.Chat().ChatHistory
	if n, err := strconv.Atoi(id); err == nil && n >= 1 && n <= len(hist) {
		id = hist[n-1].ChatID
	}

	if err := a.session.SelectSession(ctx, id); err != nil {
		return err
	}
	return a.Show(ctx)
}

// NewChat starts a fresh conversation; the next message registers it.
func (a *App) NewChat(ctx context.Context) error {
	a.session.NewChat()
	fmt.Fprintln(a.out, "Started a new chat.")
	return nil
}

func (a *App) ToggleWebSearch(ctx context.Context) error {
	a.composer.ToggleWebSearch()
	fmt.Fprintln(a.out, "Web search", onOff(a.composer.WebSearch))
	return nil
}

func (a *App) ToggleImageGeneration(ctx context.Context) error {
	a.composer.ToggleImageGeneration()
	fmt.Fprintln(a.out, "Image generation", onOff(a.composer.ImageGeneration))
	return nil
}

// Attach stages an image for the next message.
func (a *App) Attach(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage("attach <image file>")
	}
	if err := a.composer.Attach(strings.Join(args, " ")); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Attached %s (%s)\n", a.composer.Image.Name, formatSize(a.composer.Image.Size))
	return nil
}

func (a *App) Detach(ctx context.Context) error {
	a.composer.Detach()
	fmt.Fprintln(a.out, "Attachment removed.")
	return nil
}

// Cite prints the URL behind citation n of message m, as numbered by show.
func (a *App) Cite(ctx context.Context, args []string) error {
	const usage = errUsage("cite <message> <n>")
	if len(args) != 2 {
		return usage
	}
	m, err1 := strconv.Atoi(args[0])
	n, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return usage
	}

	msgs := a.store.Chat().CurrentChat
	if m < 1 || m > len(msgs) {
		return fmt.Errorf("no message %d", m)
	}
	cites := msgs[m-1].Citations
	if n < 1 || n > len(cites) {
		return fmt.Errorf("message %d has no source %d", m, n)
	}

	url, err := a.citations.Open(ctx, cites[n-1])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, url)
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
