package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/filex"
)

// Composer is the transient input of the chat box: the text being typed, an
// optional image and the two feature toggles. At most one toggle is on.
type Composer struct {
	Text            string
	Image           *models.StagedFile
	WebSearch       bool
	ImageGeneration bool
	Busy            bool
}

// ToggleWebSearch flips web search and turns image generation off.
func (c *Composer) ToggleWebSearch() {
	c.WebSearch = !c.WebSearch
	c.ImageGeneration = false
}

// ToggleImageGeneration flips image generation and turns web search off.
func (c *Composer) ToggleImageGeneration() {
	c.ImageGeneration = !c.ImageGeneration
	c.WebSearch = false
}

// Attach stages the image at path. Only image/* files are accepted and
// nothing can be attached while image generation is on.
func (c *Composer) Attach(path string) error {
	if c.ImageGeneration {
		return ErrImageGenerationActive
	}

	ct := filex.ContentType(path)
	if !strings.HasPrefix(ct, "image/") {
		return ErrNotImage
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return err
	}

	c.Image = &models.StagedFile{
		Name:        fi.Name(),
		Path:        abs,
		Size:        fi.Size(),
		ContentType: ct,
	}
	return nil
}

// Detach drops the staged image.
func (c *Composer) Detach() {
	c.Image = nil
}

// CanSend reports whether Send would do anything with the current input.
func (c *Composer) CanSend() bool {
	return !c.Busy && (strings.TrimSpace(c.Text) != "" || c.Image != nil)
}

// reset clears the per-send input. Toggles survive between sends.
func (c *Composer) reset() {
	c.Text = ""
	c.Image = nil
	c.Busy = false
}
