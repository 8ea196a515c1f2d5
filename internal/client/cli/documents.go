package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// Docs refreshes and prints the document list, the quota and the staged
// files.
func (a *App) Docs(ctx context.Context) error {
	if err := a.docs.Refresh(ctx); err != nil {
		return err
	}

	uploaded, limit := a.docs.Usage()
	fmt.Fprintf(a.out, "Documents (%d of %d):\n", uploaded, limit)
	for _, d := range a.store.User().Documents {
		line := fmt.Sprintf("  #%d %s  %s", d.ID, d.Name, d.UploadedAt)
		if st, ok := a.docs.Status(d.ID); ok {
			line += "  [" + statusText(st) + "]"
		}
		fmt.Fprintln(a.out, line)
	}

	a.printStaged()
	return nil
}

func (a *App) printStaged() {
	staged := a.docs.Staged()
	if len(staged) == 0 {
		return
	}
	var total int64
	fmt.Fprintln(a.out, "Staged for upload:")
	for _, f := range staged {
		total += f.Size
		fmt.Fprintf(a.out, "  %s (%s)\n", f.Name, formatSize(f.Size))
	}
	fmt.Fprintf(a.out, "  total %s\n", formatSize(total))
}

// Stage adds local files to the upload batch. Rejected files are listed;
// the rest stay staged.
func (a *App) Stage(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage("stage <file>...")
	}
	for _, err := range a.docs.StagePaths(args) {
		fmt.Fprintln(a.out, "  skipped:", err)
	}
	a.printStaged()
	return nil
}

func (a *App) Unstage(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage("unstage <name>")
	}
	name := strings.Join(args, " ")
	if !a.docs.Unstage(name) {
		return fmt.Errorf("%s is not staged", name)
	}
	a.printStaged()
	return nil
}

// Upload sends the staged batch; progress lines are printed as each file
// settles.
func (a *App) Upload(ctx context.Context) error {
	tasks, err := a.docs.Upload(ctx)
	if err != nil {
		return err
	}
	ok := 0
	for _, t := range tasks {
		if t.Status == models.UploadSucceeded {
			ok++
		}
	}
	fmt.Fprintf(a.out, "Uploaded %d of %d file(s).\n", ok, len(tasks))
	return nil
}

func (a *App) RemoveDocument(ctx context.Context, args []string) error {
	id, err := parseID(args, "rmdoc <document id>")
	if err != nil {
		return err
	}
	if err := a.docs.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Document #%d deleted.\n", id)
	return nil
}

// DocumentStatus asks the server for the processing status of a document.
func (a *App) DocumentStatus(ctx context.Context, args []string) error {
	id, err := parseID(args, "docstatus <document id>")
	if err != nil {
		return err
	}
	st := a.docs.FetchStatus(ctx, id)
	fmt.Fprintf(a.out, "#%d: %s\n", id, statusText(st))
	return nil
}

func statusText(st models.DocStatus) string {
	switch {
	case st.Loading:
		return "checking..."
	case st.Error != "":
		return "error: " + st.Error
	case st.Status == "":
		return "unknown"
	default:
		return st.Status
	}
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, errUsage(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, errUsage(usage)
	}
	return id, nil
}
