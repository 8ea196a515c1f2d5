package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/store"
	"github.com/dmitrijs2005/docchat/internal/filex"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

const (
	MiB = 1 << 20
	GiB = 1 << 30
)

// DocumentLimits bounds what can be staged for one upload batch.
type DocumentLimits struct {
	MaxFileSize  int64
	MaxBatchSize int64
}

// DefaultDocumentLimits are 500 MiB per file and 1 GiB per batch.
func DefaultDocumentLimits() DocumentLimits {
	return DocumentLimits{MaxFileSize: 500 * MiB, MaxBatchSize: 1 * GiB}
}

var documentTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/csv":                 true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// DocumentPanel manages the user's documents: staging and batch upload,
// delete, on-demand processing status and the list refresh.
type DocumentPanel struct {
	api    client.API
	store  *store.Store
	log    logging.Logger
	limits DocumentLimits
	open   func(string) (io.ReadCloser, error)

	mu       sync.Mutex
	staged   []models.StagedFile
	deleting map[int64]bool
	statuses map[int64]models.DocStatus

	progressMu sync.Mutex
	progress   []func(models.UploadTask)
}

// NewDocumentPanel returns a panel with the given staging limits.
func NewDocumentPanel(api client.API, st *store.Store, limits DocumentLimits, log logging.Logger) *DocumentPanel {
	return &DocumentPanel{
		api:      api,
		store:    st,
		log:      log.With("component", "documents"),
		limits:   limits,
		open:     func(p string) (io.ReadCloser, error) { return os.Open(p) },
		deleting: make(map[int64]bool),
		statuses: make(map[int64]models.DocStatus),
	}
}

// OnProgress registers fn to see every upload task change, in the order the
// uploads settle.
func (d *DocumentPanel) OnProgress(fn func(models.UploadTask)) {
	d.progressMu.Lock()
	defer d.progressMu.Unlock()
	d.progress = append(d.progress, fn)
}

func (d *DocumentPanel) report(t models.UploadTask) {
	d.progressMu.Lock()
	defer d.progressMu.Unlock()
	for _, fn := range d.progress {
		fn(t)
	}
}

// Stage validates files in order and adds the acceptable ones. A file of the
// wrong type or over the per-file limit is skipped with an error. The first
// file that would push the batch over its limit stops the pass; files
// accepted before it stay staged. Files whose name is already staged are
// silently skipped.
func (d *DocumentPanel) Stage(files []models.StagedFile) []error {
	d.mu.Lock()
	defer d.mu.Unlock()

	var total int64
	names := make(map[string]bool, len(d.staged))
	for _, f := range d.staged {
		total += f.Size
		names[f.Name] = true
	}

	var errs []error
	for _, f := range files {
		if !documentTypes[f.ContentType] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidFileType, f.Name))
			continue
		}
		if f.Size > d.limits.MaxFileSize {
			errs = append(errs, fmt.Errorf("%w: %s (%.1f MiB, max %d MiB)",
				ErrFileTooLarge, f.Name, float64(f.Size)/MiB, d.limits.MaxFileSize/MiB))
			continue
		}
		if total+f.Size > d.limits.MaxBatchSize {
			errs = append(errs, fmt.Errorf("%w: cannot add %s", ErrBatchTooLarge, f.Name))
			break
		}
		if names[f.Name] {
			continue
		}

		d.staged = append(d.staged, f)
		names[f.Name] = true
		total += f.Size
	}
	return errs
}

// StagePaths stats local files and stages them.
func (d *DocumentPanel) StagePaths(paths []string) []error {
	var errs []error
	files := make([]models.StagedFile, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		fi, err := os.Stat(abs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if fi.IsDir() {
			errs = append(errs, fmt.Errorf("%w: %s is a directory", ErrInvalidFileType, p))
			continue
		}
		files = append(files, models.StagedFile{
			Name:        fi.Name(),
			Path:        abs,
			Size:        fi.Size(),
			ContentType: filex.ContentType(abs),
		})
	}
	return append(errs, d.Stage(files)...)
}

// Unstage removes the staged file called name.
func (d *DocumentPanel) Unstage(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.staged)
	d.staged = slices.DeleteFunc(d.staged, func(f models.StagedFile) bool { return f.Name == name })
	return len(d.staged) != n
}

// Staged returns the staged files in staging order.
func (d *DocumentPanel) Staged() []models.StagedFile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.staged)
}

// Usage returns the number of documents on the server and the user's quota.
func (d *DocumentPanel) Usage() (uploaded, limit int) {
	st := d.store.Snapshot()
	return len(st.User.Documents), st.User.Profile.DocumentLimit()
}

// Upload sends every staged file concurrently. The batch is refused
// up front when it does not fit in the remaining quota; the document list is
// fetched first when it has not been loaded. Each file settles
// on its own; the returned tasks are in staging order. Once all uploads have
// settled the staged set is cleared and, if at least one file was accepted,
// the document list is refreshed once.
func (d *DocumentPanel) Upload(ctx context.Context) ([]models.UploadTask, error) {
	p := d.store.Profile()
	if p == nil {
		return nil, ErrNoProfile
	}

	staged := d.Staged()
	if len(staged) == 0 {
		return nil, ErrNothingStaged
	}

	if d.store.User().DocumentsStatus != models.StatusSucceeded {
		if err := d.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("load documents: %w", err)
		}
	}

	uploaded, limit := d.Usage()
	remaining := limit - uploaded
	if len(staged) > remaining {
		return nil, fmt.Errorf("%w: you can only upload %d more document(s)", ErrQuotaExceeded, max(remaining, 0))
	}

	tasks := make([]models.UploadTask, len(staged))
	for i, f := range staged {
		tasks[i] = models.UploadTask{FileName: f.Name, Status: models.UploadUploading}
		d.report(tasks[i])
	}

	var g errgroup.Group
	for i, f := range staged {
		g.Go(func() error {
			t := models.UploadTask{FileName: f.Name, Status: models.UploadSucceeded}
			if err := d.uploadOne(ctx, p.ID, f); err != nil {
				d.log.Warn(ctx, "upload failed", "file", f.Name, "error", err)
				t.Status = models.UploadFailed
				t.Error = client.Describe(err)
			}
			tasks[i] = t
			d.report(t)
			return nil
		})
	}
	_ = g.Wait()

	d.mu.Lock()
	d.staged = nil
	d.mu.Unlock()

	succeeded := 0
	for _, t := range tasks {
		if t.Status == models.UploadSucceeded {
			succeeded++
		}
	}
	d.log.Info(ctx, "upload batch settled", "files", len(tasks), "succeeded", succeeded)

	if succeeded > 0 {
		_ = d.Refresh(ctx)
	}
	return tasks, nil
}

func (d *DocumentPanel) uploadOne(ctx context.Context, userID int64, f models.StagedFile) error {
	rc, err := d.open(f.Path)
	if err != nil {
		return &client.RequestError{Err: err}
	}
	defer rc.Close()

	return d.api.UploadDocument(ctx, userID, f.Name, f.ContentType, rc)
}

// Delete removes a document on the server. A second delete of the same id
// while the first is in flight fails with ErrDeleteInFlight. The list is
// refreshed after a successful delete.
func (d *DocumentPanel) Delete(ctx context.Context, docID int64) error {
	p := d.store.Profile()
	if p == nil {
		return ErrNoProfile
	}

	d.mu.Lock()
	if d.deleting[docID] {
		d.mu.Unlock()
		return ErrDeleteInFlight
	}
	d.deleting[docID] = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		delete(d.deleting, docID)
		d.mu.Unlock()
	}()

	if err := d.api.DeleteDocument(ctx, p.ID, docID); err != nil {
		return err
	}
	d.log.Info(ctx, "document deleted", "doc_id", docID)

	_ = d.Refresh(ctx)
	return nil
}

// Deleting reports whether a delete of docID is in flight.
func (d *DocumentPanel) Deleting(docID int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleting[docID]
}

// FetchStatus asks the server for the processing status of one document and
// remembers the outcome in memory.
func (d *DocumentPanel) FetchStatus(ctx context.Context, docID int64) models.DocStatus {
	p := d.store.Profile()
	if p == nil {
		return models.DocStatus{Error: ErrNoProfile.Error()}
	}

	d.setStatus(docID, models.DocStatus{Loading: true})

	status, err := d.api.DocumentStatus(ctx, p.ID, docID)
	st := models.DocStatus{Status: status}
	if err != nil {
		st = models.DocStatus{Error: client.Describe(err)}
	}
	d.setStatus(docID, st)
	return st
}

func (d *DocumentPanel) setStatus(docID int64, st models.DocStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statuses[docID] = st
}

// Status returns the last fetched status of docID.
func (d *DocumentPanel) Status(docID int64) (models.DocStatus, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.statuses[docID]
	return st, ok
}

// Refresh reloads the document list into the store.
func (d *DocumentPanel) Refresh(ctx context.Context) error {
	p := d.store.Profile()
	if p == nil {
		return ErrNoProfile
	}

	d.store.DocumentsLoading()
	docs, err := d.api.ListDocuments(ctx, p.ID)
	if err != nil {
		d.store.DocumentsFailed(client.Describe(err))
		return err
	}
	d.store.DocumentsLoaded(docs)
	return nil
}
