package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/docchat/internal/client/auth"
	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/config"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/persist"
	"github.com/dmitrijs2005/docchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docchat/internal/client/services"
	"github.com/dmitrijs2005/docchat/internal/client/store"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// App is the interactive docchat client: the session store, the services
// that drive it and the REPL that prints it.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	detach func()

	store     *store.Store
	session   services.SessionService
	chat      services.ChatService
	docs      *services.DocumentPanel
	admin     *services.AdminPanel
	citations *services.CitationResolver
	composer  *services.Composer

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local state database, restores the persisted session and
// wires the token provider, HTTP gateway and services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(os.Stderr, c.LogFormat, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.StateDBPath)
	if err != nil {
		return nil, fmt.Errorf("init state database: %w", err)
	}

	a := &App{
		config: c,
		log:    log,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if err := a.wire(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) wire(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(a.db)

	passphrase, err := a.passphrase()
	if err != nil {
		return err
	}
	secret, err := persist.Secret(passphrase, a.config.StateKeyPath)
	if err != nil {
		return fmt.Errorf("state secret: %w", err)
	}
	key, err := persist.ResolveKey(ctx, repo, secret)
	common.WipeByteArray(secret)
	if err != nil {
		return err
	}

	st := store.New()
	bridge := persist.NewBridge(a.db, key, a.log)
	detach, err := bridge.Attach(ctx, st)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	a.detach = detach

	provider := auth.NewProvider(auth.Config{
		ClientID:      a.config.ClientID,
		DeviceAuthURL: a.config.DeviceAuthURL(),
		TokenURL:      a.config.TokenURL(),
		Scopes:        a.config.Scopes(),
	}, auth.NewSealedCache(repo, key), a.log)

	api := client.New(a.config.APIBaseURL, provider, nil, a.log)
	a.wireServices(api, provider, st)
	return nil
}

// wireServices builds the services on top of api and st.
func (a *App) wireServices(api client.API, ids services.IdentityProvider, st *store.Store) {
	limits := services.DefaultDocumentLimits()
	if a.config != nil && a.config.MaxFileMiB > 0 {
		limits.MaxFileSize = a.config.MaxFileMiB * services.MiB
	}
	if a.config != nil && a.config.MaxBatchMiB > 0 {
		limits.MaxBatchSize = a.config.MaxBatchMiB * services.MiB
	}

	a.store = st
	a.session = services.NewSessionService(api, ids, st, a.log)
	a.chat = services.NewChatService(api, st, a.log)
	a.docs = services.NewDocumentPanel(api, st, limits, a.log)
	a.admin = services.NewAdminPanel(api, st, a.log)
	a.citations = services.NewCitationResolver(api, st)
	a.composer = &services.Composer{}

	a.docs.OnProgress(func(t models.UploadTask) {
		switch t.Status {
		case models.UploadSucceeded:
			fmt.Fprintf(a.out, "  %s: uploaded\n", t.FileName)
		case models.UploadFailed:
			fmt.Fprintf(a.out, "  %s: failed: %s\n", t.FileName, t.Error)
		}
	})
}

// passphrase returns the configured state passphrase, asking for it on the
// terminal when PromptPassphrase is set.
func (a *App) passphrase() (string, error) {
	if !a.config.PromptPassphrase {
		return a.config.StatePassphrase, nil
	}
	pw, err := getPassword(a.out)
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Run restores the signed-in session, if any, and blocks in the REPL until
// the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "docchat (type 'help' for commands)")
	if err := a.session.Bootstrap(ctx); err != nil {
		report(err)
	}

	scanner := bufio.NewScanner(a.reader)
	runREPL(ctx, a, a.status, scanner)
}

// Close detaches the persistence bridge and closes the state database.
func (a *App) Close() {
	if a.detach != nil {
		a.detach()
		a.detach = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "close state database", "error", err)
		}
		a.db = nil
	}
}

func (a *App) isLoggedIn() bool {
	return a.store.Auth().IsAuthenticated
}

// status is shown in the prompt: who is signed in, the active chat and the
// composer toggles.
func (a *App) status() string {
	st := a.store.Snapshot()
	if !st.Auth.IsAuthenticated {
		return "(signed out)"
	}

	s := "signed in"
	if st.Auth.User != nil && st.Auth.User.Name != "" {
		s = st.Auth.User.Name
	}
	if st.Chat.ActiveChatID != "" {
		s += " " + chatTitle(st.Chat.ChatHistory, st.Chat.ActiveChatID)
	} else {
		s += " new chat"
	}
	if a.composer.WebSearch {
		s += " +web"
	}
	if a.composer.ImageGeneration {
		s += " +image"
	}
	if a.composer.Image != nil {
		s += " [" + a.composer.Image.Name + "]"
	}
	return "(" + s + ")"
}
