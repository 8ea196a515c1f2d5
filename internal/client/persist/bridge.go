// Package persist mirrors the session store into the local metadata table.
//
// The Bridge registers itself as a store observer. Every change rewrites the
// auth, chat and user slices under the keys authState, chatState and
// userState; a reset change (logout) deletes all three in one transaction.
// The auth slice carries bearer tokens and is sealed with cryptox before it
// is written. Load restores the slices once at startup.
//
// Write failures are logged and never reach the caller that triggered the
// transition.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docchat/internal/client/store"
	"github.com/dmitrijs2005/docchat/internal/cryptox"
	"github.com/dmitrijs2005/docchat/internal/dbx"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

// Keys of the persisted slices.
const (
	KeyAuth = "authState"
	KeyChat = "chatState"
	KeyUser = "userState"
)

// Bridge is a store.Observer that keeps durable copies of the store slices.
type Bridge struct {
	db  *sql.DB
	key []byte
	log logging.Logger

	mu      sync.Mutex
	written uint64
}

var _ store.Observer = (*Bridge)(nil)

// NewBridge returns a bridge writing to db and sealing the auth slice with key.
func NewBridge(db *sql.DB, key []byte, log logging.Logger) *Bridge {
	return &Bridge{db: db, key: key, log: log.With("component", "persist")}
}

// Attach loads the durable slices into s and subscribes the bridge to it.
// The returned function unsubscribes.
func (b *Bridge) Attach(ctx context.Context, s *store.Store) (func(), error) {
	st, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.Hydrate(st)

	b.mu.Lock()
	b.written = s.Version()
	b.mu.Unlock()

	return s.Subscribe(b), nil
}

// Load reads the three slices. A missing key yields that slice's initial
// value. An auth blob that cannot be opened is discarded with a warning so
// the user simply has to sign in again.
func (b *Bridge) Load(ctx context.Context) (store.State, error) {
	st := store.Initial()
	repo := metadata.NewSQLiteRepository(b.db)

	raw, err := repo.Get(ctx, KeyAuth)
	if err != nil {
		return st, err
	}
	if len(raw) > 0 {
		var a models.AuthIdentity
		if err := cryptox.Open(raw, b.key, &a); err != nil {
			b.log.Warn(ctx, "discarding unreadable auth state", "error", err)
		} else {
			st.Auth = a
		}
	}

	if err := loadJSON(ctx, repo, KeyChat, &st.Chat); err != nil {
		return st, err
	}
	if err := loadJSON(ctx, repo, KeyUser, &st.User); err != nil {
		return st, err
	}

	return st, nil
}

func loadJSON(ctx context.Context, repo metadata.Repository, key string, v any) error {
	raw, err := repo.Get(ctx, key)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// StateChanged writes the snapshot carried by c. Snapshots older than the
// last one written are dropped, so the table always ends with the newest
// state even when notifications arrive out of order.
func (b *Bridge) StateChanged(c store.Change) {
	ctx := context.Background()

	b.mu.Lock()
	defer b.mu.Unlock()

	if c.Version <= b.written {
		b.log.Debug(ctx, "dropping stale snapshot", "version", c.Version, "written", b.written)
		return
	}

	var err error
	if c.Reset {
		err = b.clear(ctx)
	} else {
		err = b.save(ctx, c.State)
	}
	if err != nil {
		b.log.Error(ctx, "failed to persist state", "version", c.Version, "error", err)
		return
	}
	b.written = c.Version
}

func (b *Bridge) save(ctx context.Context, st store.State) error {
	auth, err := cryptox.Seal(st.Auth, b.key)
	if err != nil {
		return fmt.Errorf("seal %s: %w", KeyAuth, err)
	}
	chat, err := json.Marshal(st.Chat)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyChat, err)
	}
	user, err := json.Marshal(st.User)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyUser, err)
	}

	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyAuth, auth); err != nil {
			return err
		}
		if err := repo.Set(ctx, KeyChat, chat); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, user)
	})
}

func (b *Bridge) clear(ctx context.Context) error {
	return dbx.WithTx(ctx, b.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return metadata.NewSQLiteRepository(tx).Delete(ctx, KeyAuth, KeyChat, KeyUser)
	})
}
