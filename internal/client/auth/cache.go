package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/dmitrijs2005/docchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docchat/internal/cryptox"
)

// KeyAccounts is the metadata key of the sealed account list.
const KeyAccounts = "accounts"

// Account is one signed-in identity with its tokens.
type Account struct {
	Token   *oauth2.Token `json:"token"`
	IDToken string        `json:"id_token,omitempty"`
	Name    string        `json:"name,omitempty"`
	Email   string        `json:"email,omitempty"`
}

// AccountCache stores the signed-in accounts. The first account is the one
// used for silent acquisition.
type AccountCache interface {
	Load(ctx context.Context) ([]Account, error)
	Save(ctx context.Context, accounts []Account) error
	Clear(ctx context.Context) error
}

// SealedCache keeps the account list in the metadata table, sealed with key.
type SealedCache struct {
	repo metadata.Repository
	key  []byte
}

// NewSealedCache returns a cache over repo.
func NewSealedCache(repo metadata.Repository, key []byte) *SealedCache {
	return &SealedCache{repo: repo, key: key}
}

func (c *SealedCache) Load(ctx context.Context) ([]Account, error) {
	raw, err := c.repo.Get(ctx, KeyAccounts)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var accounts []Account
	if err := cryptox.Open(raw, c.key, &accounts); err != nil {
		return nil, fmt.Errorf("open account cache: %w", err)
	}
	return accounts, nil
}

func (c *SealedCache) Save(ctx context.Context, accounts []Account) error {
	sealed, err := cryptox.Seal(accounts, c.key)
	if err != nil {
		return fmt.Errorf("seal account cache: %w", err)
	}
	return c.repo.Set(ctx, KeyAccounts, sealed)
}

func (c *SealedCache) Clear(ctx context.Context) error {
	return c.repo.Delete(ctx, KeyAccounts)
}
