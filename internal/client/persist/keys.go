package persist

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/cryptox"
	"github.com/dmitrijs2005/docchat/internal/filex"
)

const (
	keySalt     = "stateSalt"
	keyVerifier = "stateVerifier"

	saltSize      = 32
	deviceKeySize = 32
)

// ErrWrongPassphrase is returned when the derived key does not match the
// verifier stored next to the sealed state.
var ErrWrongPassphrase = errors.New("state passphrase does not match stored state")

// Secret returns the material the state key is derived from: the passphrase
// when one is configured, otherwise the per-device key file at keyPath.
func Secret(passphrase string, keyPath string) ([]byte, error) {
	if passphrase != "" {
		return []byte(passphrase), nil
	}
	return filex.ReadOrCreateKey(keyPath, deviceKeySize)
}

// ResolveKey derives the key that seals local state. The first run stores a
// fresh salt and a verifier; later runs check the secret against the
// verifier and fail with ErrWrongPassphrase on mismatch.
func ResolveKey(ctx context.Context, repo metadata.Repository, secret []byte) ([]byte, error) {
	salt, err := repo.Get(ctx, keySalt)
	if err != nil {
		return nil, err
	}

	if len(salt) == 0 {
		salt = common.GenerateRandByteArray(saltSize)
		key := cryptox.DeriveMasterKey(secret, salt)

		if err := repo.Set(ctx, keySalt, salt); err != nil {
			return nil, fmt.Errorf("save salt: %w", err)
		}
		if err := repo.Set(ctx, keyVerifier, cryptox.MakeVerifier(key)); err != nil {
			return nil, fmt.Errorf("save verifier: %w", err)
		}
		return key, nil
	}

	verifier, err := repo.Get(ctx, keyVerifier)
	if err != nil {
		return nil, err
	}

	key := cryptox.DeriveMasterKey(secret, salt)
	if subtle.ConstantTimeCompare(verifier, cryptox.MakeVerifier(key)) == 0 {
		common.WipeByteArray(key)
		return nil, ErrWrongPassphrase
	}
	return key, nil
}
