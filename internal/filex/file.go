// Package filex contains filesystem helpers used by the client: preparing the
// state directory, managing the device key file and guessing content types
// of local files picked for upload or attachment.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/docchat/internal/common"
)

// ErrKeyFileSize is returned when an existing key file has an unexpected length.
var ErrKeyFileSize = errors.New("key file has unexpected size")

// EnsureParentDir creates the directory that will hold path, if needed.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// ReadOrCreateKey returns the contents of the key file at path. When the file
// does not exist, size random bytes are written to it with owner-only
// permissions and returned.
func ReadOrCreateKey(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		if len(data) != size {
			return nil, fmt.Errorf("%s: %w", path, ErrKeyFileSize)
		}
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if err := EnsureParentDir(path); err != nil {
		return nil, err
	}

	key := common.GenerateRandByteArray(size)
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}

// Office and tabular types are registered explicitly because many systems
// ship a mime table without them.
var knownTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".csv":  "text/csv",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// ContentType guesses the MIME type of path from its extension. Parameters
// such as "; charset=utf-8" are stripped. Unknown extensions yield
// "application/octet-stream".
func ContentType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := knownTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if i := strings.IndexByte(t, ';'); i >= 0 {
			t = t[:i]
		}
		return strings.TrimSpace(t)
	}
	return "application/octet-stream"
}
