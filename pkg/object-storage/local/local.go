// Package local keeps artifacts on the local disk and serves them under a
// static URL prefix. It backs development setups and tests.
package local

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const NAME = "local"

var ErrForeignURL = errors.New("url is not served by this store")

type Local struct {
	dir     string
	baseURL string
}

// New stores files under dir and returns URLs rooted at baseURL,
// for example "http://localhost:33033/static".
func New(dir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Local{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (l *Local) Put(ctx context.Context, data []byte, name, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		name = "file"
	}
	key := fmt.Sprintf("%s-%s", uuid.NewString(), name)

	if err := os.WriteFile(filepath.Join(l.dir, key), data, 0o644); err != nil {
		return "", err
	}
	return l.baseURL + "/" + key, nil
}

func (l *Local) Get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key, ok := strings.CutPrefix(rawURL, l.baseURL+"/")
	if !ok || key == "" || strings.ContainsAny(key, "/\\") {
		return nil, ErrForeignURL
	}
	return os.ReadFile(filepath.Join(l.dir, key))
}
