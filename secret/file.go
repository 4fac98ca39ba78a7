package secret

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider resolves "secretref:file:/path" by reading the file, the way
// container runtimes mount secrets. Trailing newlines are trimmed.
type FileProvider struct {
	// Root, when set, confines references to files below it.
	Root string
}

// NewFileProvider creates a provider reading files below root.
// An empty root allows any absolute path.
func NewFileProvider(root string) *FileProvider {
	return &FileProvider{Root: root}
}

func (p *FileProvider) Name() string { return "file" }

// Resolve reads the file named by ref.
func (p *FileProvider) Resolve(ctx context.Context, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Clean(ref)
	if !filepath.IsAbs(path) {
		return "", fmt.Errorf("secret file %q: path must be absolute", ref)
	}
	if p.Root != "" {
		rel, err := filepath.Rel(filepath.Clean(p.Root), path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("secret file %q: outside %s", ref, p.Root)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: file %s", ErrSecretNotFound, path)
		}
		return "", fmt.Errorf("read secret file: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func (p *FileProvider) Close() error { return nil }
