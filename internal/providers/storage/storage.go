// Package storage persists rendered invoice documents on the local
// filesystem under a per-client subdirectory.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
)

// Store writes rendered documents and returns the stored relative path.
type Store interface {
	Save(ctx context.Context, relPath string, r io.Reader) (string, error)
}

type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Save(ctx context.Context, relPath string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return relPath, nil
}

// ClientCode derives the storage directory code for a client: the first word
// of the name reduced to alphanumerics, uppercased, at most 10 characters.
func ClientCode(name string) string {
	first := strings.Fields(strings.TrimSpace(name))
	if len(first) == 0 {
		return "CLIENT"
	}

	code := strings.ReplaceAll(slug.Make(first[0]), "-", "")
	code = strings.ToUpper(code)
	if code == "" {
		return "CLIENT"
	}
	if len(code) > 10 {
		code = code[:10]
	}
	return code
}

// InvoicePath is the storage location convention for a rendered invoice.
func InvoicePath(clientName, invoiceNumber string) string {
	return fmt.Sprintf("invoices/%s/%s.pdf", ClientCode(clientName), invoiceNumber)
}
