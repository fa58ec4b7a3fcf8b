package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCode(t *testing.T) {
	assert.Equal(t, "ACME", ClientCode("Acme Holdings Inc."))
	assert.Equal(t, "BETAWORKS", ClientCode("  Beta-Works Trading  "))
	assert.Equal(t, "CAFE", ClientCode("Café Royale"))
	assert.Equal(t, "ABCDEFGHIJ", ClientCode("abcdefghijklmnop Corp"))
	assert.Equal(t, "CLIENT", ClientCode(""))
	assert.Equal(t, "CLIENT", ClientCode("***"))
}

func TestInvoicePath(t *testing.T) {
	assert.Equal(t, "invoices/ACME/OFC00000220.pdf", InvoicePath("Acme Holdings", "OFC00000220"))
}

func TestLocalStoreSave(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStore(root)

	rel, err := store.Save(context.Background(), "invoices/ACME/OFC00000220.pdf", strings.NewReader("pdfdata"))
	require.NoError(t, err)
	assert.Equal(t, "invoices/ACME/OFC00000220.pdf", rel)

	data, err := os.ReadFile(filepath.Join(root, "invoices", "ACME", "OFC00000220.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "pdfdata", string(data))
}

func TestLocalStoreSaveCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalStore(t.TempDir()).Save(ctx, "invoices/X/a.pdf", strings.NewReader("x"))
	assert.Error(t, err)
}
