package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextInvoiceNumberIncrement(t *testing.T) {
	got, err := NextInvoiceNumber("OFC00000219", "OFC", 8, 219)
	require.NoError(t, err)
	assert.Equal(t, "OFC00000220", got)
}

func TestNextInvoiceNumberSeed(t *testing.T) {
	got, err := NextInvoiceNumber("", "OFC", 8, 219)
	require.NoError(t, err)
	assert.Equal(t, "OFC00000219", got)

	got, err = NextInvoiceNumber("   ", "OFC", 8, 219)
	require.NoError(t, err)
	assert.Equal(t, "OFC00000219", got)
}

func TestNextInvoiceNumberRollsPadding(t *testing.T) {
	got, err := NextInvoiceNumber("OFC00000999", "OFC", 8, 1)
	require.NoError(t, err)
	assert.Equal(t, "OFC00001000", got)
}

func TestNextInvoiceNumberRejectsMalformed(t *testing.T) {
	_, err := NextInvoiceNumber("INV00000219", "OFC", 8, 219)
	assert.Error(t, err)

	_, err = NextInvoiceNumber("OFC219", "OFC", 8, 219)
	assert.Error(t, err)

	_, err = NextInvoiceNumber("OFC0000021X", "OFC", 8, 219)
	assert.Error(t, err)
}
