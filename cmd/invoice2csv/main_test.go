package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice2csv/internal/repository"
)

func TestCloseArchiveNilIsNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		closeArchive(nil, slog.Default())
	})
}

func TestCloseArchiveClosesQuietly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	arch, err := repository.Open(":memory:", logger)
	require.NoError(t, err)

	closeArchive(arch, logger)
	assert.Empty(t, buf.String())

	// a repeat close on error paths stays safe
	assert.NotPanics(t, func() { closeArchive(arch, logger) })
}
