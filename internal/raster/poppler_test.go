package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	lookErr  error
	runErr   error
	stderr   []byte
	pages    int
	lookedUp string
	args     []string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	f.lookedUp = file
	if f.lookErr != nil {
		return "", f.lookErr
	}
	return file, nil
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.args = args
	if f.runErr != nil {
		return f.stderr, f.runErr
	}
	prefix := args[len(args)-1]
	for i := 1; i <= f.pages; i++ {
		name := fmt.Sprintf("%s-%02d.png", prefix, i)
		if err := os.WriteFile(name, []byte(fmt.Sprintf("png-%d", i)), 0o600); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func TestPoppler_Rasterize_PageOrder(t *testing.T) {
	runner := &fakeRunner{pages: 12}
	p := NewPopplerWithRunner(PopplerConfig{InstallDir: "/opt/poppler/bin", DPI: 200, TempDir: t.TempDir()}, runner, zerolog.Nop())

	pages, err := p.Rasterize(context.Background(), "/tmp/receipt.pdf")
	require.NoError(t, err)
	require.Len(t, pages, 12)

	assert.Equal(t, filepath.Join("/opt/poppler/bin", "pdftoppm"), runner.lookedUp)
	assert.Equal(t, []string{"-r", "200", "-png", "/tmp/receipt.pdf"}, runner.args[:4])
	for i, pg := range pages {
		assert.Equal(t, i+1, pg.Number)
		assert.Equal(t, fmt.Sprintf("png-%d", i+1), string(pg.PNG))
	}
}

func TestPoppler_Rasterize_ZeroPages(t *testing.T) {
	p := NewPopplerWithRunner(PopplerConfig{TempDir: t.TempDir()}, &fakeRunner{}, zerolog.Nop())

	pages, err := p.Rasterize(context.Background(), "/tmp/empty.pdf")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestPoppler_Rasterize_ToolchainMissing(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	runner := &fakeRunner{lookErr: exec.ErrNotFound}
	p := NewPopplerWithRunner(PopplerConfig{InstallDir: "/nowhere"}, runner, logger)

	pages, err := p.Rasterize(context.Background(), "/tmp/receipt.pdf")
	assert.Nil(t, pages)
	assert.ErrorIs(t, err, ErrToolchainMissing)
	assert.Contains(t, buf.String(), `"level":"fatal"`)
	assert.Contains(t, buf.String(), "toolchain_missing")
}

func TestPoppler_Rasterize_ConversionFailure(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("exit status 1"), stderr: []byte("Syntax Error")}
	p := NewPopplerWithRunner(PopplerConfig{TempDir: t.TempDir()}, runner, zerolog.Nop())

	_, err := p.Rasterize(context.Background(), "/tmp/receipt.pdf")
	assert.ErrorIs(t, err, ErrConversion)
	assert.NotErrorIs(t, err, ErrToolchainMissing)
}

func TestPoppler_DefaultsDPI(t *testing.T) {
	runner := &fakeRunner{}
	p := NewPopplerWithRunner(PopplerConfig{TempDir: t.TempDir()}, runner, zerolog.Nop())

	_, err := p.Rasterize(context.Background(), "/tmp/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "300", runner.args[1])
	assert.Equal(t, "pdftoppm", runner.lookedUp)
}
