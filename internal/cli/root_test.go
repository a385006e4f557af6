package cli

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/photo-mosaic/internal/config"
	merrors "github.com/ironsheep/photo-mosaic/internal/errors"
	"github.com/ironsheep/photo-mosaic/internal/imaging"
)

func writeSolidPNG(t *testing.T, path string, width, height int, c color.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestSetVersion(t *testing.T) {
	old := [3]string{version, commit, date}
	t.Cleanup(func() { SetVersion(old[0], old[1], old[2]) })

	SetVersion("1.0.0", "abc123", "2024-01-01")
	assert.Equal(t, "1.0.0", version)
	assert.Equal(t, "abc123", commit)
	assert.Equal(t, "2024-01-01", date)
}

func TestApplyFlags(t *testing.T) {
	set := map[string]bool{"width": true, "tilt": true, "ratio": true, "color-space": true, "seed": true}
	changed := func(name string) bool { return set[name] }

	cfg := config.Default()
	f := flags{width: 800, height: 1, tilt: 0, ratio: "2:3", colorSpace: "lab", seed: 9}
	require.NoError(t, applyFlags(&cfg, f, changed))

	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 4819, cfg.Height, "unchanged flags keep config values")
	assert.Equal(t, 0, cfg.Tilt)
	assert.Equal(t, []int{2, 3}, cfg.TileRatio)
	assert.Equal(t, "lab", cfg.ColorSpace)
	assert.Equal(t, uint64(9), cfg.Seed)
}

func TestApplyFlags_Invalid(t *testing.T) {
	cfg := config.Default()
	err := applyFlags(&cfg, flags{redundancy: 0.5}, func(name string) bool { return name == "redundancy" })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redundancy")
}

func TestLoggerFromContext(t *testing.T) {
	assert.NotNil(t, loggerFromContext(context.Background()))

	var buf bytes.Buffer
	logger := newLogger(&buf, charmlog.InfoLevel)
	ctx := withLogger(context.Background(), logger)
	assert.Same(t, logger, loggerFromContext(ctx))

	newProgress(logger).done("finished", "items", 3)
	assert.Contains(t, buf.String(), "finished")
	assert.Contains(t, buf.String(), "items=3")
}

func TestRootCommand_Args(t *testing.T) {
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"only-one"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestRootCommand_BuildsMosaic(t *testing.T) {
	t.Setenv(config.EnvStems, "")
	root := t.TempDir()
	photo := filepath.Join(root, "photo.png")
	writeSolidPNG(t, photo, 30, 40, color.NRGBA{200, 100, 50, 255})
	for i := 0; i < 4; i++ {
		writeSolidPNG(t, filepath.Join(root, "tiles", fmt.Sprintf("%d.png", i)), 3, 4,
			color.NRGBA{uint8(60 * i), 80, 120, 255})
	}
	out := filepath.Join(root, "out.png")

	var logs bytes.Buffer
	cmd := newRootCommand(&logs)
	cmd.SetArgs([]string{
		photo, filepath.Join(root, "tiles"),
		"-o", out,
		"--width", "120", "--height", "160",
		"--tilt", "0", "--seed", "5", "--workers", "2",
		"-v",
	})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	img, err := imaging.NewImageCache().Load(out)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(120, 160), img.Bounds().Size())
	assert.Contains(t, logs.String(), "mosaic complete")
	assert.Contains(t, logs.String(), "no config file found")
}

func TestRootCommand_ConfigFile(t *testing.T) {
	root := t.TempDir()
	cfgPath := filepath.Join(root, "mosaic.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("tilt = 99\n"), 0o644))

	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetArgs([]string{"photo.png", "tiles", "--config", cfgPath})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.True(t, merrors.Is(err, merrors.ErrCodeConfiguration))
	assert.Contains(t, err.Error(), "tilt")
}

func TestServeCommand(t *testing.T) {
	t.Setenv(config.EnvStems, "")
	var out bytes.Buffer
	cmd := newRootCommand(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"))
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"serve"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":1,"result":{}}`, strings.TrimSpace(out.String()))
}
