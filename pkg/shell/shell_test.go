package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3d91ll/tempchart/pkg/config"
	cerrors "github.com/r3d91ll/tempchart/pkg/errors"
	"github.com/r3d91ll/tempchart/pkg/pipeline"
)

// mockPrompter returns a fixed answer and records the prompts it was shown.
type mockPrompter struct {
	response bool
	err      error
	prompts  []string
}

func (m *mockPrompter) Confirm(message string) (bool, error) {
	m.prompts = append(m.prompts, message)
	if m.err != nil {
		return false, m.err
	}
	return m.response, nil
}

func newTestShell(t *testing.T, prompter Prompter) (*Shell, *bytes.Buffer, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Output.Root = root

	var out bytes.Buffer
	s, err := newShell(cfg, Config{
		ConfigPath: filepath.Join(root, "config.yaml"),
		Factory: func(c *config.Config) (*pipeline.Pipeline, error) {
			return pipeline.FromConfig(c, pipeline.Options{})
		},
		Prompter: prompter,
		Out:      &out,
	})
	require.NoError(t, err)
	return s, &out, root
}

func TestNewShell_RequiresFactory(t *testing.T) {
	_, err := newShell(config.Default(), Config{})
	assert.Error(t, err, "expected error without a factory")
}

func TestGenerate(t *testing.T) {
	s, out, root := newTestShell(t, nil)

	require.NoError(t, s.handleCommand(context.Background(), "/generate"))

	want := filepath.Join(root, "PDF", "test.pdf")
	assert.FileExists(t, want)
	got := out.String()
	assert.Contains(t, got, "✓ PDF generated successfully!")
	assert.Contains(t, got, "  "+want+"\n", "missing location line")
}

func TestGenerate_FailureIsReturned(t *testing.T) {
	s, out, root := newTestShell(t, nil)
	blocked := filepath.Join(root, "PDF")
	require.NoError(t, os.WriteFile(blocked, []byte("file, not dir"), 0644))

	err := s.handleCommand(context.Background(), "/generate")
	require.True(t, cerrors.IsCode(err, cerrors.ErrOutputDirCreateFailed), "got %v", err)
	assert.Contains(t, out.String(), "✗ Chart generation failed")
}

func TestPreset(t *testing.T) {
	s, out, _ := newTestShell(t, nil)
	ctx := context.Background()

	require.NoError(t, s.handleCommand(ctx, "/preset"))
	assert.Contains(t, out.String(), "Preset: wide (available: compact, wide)")

	require.NoError(t, s.handleCommand(ctx, "/preset compact"))
	assert.Equal(t, "compact", s.cfg.Chart.Preset)
	assert.Equal(t, 1200.0, s.pipe.Layout().PageWidth, "pipeline not rebuilt")

	err := s.handleCommand(ctx, "/preset poster")
	require.True(t, cerrors.IsCode(err, cerrors.ErrChartUnknownPreset), "got %v", err)
	assert.Equal(t, "compact", s.cfg.Chart.Preset, "failed switch must keep the previous preset")
}

func TestFormat(t *testing.T) {
	s, _, root := newTestShell(t, nil)
	ctx := context.Background()

	require.NoError(t, s.handleCommand(ctx, "/format SVG"))
	assert.Equal(t, "svg", s.cfg.Output.Format)
	require.NoError(t, s.handleCommand(ctx, "/generate"))
	assert.FileExists(t, filepath.Join(root, "PDF", "test.svg"))

	err := s.handleCommand(ctx, "/format gif")
	assert.True(t, cerrors.IsCode(err, cerrors.ErrRenderUnknownFormat), "got %v", err)
}

func TestLayout(t *testing.T) {
	s, out, _ := newTestShell(t, nil)
	require.NoError(t, s.handleCommand(context.Background(), "/layout"))
	got := out.String()
	for _, want := range []string{"Layout (wide):", "Page:        2300 x 1320", "Days:        30", "Range:       32.00 to 42.00", "Orientation: descending"} {
		assert.Contains(t, got, want)
	}
}

func TestConfig_HidesSecret(t *testing.T) {
	s, out, _ := newTestShell(t, nil)
	s.cfg.Storage.SecretKey = "hunter2"

	require.NoError(t, s.handleCommand(context.Background(), "/config"))
	assert.NotContains(t, out.String(), "hunter2", "secret key printed")
	assert.Contains(t, out.String(), "preset: wide")
	assert.Equal(t, "hunter2", s.cfg.Storage.SecretKey, "printing must not change the live config")
}

func TestSave(t *testing.T) {
	ctx := context.Background()

	t.Run("new file", func(t *testing.T) {
		prompter := &mockPrompter{}
		s, _, root := newTestShell(t, prompter)
		require.NoError(t, s.handleCommand(ctx, "/save"))
		assert.FileExists(t, filepath.Join(root, "config.yaml"))
		assert.Empty(t, prompter.prompts, "no confirmation expected for a new file")
	})

	t.Run("existing file declined", func(t *testing.T) {
		prompter := &mockPrompter{response: false}
		s, out, root := newTestShell(t, prompter)
		path := filepath.Join(root, "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("keep: me\n"), 0644))

		require.NoError(t, s.handleCommand(ctx, "/save"))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "keep: me\n", string(data), "declined save overwrote the file")
		require.NotEmpty(t, prompter.prompts)
		assert.Equal(t, "Overwrite "+path+"?", prompter.prompts[0])
		assert.Contains(t, out.String(), "Save cancelled.")
	})

	t.Run("force skips confirmation", func(t *testing.T) {
		prompter := &mockPrompter{}
		s, _, root := newTestShell(t, prompter)
		path := filepath.Join(root, "other.yaml")
		require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

		require.NoError(t, s.handleCommand(ctx, "/save "+path+" -f"))
		assert.Empty(t, prompter.prompts, "-f must not prompt")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "preset: wide", "file not overwritten")
	})

	t.Run("prompt error", func(t *testing.T) {
		prompter := &mockPrompter{err: errors.New("stdin closed")}
		s, _, root := newTestShell(t, prompter)
		require.NoError(t, os.WriteFile(filepath.Join(root, "config.yaml"), []byte("x"), 0644))

		err := s.handleCommand(ctx, "/save")
		assert.True(t, cerrors.IsCategory(err, cerrors.CategoryCommand), "got %v", err)
	})
}

func TestLast(t *testing.T) {
	s, out, _ := newTestShell(t, nil)
	ctx := context.Background()

	require.NoError(t, s.handleCommand(ctx, "/last"))
	assert.Contains(t, out.String(), "No chart generated yet.")

	require.NoError(t, s.handleCommand(ctx, "/generate"))
	out.Reset()
	require.NoError(t, s.handleCommand(ctx, "/last"))
	got := out.String()
	assert.Contains(t, got, "(ok)")
	assert.Contains(t, got, "Location:")
}

func TestHandleCommand_Errors(t *testing.T) {
	s, _, _ := newTestShell(t, nil)
	ctx := context.Background()

	err := s.handleCommand(ctx, "/frobnicate")
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCommandNotFound), "got %v", err)
	err = s.handleCommand(ctx, "generate")
	assert.True(t, cerrors.IsCode(err, cerrors.ErrCommandNotFound), "missing slash: got %v", err)
	for _, q := range []string{"/quit", "/exit", "/q"} {
		assert.Equal(t, errQuit, s.handleCommand(ctx, q), q)
	}
}

func TestHelp(t *testing.T) {
	s, out, _ := newTestShell(t, nil)
	require.NoError(t, s.handleCommand(context.Background(), "/help"))
	for _, cmd := range commands {
		if cmd == "exit" {
			continue
		}
		assert.Contains(t, out.String(), "/"+cmd)
	}
}

func TestHelp_Command(t *testing.T) {
	s, out, _ := newTestShell(t, nil)
	require.NoError(t, s.handleCommand(context.Background(), "/help save"))
	assert.Contains(t, out.String(), "Usage: /save [path] [-f]")
	assert.NotContains(t, out.String(), "\033[", "help written to a buffer should not be colored")
}
