package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/previewtheme/pkg/registry"
)

func watcherFixture(t *testing.T) (*SettingsWatcher, string, string) {
	t.Helper()
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"workbench.colorTheme": "None"}`), 0644))

	reg, err := registry.New(nil, "", nil)
	require.NoError(t, err)
	outPath := filepath.Join(t.TempDir(), "markdown.css")
	runner, err := NewRunner(Config{
		Inventory: reg,
		Settings:  FileSettings{Path: settingsPath},
		OutPath:   outPath,
	})
	require.NoError(t, err)

	watcher, err := NewSettingsWatcher(runner, settingsPath, 50*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })
	return watcher, settingsPath, outPath
}

func TestSettingsWatcher_RegeneratesOnChange(t *testing.T) {
	watcher, settingsPath, outPath := watcherFixture(t)
	require.NoError(t, watcher.Start())

	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"workbench.colorTheme": "Other"}`), 0644))

	assert.Eventually(t, func() bool {
		_, err := os.Stat(outPath)
		return err == nil
	}, 3*time.Second, 20*time.Millisecond)
}

// countingSettings records how many cycles read the active theme.
type countingSettings struct {
	reads atomic.Int32
}

func (c *countingSettings) ActiveTheme() (string, error) {
	c.reads.Add(1)
	return "", nil
}

func TestSettingsWatcher_DebounceCollapsesBurst(t *testing.T) {
	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settingsPath, []byte(`{"workbench.colorTheme": "A"}`), 0644))

	settings := &countingSettings{}
	reg, err := registry.New(nil, "", nil)
	require.NoError(t, err)
	runner, err := NewRunner(Config{
		Inventory: reg,
		Settings:  settings,
		OutPath:   filepath.Join(t.TempDir(), "markdown.css"),
	})
	require.NoError(t, err)

	watcher, err := NewSettingsWatcher(runner, settingsPath, 250*time.Millisecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = watcher.Stop() })
	require.NoError(t, watcher.Start())

	// An editor save typically lands as several write events in quick
	// succession; the whole burst must fit in one debounce window.
	for i := 0; i < 5; i++ {
		body := []byte(`{"workbench.colorTheme": "A"}`)
		require.NoError(t, os.WriteFile(settingsPath, body, 0644))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool {
		return settings.reads.Load() >= 1
	}, 3*time.Second, 20*time.Millisecond)

	// No straggler run after the window closes.
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, int32(1), settings.reads.Load())
}

func TestSettingsWatcher_IgnoresSiblingFiles(t *testing.T) {
	watcher, settingsPath, outPath := watcherFixture(t)
	require.NoError(t, watcher.Start())

	sibling := filepath.Join(filepath.Dir(settingsPath), "keybindings.json")
	require.NoError(t, os.WriteFile(sibling, []byte(`[]`), 0644))

	time.Sleep(300 * time.Millisecond)
	_, err := os.Stat(outPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSettingsWatcher_StopIsIdempotent(t *testing.T) {
	watcher, _, _ := watcherFixture(t)
	require.NoError(t, watcher.Start())
	require.NoError(t, watcher.Stop())
	require.NoError(t, watcher.Stop())
}

func TestFileSettings_ActiveTheme(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// editor config
		"workbench.colorTheme": "Nord",
		"editor.fontSize": 14,
	}`), 0644))

	name, err := FileSettings{Path: path}.ActiveTheme()
	require.NoError(t, err)
	assert.Equal(t, "Nord", name)
}

func TestFileSettings_MissingFile(t *testing.T) {
	name, err := FileSettings{Path: filepath.Join(t.TempDir(), "nope.json")}.ActiveTheme()
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestFileSettings_MissingKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"editor.fontSize": 14}`), 0644))

	name, err := FileSettings{Path: path}.ActiveTheme()
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestFileSettings_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0644))

	_, err := FileSettings{Path: path}.ActiveTheme()
	assert.Error(t, err)
}
