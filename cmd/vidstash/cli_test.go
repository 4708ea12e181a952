package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/vidstash/internal/download"
)

// testEnv is a catalog server plus a config pointing at it.
type testEnv struct {
	server     *httptest.Server
	configPath string
	videosDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/videos.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `[
			{"id":"1","title":"Mock video 1","duration":"1:23","author":"Fake author 01","videoUrl":"%[1]s/media/video_01.mp4"},
			{"id":"2","title":"Cooking with Fire","duration":"4:56","author":"Fake author 02","videoUrl":"%[1]s/media/missing.mp4"}
		]`, srv.URL)
	})
	mux.HandleFunc("/media/video_01.mp4", func(w http.ResponseWriter, r *http.Request) {
		body := strings.Repeat("v", 20000)
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		_, _ = w.Write([]byte(body))
	})

	tmp := t.TempDir()
	videosDir := filepath.Join(tmp, "videos")
	configPath := filepath.Join(tmp, "config.toml")
	content := fmt.Sprintf(`
[storage]
dir = %q

[database]
path = %q

[catalog]
endpoint = %q

[events]
persist = true

[log]
level = "error"
`, videosDir, filepath.Join(tmp, "vidstash.db"), srv.URL+"/videos.json")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	return &testEnv{server: srv, configPath: configPath, videosDir: videosDir}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...)...)
}

// resetFlags restores every flag to its default; cobra keeps parsed values
// between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestCLI_Version(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "vidstash dev\n", out)
}

func TestCLI_ListSearchShow(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Mock video 1")
	assert.Contains(t, out, "Cooking with Fire")
	assert.Contains(t, out, "Not downloaded")

	out, err = env.run(t, "search", "cooking")
	require.NoError(t, err)
	assert.Contains(t, out, "Cooking with Fire")
	assert.NotContains(t, out, "Mock video 1")

	out, err = env.run(t, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Fake author 01")
	assert.Contains(t, out, env.server.URL+"/media/video_01.mp4")

	_, err = env.run(t, "show", "42")
	assert.Error(t, err)
}

func TestCLI_DownloadHistoryDelete(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "download", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "downloaded Mock video 1")

	stored := filepath.Join(env.videosDir, "video_01.mp4")
	info, err := os.Stat(stored)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), info.Size())

	out, err = env.run(t, "download", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "already downloaded")

	out, err = env.run(t, "show", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "file://"+stored)

	out, err = env.run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "completed")

	out, err = env.run(t, "--json", "history", "--video", "1")
	require.NoError(t, err)
	var transfers []struct{ ID string }
	require.NoError(t, json.Unmarshal([]byte(out), &transfers))
	require.Len(t, transfers, 1)

	out, err = env.run(t, "history", "show", transfers[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Status:   completed")
	assert.Contains(t, out, "File:     video_01.mp4")
	assert.Contains(t, out, "Took:")

	out, err = env.run(t, "events", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "download.progressed")
	assert.Contains(t, out, "100%")

	out, err = env.run(t, "events", "--video", "1", "--since", "1h")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent Events (1)", "only the completion is persisted")

	out, err = env.run(t, "events", "--video", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "No events")

	out, err = env.run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1 stored videos")
	assert.Contains(t, out, "video_01.mp4")

	out, err = env.run(t, "history", "rm", transfers[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "removed "+transfers[0].ID)

	_, err = env.run(t, "history", "show", transfers[0].ID)
	assert.ErrorIs(t, err, download.ErrNotFound)

	out, err = env.run(t, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted local copy")
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	out, err = env.run(t, "delete", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "not downloaded")
}

func TestCLI_DownloadServerError(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "download", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The video could not be downloaded")
	assert.Contains(t, err.Error(), "Server error 404")

	out, err := env.run(t, "history", "--status", "failed")
	require.NoError(t, err)
	assert.Contains(t, out, "Server error 404")
}

func TestCLI_ListOffline(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "list")
	require.NoError(t, err)

	env.server.Close()
	out, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Mock video 1")
}

func TestCLI_Cache(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "list")
	require.NoError(t, err)

	out, err := env.run(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1 entries")

	out, err = env.run(t, "cache", "prune")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 0 cache entries")

	out, err = env.run(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared cached catalog")

	env.server.Close()
	_, err = env.run(t, "list")
	assert.Error(t, err, "nothing cached to fall back on")
}

func TestCLI_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vidstash", "config.toml")

	out, err := runCLI(t, "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	_, err = runCLI(t, "init", path)
	assert.Error(t, err, "refuses to overwrite")

	_, err = runCLI(t, "init", "--force", path)
	assert.NoError(t, err)
}

func TestCLI_JSON(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "--json", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"state": "not_downloaded"`)
	assert.Contains(t, out, `"title": "Mock video 1"`)
}
