package e2e_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/boardgametracker/internal/model"
	"github.com/mcoot/boardgametracker/internal/testutil/fakeapi"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	configFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "bgtrack-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/bgtrack")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		configFile: filepath.Join(t.TempDir(), "config.yaml"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--config", r.configFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Env = append(os.Environ(), "BGTRACK_SERVER=", "BGTRACK_OUTPUT=", "BGTRACK_TIMEOUT=")
	output, err := cmd.Output()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

func exitCode(err error) int {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return 0
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	api := fakeapi.New()
	cli := newCLIRunner(t, api.Start(t))

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_BggImport(t *testing.T) {
	api := fakeapi.New()
	api.AddBggGame(174430, model.Game{Title: "Gloomhaven"})
	cli := newCLIRunner(t, api.Start(t))

	output, err := cli.run("game", "import", "174430", "--scoring")
	require.NoError(t, err, "output: %s", output)

	var imported model.SearchResult[model.Game]
	require.NoError(t, json.Unmarshal([]byte(output), &imported))
	assert.Equal(t, model.ResultSuccess, imported.State)
	require.NotNil(t, imported.Model)

	// The imported game is immediately visible
	output, err = cli.run("game", "get", strconv.Itoa(int(imported.Model.ID)))
	require.NoError(t, err, "output: %s", output)
	var game model.Game
	require.NoError(t, json.Unmarshal([]byte(output), &game))
	assert.Equal(t, "Gloomhaven", game.Title)

	// A second import reports the duplicate and fails
	output, err = cli.run("game", "import", "174430")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	var duplicate model.SearchResult[model.Game]
	require.NoError(t, json.Unmarshal([]byte(output), &duplicate))
	assert.Equal(t, model.ResultDuplicate, duplicate.State)
	assert.Nil(t, duplicate.Model)
}

func TestCLI_SessionFlow(t *testing.T) {
	api := fakeapi.New()
	game := api.AddGame(model.Game{Title: "Azul", HasScoring: true})
	alice := api.AddPlayer(model.Player{Name: "Alice"})
	bob := api.AddPlayer(model.Player{Name: "Bob"})
	cli := newCLIRunner(t, api.Start(t))

	start := time.Date(2024, 3, 2, 19, 0, 0, 0, time.UTC)
	output, err := cli.run("session", "add",
		"--game", strconv.Itoa(int(game.ID)),
		"--new-location", "Kitchen table",
		"--start", start.Format("2006-01-02T15:04"),
		"--minutes", "40",
		"--player", strconv.Itoa(int(alice.ID))+":61:won",
		"--player", strconv.Itoa(int(bob.ID))+":58",
	)
	require.NoError(t, err, "output: %s", output)

	var session model.Session
	require.NoError(t, json.Unmarshal([]byte(output), &session))
	assert.Equal(t, []model.PlayerID{alice.ID}, session.Winners())

	output, err = cli.run("game", "stats", strconv.Itoa(int(game.ID)))
	require.NoError(t, err, "output: %s", output)
	var stats model.GameStatistics
	require.NoError(t, json.Unmarshal([]byte(output), &stats))
	assert.Equal(t, 1, stats.PlayCount)
	assert.Equal(t, 40, stats.TotalPlayedTime)
	require.NotNil(t, stats.HighScore)
	assert.Equal(t, 61.0, *stats.HighScore)

	output, err = cli.run("location", "list")
	require.NoError(t, err, "output: %s", output)
	var locations []model.Location
	require.NoError(t, json.Unmarshal([]byte(output), &locations))
	require.Len(t, locations, 1)
	assert.Equal(t, "Kitchen table", locations[0].Name)

	output, err = cli.run("session", "delete", strconv.Itoa(int(session.ID)))
	require.NoError(t, err, "output: %s", output)

	_, err = cli.run("session", "get", strconv.Itoa(int(session.ID)))
	require.Error(t, err)
}

func TestCLI_UnreachableBackend(t *testing.T) {
	api := fakeapi.New()
	cli := newCLIRunner(t, api.Start(t))
	cli.serverURL = "http://127.0.0.1:1"

	output, err := cli.run("--timeout", "1s", "health")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "unavailable", resp.Status)
}
