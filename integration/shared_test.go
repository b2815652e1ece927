//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedDebriefPath holds the path to a shared debrief binary built once for all tests.
	sharedDebriefPath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// surveyCSV is a small debrief export with two partners, one blank rating,
// one out-of-range rating and one theme spelled two ways.
const surveyCSV = `Session Date,Partner,Pressure,Challenge,Obstacle,Relevance,Support,Urgency
2024-01-01,Acme,Talent,Delegation,Time,5,4,3
2024-01-01,Acme,talent ,Focus,Budget,4,4,2
2024-02-01,Acme,Budget,Delegation,Time,3,5,9
2024-01-15,Beta,Growth,Hiring,Politics,2,3,5
2024-01-22,Beta,Talent,Hiring,Time,4,,5
`

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	// Run all tests
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getDebriefBinary returns the path to the debrief binary, building it once if needed.
func getDebriefBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		// Create a temp directory for the binary
		var err error
		tempDir, err = os.MkdirTemp("", "debrief-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		debriefPath := filepath.Join(tempDir, "debrief")
		buildCmd := exec.Command("go", "build", "-o", debriefPath, ".")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		err = buildCmd.Run()
		if err != nil {
			panic(fmt.Sprintf("failed to build debrief: %v", err))
		}

		sharedDebriefPath = debriefPath
	})

	return sharedDebriefPath
}

// writeSurvey writes the fixture export into a fresh temp dir.
func writeSurvey(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "debriefs.csv")
	require.NoError(t, os.WriteFile(path, []byte(surveyCSV), 0o644))
	return path
}

// debriefCommand prepares a debrief invocation that runs in dir.
func debriefCommand(dir string, args ...string) *exec.Cmd {
	cmd := exec.Command(getDebriefBinary(), args...)
	cmd.Dir = dir
	return cmd
}
