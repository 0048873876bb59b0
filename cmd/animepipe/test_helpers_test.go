package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kprabhasreddy/anime-transcoding-pipeline/internal/testsupport"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	spoolDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	dataDir := filepath.Join(base, "data")
	spoolDir := filepath.Join(base, "spool")
	logDir := filepath.Join(base, "logs")

	configPath := filepath.Join(base, "config.toml")
	document := fmt.Sprintf(`[paths]
data_dir = %q
spool_dir = %q
log_dir = %q

[pipeline]
profile_version = "v1.0"
enable_h265 = true
enable_dash = true
input_bucket = "test-mezzanine"
output_bucket = "test-delivery"

[transcoder]
queue_arn = "arn:aws:mediaconvert:us-west-2:000000000000:queues/test"
role_arn = "arn:aws:iam::000000000000:role/test-mediaconvert"
`, dataDir, spoolDir, logDir)
	if err := os.WriteFile(configPath, []byte(document), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{baseDir: base, configPath: configPath, spoolDir: spoolDir}
}

// runCLI executes the root command with args against the test config and
// returns combined stdout output.
func (env *cliTestEnv) runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (env *cliTestEnv) writeManifest(t *testing.T, manifestID string) string {
	t.Helper()
	return testsupport.WriteManifestXML(t, env.baseDir, manifestID)
}
