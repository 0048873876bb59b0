package main

import (
	"encoding/json"
	"strings"
	"testing"
)

func submitForToken(t *testing.T, env *cliTestEnv, manifestID string) string {
	t.Helper()

	manifestPath := env.writeManifest(t, manifestID)
	out, err := env.runCLI(t, "submit", manifestPath, "--json")
	if err != nil {
		t.Fatalf("submit: %v\n%s", err, out)
	}
	var result map[string]any
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("parse submit output: %v", err)
	}
	token, _ := result["token"].(string)
	if token == "" {
		t.Fatal("submit returned no token")
	}
	return token
}

func TestRecordsListAndShow(t *testing.T) {
	env := setupCLITestEnv(t)
	submitForToken(t, env, "cli-rec-001")

	out, err := env.runCLI(t, "records", "list")
	if err != nil {
		t.Fatalf("records list: %v\n%s", err, out)
	}
	if !strings.Contains(out, "cli-rec-001") || !strings.Contains(out, "PENDING") {
		t.Errorf("list output missing pending record:\n%s", out)
	}

	out, err = env.runCLI(t, "records", "show", "cli-rec-001")
	if err != nil {
		t.Fatalf("records show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "cli-rec-001") {
		t.Errorf("show output missing record:\n%s", out)
	}

	out, err = env.runCLI(t, "records", "show", "no-such-manifest")
	if err != nil {
		t.Fatalf("records show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No records") {
		t.Errorf("show output should report absence:\n%s", out)
	}
}

func TestRecordsMarkLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	token := submitForToken(t, env, "cli-rec-002")

	out, err := env.runCLI(t, "records", "mark", token, "submitted", "--job-id", "mc-job-42")
	if err != nil {
		t.Fatalf("mark submitted: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Record marked SUBMITTED") {
		t.Errorf("mark output = %s", out)
	}

	out, err = env.runCLI(t, "records", "mark", "deadbeef", "complete")
	if err != nil {
		t.Fatalf("mark unknown: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No transition") {
		t.Errorf("mark output = %s", out)
	}

	if out, err := env.runCLI(t, "records", "mark", token, "bogus"); err == nil {
		t.Fatalf("unknown status should be rejected:\n%s", out)
	}

	out, err = env.runCLI(t, "records", "show", "cli-rec-002")
	if err != nil {
		t.Fatalf("records show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "SUBMITTED") || !strings.Contains(out, "mc-job-42") {
		t.Errorf("record should carry the new status and job id:\n%s", out)
	}
}

func TestRecordsStatsAndPurge(t *testing.T) {
	env := setupCLITestEnv(t)
	submitForToken(t, env, "cli-rec-003")

	out, err := env.runCLI(t, "records", "stats")
	if err != nil {
		t.Fatalf("records stats: %v\n%s", err, out)
	}
	if !strings.Contains(out, "PENDING") {
		t.Errorf("stats output missing status counts:\n%s", out)
	}

	out, err = env.runCLI(t, "records", "purge")
	if err != nil {
		t.Fatalf("records purge: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Purged 0 expired record(s)") {
		t.Errorf("purge output = %s", out)
	}
}
