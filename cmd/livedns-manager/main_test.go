package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/zalando/go-keyring"
	"go.yaml.in/yaml/v3"

	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns"
	"github.com/yuriy-kovalchuk/livedns-manager/internal/livedns/livednstest"
)

// isolate clears every environment source of configuration and swaps the
// keychain for an in-memory one.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(apiKeyEnv, "")
	t.Setenv("LIVEDNS_CONFIG_PATH", writeFile(t, "livedns.yaml", ""))
	t.Setenv("OTEL_EXPORTER", "")
	keyring.MockInit()
}

// execute runs the root command with args and returns what was written to
// stdout and stderr.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	root, g := newRootCommand()
	root.SetOut(&outBuf)
	root.SetErr(&errBuf)
	root.SetArgs(args)
	err = root.Execute()
	g.shutdown()
	return outBuf.String(), errBuf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRecord_Create(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)
	srv.AddZone("my.com", "uuid-my")

	stdout, _, err := execute(t, "record",
		"--api-key", livednstest.APIKey, "--base-url", srv.URL,
		"--zone", "my.com", "--record", "test", "--type", "A", "--value", "127.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got livedns.Output
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	ttl := 10800
	want := livedns.Output{
		Changed: true,
		Result: &livedns.OutputResult{Record: &livedns.Record{
			Name: "test", Type: "A", TTL: &ttl, Values: []string{"127.0.0.1"}, Zone: "my.com",
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"POST /zones/uuid-my/records"}, srv.MutatingCalls()); diff != "" {
		t.Errorf("mutating calls mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_RepeatedValues(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)

	_, _, err := execute(t, "record",
		"--api-key", livednstest.APIKey, "--base-url", srv.URL,
		"--domain", "my.com", "--record", "txt", "--type", "TXT",
		"--value", `"v=spf1 a, mx -all"`, "--value", `"hello"`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, ok := srv.Lookup("/domains/my.com", "txt", "TXT")
	if !ok {
		t.Fatal("expected record to be stored")
	}
	if diff := cmp.Diff([]string{`"v=spf1 a, mx -all"`, `"hello"`}, stored.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_DeleteOutput(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)
	srv.Seed("/domains/my.com", livedns.RawRecord{Name: "mail", Type: "CNAME", TTL: 300, Values: []string{"www"}})

	stdout, _, err := execute(t, "record",
		"--api-key", livednstest.APIKey, "--base-url", srv.URL,
		"--domain", "my.com", "--record", "mail", "--type", "CNAME", "--state", "absent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "{\n  \"changed\": true\n}\n"; stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
}

func TestRecord_DryRunYAML(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)
	srv.Seed("/domains/my.com", livedns.RawRecord{Name: "www", Type: "A", TTL: 300, Values: []string{"9.9.9.9"}})

	stdout, _, err := execute(t, "record", "-o", "yaml", "--dry-run",
		"--api-key", livednstest.APIKey, "--base-url", srv.URL,
		"--domain", "my.com", "--record", "www", "--type", "A", "--value", "1.2.3.4", "--ttl", "300")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got livedns.Output
	if err := yaml.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, stdout)
	}
	if !got.Changed || got.Result == nil || got.Result.Record == nil {
		t.Fatalf("unexpected output %+v", got)
	}
	if diff := cmp.Diff([]string{"1.2.3.4"}, got.Result.Record.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if calls := srv.MutatingCalls(); len(calls) != 0 {
		t.Errorf("dry run issued mutating calls: %v", calls)
	}
}

func TestRecord_ValidationBeforeNetwork(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)

	_, _, err := execute(t, "record", "--base-url", srv.URL, "--record", "www", "--type", "A", "--value", "1.2.3.4")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, want := range []string{"api_key is required", "at least one of zone and domain"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
	if calls := srv.Calls(); len(calls) != 0 {
		t.Errorf("expected no requests, got %v", calls)
	}
}

func TestRecord_ProviderError(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)

	_, _, err := execute(t, "record", "--api-key", "wrong", "--base-url", srv.URL,
		"--domain", "my.com", "--record", "www", "--type", "A", "--value", "1.2.3.4")
	if err == nil || !strings.Contains(err.Error(), "Permission denied") {
		t.Fatalf("expected permission error, got %v", err)
	}
}

func TestFacts_NotFound(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)

	stdout, _, err := execute(t, "facts", "--api-key", livednstest.APIKey, "--base-url", srv.URL,
		"--domain", "my.com", "--record", "ghost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "{\n  \"changed\": false,\n  \"records\": null\n}\n"; stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
}

func TestFacts_List(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)
	srv.Seed("/domains/my.com", livedns.RawRecord{Name: "www", Type: "A", TTL: 300, Values: []string{"1.2.3.4"}})
	srv.Seed("/domains/my.com", livedns.RawRecord{Name: "mail", Type: "MX", TTL: 300, Values: []string{"10 mx.my.com."}})

	stdout, _, err := execute(t, "facts", "--api-key", livednstest.APIKey, "--base-url", srv.URL,
		"--domain", "my.com", "--type", "mx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got livedns.FactsOutput
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, stdout)
	}
	ttl := 300
	want := livedns.FactsOutput{Records: []livedns.Record{
		{Name: "mail", Type: "MX", TTL: &ttl, Values: []string{"10 mx.my.com."}, Domain: "my.com"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestAPIKey_FromConfigFile(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)
	t.Setenv("TEST_LIVEDNS_KEY", livednstest.APIKey)
	cfgPath := writeFile(t, "livedns.yaml", "api_key: ${TEST_LIVEDNS_KEY}\nbase_url: "+srv.URL+"\ntimeout: 5s\n")

	_, _, err := execute(t, "facts", "--config", cfgPath, "--domain", "my.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls := srv.Calls(); len(calls) != 1 {
		t.Errorf("expected one request against the configured base_url, got %v", calls)
	}
}

func TestAPIKey_EnvBeatsConfig(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)
	cfgPath := writeFile(t, "livedns.yaml", "api_key: wrong\n")
	t.Setenv(apiKeyEnv, livednstest.APIKey)

	if _, _, err := execute(t, "facts", "--config", cfgPath, "--base-url", srv.URL, "--domain", "my.com"); err != nil {
		t.Fatalf("expected env key to win, got %v", err)
	}
}

func TestAuth_LoginStatusLogout(t *testing.T) {
	isolate(t)
	srv := livednstest.NewServer(t)

	stdout, _, err := execute(t, "auth", "status")
	if err != nil || !strings.Contains(stdout, "not logged in") {
		t.Fatalf("expected not logged in, got %q (%v)", stdout, err)
	}

	if _, _, err := execute(t, "auth", "login", "--api-key", livednstest.APIKey); err != nil {
		t.Fatalf("login: %v", err)
	}
	stdout, _, _ = execute(t, "auth", "status")
	if !strings.Contains(stdout, "logged in") || strings.Contains(stdout, "not logged in") {
		t.Errorf("expected logged in, got %q", stdout)
	}

	// The keychain is the last fallback for the key.
	if _, _, err := execute(t, "facts", "--base-url", srv.URL, "--domain", "my.com"); err != nil {
		t.Fatalf("expected keychain key to be used, got %v", err)
	}

	stdout, _, err = execute(t, "auth", "logout")
	if err != nil || !strings.Contains(stdout, "Removed API key") {
		t.Fatalf("logout: %q (%v)", stdout, err)
	}
	stdout, _, _ = execute(t, "auth", "logout")
	if !strings.Contains(stdout, "No API key stored") {
		t.Errorf("expected second logout to report nothing stored, got %q", stdout)
	}
}

func TestUnsupportedOutput(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, "facts", "-o", "xml", "--domain", "my.com")
	if err == nil || !strings.Contains(err.Error(), "unsupported output format") {
		t.Fatalf("expected output format error, got %v", err)
	}
}
