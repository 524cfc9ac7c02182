package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestChatCannedAgent(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", `
agents:
  sourcing_agent:
    description: "Sourcing Agent: I find candidates."
`)
	notes := writeFile(t, dir, "notes.txt", "héllo")

	out, err := runCLI(t, "--config", cfgPath, "--log-level", "error",
		"chat", "--agent", "sourcing_agent", "--prompt", "Go devs", "--inline", notes)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	for _, want := range []string{
		"Sourcing Agent: I find candidates.",
		`Responding to: "Go devs"`,
		`Processed file "notes.txt" with 5 characters.`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestChatRemoteAgentUsesDefaultSlot(t *testing.T) {
	var gotFiles []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for _, fh := range r.MultipartForm.File["supporting_documents"] {
				gotFiles = append(gotFiles, fh.Filename)
			}
		}
		_, _ = io.WriteString(w, `{"market_report":"report body"}`)
	}))
	defer upstream.Close()

	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "base_url: "+upstream.URL+"\n")
	doc := writeFile(t, dir, "profile.txt", "Acme profile")

	out, err := runCLI(t, "--config", cfgPath, "--log-level", "error",
		"chat", "--agent", "market_intelligence", "--prompt", "Acme", "--file", doc)
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if strings.TrimSpace(out) != "report body" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(gotFiles) != 1 || gotFiles[0] != "profile.txt" {
		t.Fatalf("upstream got %v", gotFiles)
	}
}

func TestChatUnknownAgentPrintsError(t *testing.T) {
	out, err := runCLI(t, "--log-level", "error", "chat", "--agent", "mystery", "--prompt", "hi")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if !strings.HasPrefix(out, "Error: unknown agent") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAgentsListsDefaults(t *testing.T) {
	out, err := runCLI(t, "--log-level", "error", "agents")
	if err != nil {
		t.Fatalf("agents: %v", err)
	}
	for _, name := range []string{"market_intelligence", "jd_agenet", "interview_report_agent"} {
		if !strings.Contains(out, name) {
			t.Fatalf("agents output missing %s:\n%s", name, out)
		}
	}
}

func TestHistoryDisabledNamesDriver(t *testing.T) {
	_, err := runCLI(t, "--log-level", "error", "history")
	if err == nil {
		t.Fatal("expected error when history is disabled")
	}
	if !strings.Contains(err.Error(), "history.driver") {
		t.Fatalf("error should point at history.driver, got %q", err)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := runCLI(t, "--log-level", "loud", "agents"); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}

func TestReadAttachment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.txt", "x")

	slot, file, err := readAttachment("files="+path, "supporting_documents")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if slot != "files" || file.Name != "a.txt" || string(file.Content) != "x" {
		t.Fatalf("unexpected attachment %s %+v", slot, file)
	}

	slot, _, err = readAttachment(path, "supporting_documents")
	if err != nil || slot != "supporting_documents" {
		t.Fatalf("expected default slot, got %q %v", slot, err)
	}

	if _, _, err := readAttachment(path, ""); err == nil {
		t.Fatal("expected error without slot")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short\ntext"); got != "short text" {
		t.Fatalf("unexpected preview %q", got)
	}
	long := strings.Repeat("a", 100)
	if got := preview(long); len(got) != historyPreviewLen || !strings.HasSuffix(got, "...") {
		t.Fatalf("unexpected long preview %q", got)
	}
}
