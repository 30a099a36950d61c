package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const validDoc = `components:
  - type: text
    id: title
    props:
      variant: h2
      content: Hello
`

func TestUsage(t *testing.T) {
	code, _, stderr := runCLI()
	if code != 2 || !strings.Contains(stderr, "templates") {
		t.Fatalf("expected usage on stderr, got %d %q", code, stderr)
	}
	code, _, stderr = runCLI("frobnicate")
	if code != 2 || !strings.Contains(stderr, `unknown command "frobnicate"`) {
		t.Fatalf("unexpected result %d %q", code, stderr)
	}
}

func TestValidateCommand(t *testing.T) {
	good := writeFile(t, "good.yaml", validDoc)
	bad := writeFile(t, "bad.json", `{"components":[{"type":"text","id":"t","props":{"variant":"h2"}}]}`)

	code, stdout, stderr := runCLI("validate", good, bad)
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stdout, "good.yaml: ok") {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	if !strings.Contains(stderr, "bad.json: components.0.props.content: Required") {
		t.Fatalf("unexpected stderr %q", stderr)
	}
}

func TestLintCommand(t *testing.T) {
	bad := writeFile(t, "bad.json", `{"components":[{"type":"text","id":"t","props":{"variant":"h9","content":1}}]}`)
	code, _, stderr := runCLI("lint", bad)
	if code != 1 || !strings.Contains(stderr, "bad.json: components.0.props") {
		t.Fatalf("unexpected lint result %d %q", code, stderr)
	}

	code, stdout, _ := runCLI("lint", writeFile(t, "good.yaml", validDoc))
	if code != 0 || !strings.Contains(stdout, "ok") {
		t.Fatalf("unexpected lint result %d %q", code, stdout)
	}
}

func TestRenderCommand(t *testing.T) {
	doc := writeFile(t, "page.yaml", validDoc)

	code, stdout, stderr := runCLI("render", "-renderer", "json", "-title", "Demo", doc)
	if code != 0 {
		t.Fatalf("render failed: %s", stderr)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["title"] != "Demo" {
		t.Fatalf("unexpected output %v", out)
	}

	target := filepath.Join(t.TempDir(), "page.html")
	code, _, stderr = runCLI("render", "-output", target, doc)
	if code != 0 {
		t.Fatalf("render failed: %s", stderr)
	}
	html, err := os.ReadFile(target)
	if err != nil || !strings.Contains(string(html), "Hello") {
		t.Fatalf("unexpected html %q (%v)", html, err)
	}

	if code, _, _ := runCLI("render", "-renderer", "pdf", doc); code != 2 {
		t.Fatalf("unknown renderer: expected exit 2, got %d", code)
	}
}

func TestExecCommand(t *testing.T) {
	code, stdout, stderr := runCLI("exec", "-values", `{"name":"Ada"}`, "-e", "return { success: `Hi ${name}` };")
	if code != 0 {
		t.Fatalf("exec failed: %s", stderr)
	}
	var outcome map[string]any
	if err := json.Unmarshal([]byte(stdout), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if outcome["kind"] != "success" || outcome["message"] != "Hi Ada" {
		t.Fatalf("unexpected outcome %v", outcome)
	}

	code, stdout, _ = runCLI("exec", "-e", `return { error: "nope" };`)
	if code != 1 || !strings.Contains(stdout, `"failure"`) {
		t.Fatalf("expected failure outcome, got %d %q", code, stdout)
	}

	code, _, stderr = runCLI("exec", "-e", `fetch("https://example.com")`)
	if code != 1 || !strings.Contains(stderr, "rejected") {
		t.Fatalf("expected rejection, got %d %q", code, stderr)
	}

	code, _, stderr = runCLI("exec", "-max-steps", "100", writeFile(t, "loop.js", "while (true) {}"))
	if code != 1 || !strings.Contains(stderr, "limit") {
		t.Fatalf("expected limit failure, got %d %q", code, stderr)
	}
}

func TestTemplatesCommand(t *testing.T) {
	code, stdout, _ := runCLI("templates")
	if code != 0 {
		t.Fatalf("templates failed with %d", code)
	}
	for _, id := range []string{"contact-form", "landing-page", "registration"} {
		if !strings.Contains(stdout, id) {
			t.Fatalf("expected %s in listing:\n%s", id, stdout)
		}
	}

	code, stdout, _ = runCLI("templates", "registration")
	if code != 0 {
		t.Fatalf("export failed with %d", code)
	}
	exported := writeFile(t, "registration.json", stdout)
	if code, _, stderr := runCLI("validate", exported); code != 0 {
		t.Fatalf("exported template does not validate: %s", stderr)
	}

	if code, _, _ := runCLI("templates", "nope"); code != 1 {
		t.Fatalf("expected exit 1 for unknown template, got %d", code)
	}
}
