package validation

import (
	"strings"
	"testing"
)

func TestLintValidDocument(t *testing.T) {
	t.Parallel()

	res := Lint([]byte(`{"components": [{"type": "text", "id": "t", "props": {"variant": "p", "content": "x"}}]}`))
	if !res.Valid || len(res.Issues) != 0 {
		t.Fatalf("expected valid document, got %+v", res)
	}
}

func TestLintCollectsMultipleIssues(t *testing.T) {
	t.Parallel()

	res := Lint([]byte(`{"components": [
		{"type": "text", "id": "t", "props": {"variant": "h9", "content": 3}},
		{"type": "image", "id": "i", "props": {"src": "/a.png", "alt": "A", "width": "wide"}}
	]}`))
	if res.Valid {
		t.Fatal("expected invalid document")
	}
	if len(res.Issues) < 3 {
		t.Fatalf("expected at least 3 issues, got %+v", res.Issues)
	}

	var sawWidth bool
	for _, issue := range res.Issues {
		if issue.Field == "components.1.props.width" {
			sawWidth = true
			if issue.Path != "#/components/1/props/width" {
				t.Fatalf("unexpected pointer %q", issue.Path)
			}
		}
	}
	if !sawWidth {
		t.Fatalf("expected width issue, got %+v", res.Issues)
	}
}

func TestLintReportsDuplicateFieldNames(t *testing.T) {
	t.Parallel()

	res := Lint([]byte(`{"components": [{"type": "form", "id": "f", "props": {"fields": [
		{"label": "A", "name": "x", "type": "text"},
		{"label": "B", "name": "x", "type": "text"}
	]}}]}`))
	if res.Valid || len(res.Issues) != 1 {
		t.Fatalf("expected one issue, got %+v", res)
	}
	if !strings.Contains(res.Issues[0].Message, "Duplicate field name") {
		t.Fatalf("unexpected message %q", res.Issues[0].Message)
	}
}

func TestLintUnparseableDocument(t *testing.T) {
	t.Parallel()

	res := Lint([]byte(""))
	if res.Valid || len(res.Issues) != 1 {
		t.Fatalf("expected a single parse issue, got %+v", res)
	}
}
