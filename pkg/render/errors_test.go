package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-uibuilder/pkg/render"
	"github.com/goliatone/go-uibuilder/pkg/schema"
)

func TestLocateIssue(t *testing.T) {
	t.Parallel()

	page := schema.UISchema{Components: []schema.Component{
		{Type: schema.TypeText, ID: "title", Text: &schema.TextProps{Variant: schema.VariantH1, Content: "Hi"}},
		{Type: schema.TypeForm, ID: "signup", Form: &schema.FormProps{Fields: []schema.ComponentField{
			{Label: "Email", Name: "email", Type: schema.FieldEmail},
			{Label: "Age", Name: "age", Type: schema.FieldNumber},
		}}},
	}}

	cases := []struct {
		path string
		want render.IssueLocation
		ok   bool
	}{
		{path: "components.0", want: render.IssueLocation{Index: 0, ComponentID: "title"}, ok: true},
		{path: "components.0.props.variant", want: render.IssueLocation{Index: 0, ComponentID: "title", Prop: "variant"}, ok: true},
		{path: "components.1.props.fields.1.name", want: render.IssueLocation{Index: 1, ComponentID: "signup", Prop: "fields", Field: "age"}, ok: true},
		{path: "#/components/1/props/fields/0/type", want: render.IssueLocation{Index: 1, ComponentID: "signup", Prop: "fields", Field: "email"}, ok: true},
		{path: "components[1].props.title", want: render.IssueLocation{Index: 1, ComponentID: "signup", Prop: "title"}, ok: true},
		{path: "components.1.props.fields.9", want: render.IssueLocation{Index: 1, ComponentID: "signup", Prop: "fields"}, ok: true},
		{path: "components.5", ok: false},
		{path: "components", ok: false},
		{path: "", ok: false},
	}

	for _, tc := range cases {
		got, ok := render.LocateIssue(page, tc.path)
		if ok != tc.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tc.path, tc.ok, ok)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Fatalf("%q: location mismatch (-want +got):\n%s", tc.path, diff)
		}
	}
}

func TestMergeMessages(t *testing.T) {
	t.Parallel()

	merged := render.MergeMessages([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged messages mismatch (-want +got):\n%s", diff)
	}
}
