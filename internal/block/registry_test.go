package block

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func meta(id, source string, kind Kind) Metadata {
	return Metadata{BlockID: id, SourceID: source, Kind: kind, Label: source}
}

func TestRegistry_AddPreservesOrder(t *testing.T) {
	r := NewRegistry()
	r.Add(meta("b1", "/a.go", KindFileContent))
	r.Add(meta("b2", "/b.go", KindFileContent))
	r.Add(meta("b3", "tree", KindFileTree))

	got := r.List()
	want := []Metadata{
		meta("b1", "/a.go", KindFileContent),
		meta("b2", "/b.go", KindFileContent),
		meta("b3", "tree", KindFileTree),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	r.Add(meta("b1", "/a.go", KindFileContent))
	r.Add(meta("b2", "/b.go", KindFileContent))

	if !r.Remove("b1") {
		t.Error("Remove(b1) = false, want true")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
	// Removing an absent id is a no-op.
	if r.Remove("b1") {
		t.Error("second Remove(b1) = true, want false")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d after no-op remove, want 1", r.Len())
	}
}

func TestRegistry_RemoveBatch(t *testing.T) {
	r := NewRegistry()
	r.Add(meta("a", "/a", KindFileContent))
	r.Add(meta("b", "/b", KindFileContent))
	r.Add(meta("c", "/c", KindFileContent))

	if n := r.RemoveBatch([]string{"b", "nope"}); n != 1 {
		t.Errorf("RemoveBatch removed %d, want 1", n)
	}
	got := r.List()
	if len(got) != 2 || got[0].BlockID != "a" || got[1].BlockID != "c" {
		t.Errorf("List() = %+v, want [a c]", got)
	}
}

func TestRegistry_IsDuplicateSource(t *testing.T) {
	r := NewRegistry()
	r.Add(meta("b1", "/x.ts", KindFileContent))

	if !r.IsDuplicateSource("/x.ts") {
		t.Error("IsDuplicateSource(/x.ts) = false, want true")
	}
	if r.IsDuplicateSource("/y.ts") {
		t.Error("IsDuplicateSource(/y.ts) = true, want false")
	}
	r.Remove("b1")
	if r.IsDuplicateSource("/x.ts") {
		t.Error("IsDuplicateSource(/x.ts) after removal = true, want false")
	}
}

func TestKind_TagName(t *testing.T) {
	cases := []struct {
		kind Kind
		want string
	}{
		{KindFileContent, TagFileContents},
		{KindFolderContent, TagFileContents},
		{KindCodebase, TagFileContents},
		{KindFileTree, TagFileTree},
		{KindSnippet, TagCodeSnippet},
		{KindDiagnostics, TagWorkspaceProblems},
	}
	for _, tc := range cases {
		if got := tc.kind.TagName(); got != tc.want {
			t.Errorf("%v.TagName() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}
