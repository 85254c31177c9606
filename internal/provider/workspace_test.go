package provider

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ctxweave/internal/block"
)

func newTestWorkspace(t *testing.T) *Workspace {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"main.go":          "package main\n",
		"internal/util.go": "package internal\n",
		"docs/readme.md":   "# hi\n",
		".git/config":      "[core]\n",
		".env":             "SECRET=1\n",
	}
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	w, err := NewWorkspace(root)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestWorkspaceTreeSkipsHidden(t *testing.T) {
	w := newTestWorkspace(t)
	tree, err := w.FileTree(context.Background(), Scope{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(tree.Raw, ".git") || strings.Contains(tree.Raw, ".env") {
		t.Errorf("tree leaked hidden entries:\n%s", tree.Raw)
	}
	want := "docs/readme.md\ninternal/util.go\nmain.go"
	if tree.Raw != want {
		t.Errorf("tree = %q, want %q", tree.Raw, want)
	}
}

func TestWorkspaceFileContent(t *testing.T) {
	w := newTestWorkspace(t)
	c, err := w.FileContent(context.Background(), "main.go")
	if err != nil {
		t.Fatal(err)
	}
	if c.Meta.Kind != block.KindFileContent || c.Meta.Label != "main.go" {
		t.Errorf("unexpected meta: %+v", c.Meta)
	}
	if len(c.Files) != 1 || c.Files[0].Content != "package main\n" || c.Files[0].Language != "go" {
		t.Errorf("unexpected file item: %+v", c.Files)
	}
}

func TestWorkspaceRejectsEscape(t *testing.T) {
	w := newTestWorkspace(t)
	for _, ref := range []string{"../outside", "/etc/passwd", "a/../../x"} {
		if _, err := w.FileContent(context.Background(), ref); err == nil {
			t.Errorf("FileContent(%q) succeeded, want error", ref)
		}
	}
}

func TestWorkspaceFolderContent(t *testing.T) {
	w := newTestWorkspace(t)
	c, err := w.FolderContent(context.Background(), "internal", Scope{})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.Files) != 1 || c.Files[0].Path != "internal/util.go" {
		t.Errorf("unexpected folder files: %+v", c.Files)
	}
	if c.Meta.Label != "internal/" {
		t.Errorf("label = %q, want internal/", c.Meta.Label)
	}

	if _, err := w.FolderContent(context.Background(), "nope", Scope{}); err == nil {
		t.Error("expected not-found for missing folder")
	}
}

func TestWorkspaceSearch(t *testing.T) {
	w := newTestWorkspace(t)
	items, err := w.Search(context.Background(), "util", Scope{})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].SourceID != "internal/util.go" {
		t.Errorf("unexpected search results: %+v", items)
	}
}

func TestWorkspaceOpenFilesTopLevelOnly(t *testing.T) {
	w := newTestWorkspace(t)
	items, err := w.OpenFiles(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Path != "main.go" {
		t.Errorf("unexpected open files: %+v", items)
	}
}
