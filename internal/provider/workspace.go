package provider

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"ctxweave/internal/block"
	"ctxweave/internal/format"
	"ctxweave/internal/logging"
)

// Workspace serves content from a directory on disk. Paths in SourceIDs and
// refs are slash-separated and relative to the root.
type Workspace struct {
	root string
	name string
}

// skipDirs are never walked into.
var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"target":       true,
}

// maxFileBytes caps a single file fetch. Anything larger is almost certainly
// a binary or a generated artifact the chat surface cannot use.
const maxFileBytes = 1 << 20

// NewWorkspace creates a provider over the given root directory.
func NewWorkspace(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}
	return &Workspace{root: abs, name: filepath.Base(abs)}, nil
}

// walk lists every servable file as a slash-separated relative path.
func (w *Workspace) walk(ctx context.Context) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(w.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		name := d.Name()
		if d.IsDir() {
			if p != w.root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		rel, rerr := filepath.Rel(w.root, p)
		if rerr != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// resolve maps a ref to an absolute path under the root, rejecting escapes.
func (w *Workspace) resolve(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", &Error{Code: CodeNotFound, Message: "ref escapes workspace: " + ref}
	}
	return filepath.Join(w.root, clean), nil
}

func (w *Workspace) readFile(ref string) (format.FileItem, error) {
	abs, err := w.resolve(ref)
	if err != nil {
		return format.FileItem{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return format.FileItem{}, &Error{Code: CodeNotFound, Message: "no such file: " + ref}
	}
	if info.Size() > maxFileBytes {
		return format.FileItem{}, &Error{Code: CodeUnavailable, Message: fmt.Sprintf("%s is too large (%d bytes)", ref, info.Size())}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return format.FileItem{}, &Error{Code: CodeInternal, Message: "read " + ref + ": " + err.Error()}
	}
	if !utf8.Valid(data) {
		return format.FileItem{}, &Error{Code: CodeUnavailable, Message: ref + " is not text"}
	}
	return format.FileItem{Path: ref, Content: string(data), Language: languageFor(ref)}, nil
}

func (w *Workspace) Search(ctx context.Context, query string, scope Scope) ([]SearchItem, error) {
	paths, err := w.walk(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var items []SearchItem
	for _, p := range paths {
		if strings.Contains(strings.ToLower(p), q) {
			items = append(items, SearchItem{
				SourceID: p,
				Label:    filepath.Base(p),
				Path:     p,
				Kind:     block.KindFileContent,
			})
		}
	}
	return items, nil
}

func (w *Workspace) FileContent(ctx context.Context, ref string) (*Content, error) {
	item, err := w.readFile(ref)
	if err != nil {
		return nil, err
	}
	return &Content{
		Meta:  w.meta(ref, filepath.Base(ref), block.KindFileContent),
		Files: []format.FileItem{item},
	}, nil
}

func (w *Workspace) FolderContent(ctx context.Context, ref string, scope Scope) (*Content, error) {
	paths, err := w.walk(ctx)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSuffix(ref, "/") + "/"
	var items []format.FileItem
	for _, p := range paths {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		item, rerr := w.readFile(p)
		if rerr != nil {
			logging.Get(logging.CategoryProvider).Debugf("skipping %s: %v", p, rerr)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, &Error{Code: CodeNotFound, Message: "no files under: " + ref}
	}
	return &Content{
		Meta:  w.meta(ref, filepath.Base(strings.TrimSuffix(ref, "/"))+"/", block.KindFolderContent),
		Files: items,
	}, nil
}

func (w *Workspace) FileTree(ctx context.Context, scope Scope) (*Content, error) {
	paths, err := w.walk(ctx)
	if err != nil {
		return nil, err
	}
	return &Content{
		Meta: w.meta("tree:"+w.name, "File tree", block.KindFileTree),
		Raw:  strings.Join(paths, "\n"),
	}, nil
}

func (w *Workspace) EntireCodebase(ctx context.Context, scope Scope) (*Content, error) {
	paths, err := w.walk(ctx)
	if err != nil {
		return nil, err
	}
	var items []format.FileItem
	for _, p := range paths {
		item, rerr := w.readFile(p)
		if rerr != nil {
			logging.Get(logging.CategoryProvider).Debugf("skipping %s: %v", p, rerr)
			continue
		}
		items = append(items, item)
	}
	return &Content{
		Meta:  w.meta("codebase:"+w.name, "Entire codebase", block.KindCodebase),
		Files: items,
	}, nil
}

// OpenFiles has no editor to ask, so the general activation falls back to
// the workspace's top-level files.
func (w *Workspace) OpenFiles(ctx context.Context) ([]SearchItem, error) {
	paths, err := w.walk(ctx)
	if err != nil {
		return nil, err
	}
	var items []SearchItem
	for _, p := range paths {
		if strings.Contains(p, "/") {
			continue
		}
		items = append(items, SearchItem{SourceID: p, Label: filepath.Base(p), Path: p, Kind: block.KindFileContent})
	}
	return items, nil
}

func (w *Workspace) ContentsForFiles(ctx context.Context, refs []string) (*Content, error) {
	var items []format.FileItem
	for _, ref := range refs {
		item, err := w.readFile(ref)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return &Content{
		Meta:  w.meta("files:"+strings.Join(refs, ","), "Selected files", block.KindFileContent),
		Files: items,
	}, nil
}

// WorkspaceProblems has no diagnostics source on a bare directory.
func (w *Workspace) WorkspaceProblems(ctx context.Context, scope Scope) (*Content, error) {
	return &Content{
		Meta: w.meta("problems:"+w.name, "Workspace problems", block.KindDiagnostics),
		Raw:  "No problems detected.",
	}, nil
}

func (w *Workspace) meta(sourceID, label string, kind block.Kind) block.Metadata {
	return block.Metadata{
		SourceID:  sourceID,
		Kind:      kind,
		Label:     label,
		Workspace: w.name,
	}
}
