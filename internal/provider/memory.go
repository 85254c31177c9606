package provider

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"ctxweave/internal/block"
	"ctxweave/internal/format"
)

// Memory is an in-process Provider over a fixed set of files. Tests and the
// demo command use it; it has hooks to block fetches and to fail specific
// refs so lifecycle edge cases can be driven deterministically.
type Memory struct {
	mu       sync.RWMutex
	files    map[string]string
	problems string
	scope    Scope

	// Gate, when non-nil, blocks every content fetch until the channel is
	// closed or the context ends.
	Gate chan struct{}
	// Fail maps a ref (or query) to an error code returned for it.
	Fail map[string]string
	// FetchCalls counts content fetches, for dedup-before-fetch assertions.
	FetchCalls atomic.Int64
}

// NewMemory creates a provider serving the given path→content map.
func NewMemory(files map[string]string) *Memory {
	cp := make(map[string]string, len(files))
	for k, v := range files {
		cp[k] = v
	}
	return &Memory{
		files: cp,
		scope: Scope{Workspace: "memory", Window: "w0"},
	}
}

// SetProblems sets the diagnostics report returned by WorkspaceProblems.
func (m *Memory) SetProblems(report string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.problems = report
}

func (m *Memory) wait(ctx context.Context) error {
	m.FetchCalls.Add(1)
	if m.Gate == nil {
		return nil
	}
	select {
	case <-m.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Memory) failure(key string) error {
	if code, ok := m.Fail[key]; ok {
		return &Error{Code: code, Message: "injected failure for " + key}
	}
	return nil
}

func (m *Memory) Search(ctx context.Context, query string, scope Scope) ([]SearchItem, error) {
	if err := m.failure(query); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []SearchItem
	q := strings.ToLower(query)
	for p := range m.files {
		if strings.Contains(strings.ToLower(p), q) {
			items = append(items, SearchItem{
				SourceID: p,
				Label:    path.Base(p),
				Path:     p,
				Kind:     block.KindFileContent,
			})
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items, nil
}

func (m *Memory) FileContent(ctx context.Context, ref string) (*Content, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err := m.failure(ref); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[ref]
	if !ok {
		return nil, &Error{Code: CodeNotFound, Message: "no such file: " + ref}
	}
	return &Content{
		Meta:  m.meta(ref, path.Base(ref), block.KindFileContent),
		Files: []format.FileItem{{Path: ref, Content: content, Language: languageFor(ref)}},
	}, nil
}

func (m *Memory) FolderContent(ctx context.Context, ref string, scope Scope) (*Content, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	if err := m.failure(ref); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []format.FileItem
	prefix := strings.TrimSuffix(ref, "/") + "/"
	for _, p := range m.sortedPaths() {
		if strings.HasPrefix(p, prefix) {
			items = append(items, format.FileItem{Path: p, Content: m.files[p], Language: languageFor(p)})
		}
	}
	if len(items) == 0 {
		return nil, &Error{Code: CodeNotFound, Message: "no files under: " + ref}
	}
	return &Content{
		Meta:  m.meta(ref, path.Base(ref)+"/", block.KindFolderContent),
		Files: items,
	}, nil
}

func (m *Memory) FileTree(ctx context.Context, scope Scope) (*Content, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sb strings.Builder
	for _, p := range m.sortedPaths() {
		sb.WriteString(p)
		sb.WriteString("\n")
	}
	return &Content{
		Meta: m.meta("tree:"+m.scope.Workspace, "File tree", block.KindFileTree),
		Raw:  strings.TrimRight(sb.String(), "\n"),
	}, nil
}

func (m *Memory) EntireCodebase(ctx context.Context, scope Scope) (*Content, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []format.FileItem
	for _, p := range m.sortedPaths() {
		items = append(items, format.FileItem{Path: p, Content: m.files[p], Language: languageFor(p)})
	}
	return &Content{
		Meta:  m.meta("codebase:"+m.scope.Workspace, "Entire codebase", block.KindCodebase),
		Files: items,
	}, nil
}

func (m *Memory) OpenFiles(ctx context.Context) ([]SearchItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []SearchItem
	for _, p := range m.sortedPaths() {
		items = append(items, SearchItem{SourceID: p, Label: path.Base(p), Path: p, Kind: block.KindFileContent})
	}
	return items, nil
}

func (m *Memory) ContentsForFiles(ctx context.Context, refs []string) (*Content, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []format.FileItem
	for _, ref := range refs {
		content, ok := m.files[ref]
		if !ok {
			return nil, &Error{Code: CodeNotFound, Message: "no such file: " + ref}
		}
		items = append(items, format.FileItem{Path: ref, Content: content, Language: languageFor(ref)})
	}
	return &Content{
		Meta:  m.meta("files:"+strings.Join(refs, ","), "Selected files", block.KindFileContent),
		Files: items,
	}, nil
}

func (m *Memory) WorkspaceProblems(ctx context.Context, scope Scope) (*Content, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	report := m.problems
	if report == "" {
		report = "No problems detected."
	}
	return &Content{
		Meta: m.meta("problems:"+m.scope.Workspace, "Workspace problems", block.KindDiagnostics),
		Raw:  report,
	}, nil
}

func (m *Memory) meta(sourceID, label string, kind block.Kind) block.Metadata {
	return block.Metadata{
		SourceID:     sourceID,
		Kind:         kind,
		Label:        label,
		Workspace:    m.scope.Workspace,
		OriginWindow: m.scope.Window,
	}
}

func (m *Memory) sortedPaths() []string {
	paths := make([]string, 0, len(m.files))
	for p := range m.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

var languages = map[string]string{
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".py":   "python",
	".rs":   "rust",
	".md":   "markdown",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".sh":   "bash",
	".html": "html",
	".css":  "css",
}

func languageFor(p string) string {
	if lang, ok := languages[strings.ToLower(path.Ext(p))]; ok {
		return lang
	}
	return ""
}
