// Package history keeps an append-only JSON log of evaluated problems and
// exports it as HTML.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	calcmv "github.com/njchilds90/gocalcmv"
	sym "github.com/njchilds90/gocalcmv/symbolic"
)

var (
	ErrNotFound  = errors.New("history record not found")
	ErrAmbiguous = errors.New("history id prefix is ambiguous")
	ErrCorrupt   = errors.New("history file is corrupt")
)

// ExprSnapshot stores an expression both as text and as a kernel JSON tree.
type ExprSnapshot struct {
	Text string                 `json:"text"`
	Tree map[string]interface{} `json:"tree,omitempty"`
}

func snapshot(e sym.Expr) *ExprSnapshot {
	if e == nil {
		return nil
	}
	return &ExprSnapshot{Text: e.String(), Tree: sym.ToMap(e)}
}

// Expr rebuilds the expression from its tree.
func (s *ExprSnapshot) Expr() (sym.Expr, error) {
	if s == nil || s.Tree == nil {
		return nil, fmt.Errorf("%w: empty expression snapshot", ErrCorrupt)
	}
	return sym.FromJSON(s.Tree)
}

// Plot holds what is needed to redraw the problem.
type Plot struct {
	Kind   calcmv.Kind       `json:"kind"`
	Shape  string            `json:"shape,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Field  []string          `json:"field,omitempty"`
}

// Record is one saved evaluation.
type Record struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	CreatedAt time.Time     `json:"created_at"`
	Lines     []string      `json:"lines"`
	Plot      Plot          `json:"plot"`
	Verified  bool          `json:"verified"`
	Domain    *ExprSnapshot `json:"domain,omitempty"`
	Boundary  *ExprSnapshot `json:"boundary,omitempty"`
}

// Store is a JSON file of records. Methods are safe for concurrent use
// within one process.
type Store struct {
	path  string
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

func NewStore(path string) *Store {
	return &Store{
		path:  path,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

func (s *Store) Path() string { return s.path }

// NewRecord builds the record for res without storing it.
func (s *Store) NewRecord(res *calcmv.Result) Record {
	lines := make([]string, 0, len(res.Statement)+len(res.Steps)+len(res.Notes)+2)
	lines = append(lines, res.Statement...)
	lines = append(lines, "")
	lines = append(lines, res.Steps...)
	if len(res.Notes) > 0 {
		lines = append(lines, "")
		lines = append(lines, res.Notes...)
	}
	rec := Record{
		ID:        s.newID(),
		Title:     res.Title(),
		CreatedAt: s.now().UTC(),
		Lines:     lines,
		Plot: Plot{
			Kind:   res.Kind,
			Shape:  res.Shape,
			Params: res.Params,
			Field:  res.Field,
		},
		Verified: res.Verification.Verified,
		Domain:   snapshot(res.Domain),
	}
	if res.BoundaryComputed {
		rec.Boundary = snapshot(res.Boundary)
	}
	return rec
}

// Append stores res and returns the new record.
func (s *Store) Append(res *calcmv.Result) (Record, error) {
	rec := s.NewRecord(res)
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return Record{}, err
	}
	if err := s.save(append(records, rec)); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Load returns every record, oldest first. A missing file is an empty
// history.
func (s *Store) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get finds a record by full id or unique id prefix.
func (s *Store) Get(id string) (Record, error) {
	records, err := s.Load()
	if err != nil {
		return Record{}, err
	}
	var found []Record
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
		if id != "" && strings.HasPrefix(r.ID, id) {
			found = append(found, r)
		}
	}
	switch len(found) {
	case 0:
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	}
	return Record{}, fmt.Errorf("%w: %s matches %d records", ErrAmbiguous, id, len(found))
}

// Clear removes every record.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save([]Record{})
}

func (s *Store) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	return records, nil
}

func (s *Store) save(records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// ============================================================
// Export
// ============================================================

// Markdown renders records as a Markdown document.
func Markdown(records []Record) string {
	var b strings.Builder
	b.WriteString("# Calculation history\n\n")
	if len(records) == 0 {
		b.WriteString("No saved calculations.\n")
		return b.String()
	}
	for _, r := range records {
		fmt.Fprintf(&b, "## %s\n\n", r.Title)
		fmt.Fprintf(&b, "- id: `%s`\n- saved: %s\n", r.ID, r.CreatedAt.Format(time.RFC3339))
		if r.Domain != nil {
			fmt.Fprintf(&b, "- result: `%s`\n", r.Domain.Text)
			if e, err := r.Domain.Expr(); err == nil {
				fmt.Fprintf(&b, "- LaTeX: `%s`\n", e.LaTeX())
			}
		}
		if r.Boundary != nil {
			verdict := "differs"
			if r.Verified {
				verdict = "verified"
			}
			fmt.Fprintf(&b, "- boundary: `%s` (%s)\n", r.Boundary.Text, verdict)
		}
		b.WriteString("\n```text\n")
		for _, line := range r.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString("```\n\n")
	}
	return b.String()
}

// ExportHTML writes records as an HTML fragment.
func ExportHTML(w io.Writer, records []Record) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(Markdown(records)), w); err != nil {
		return fmt.Errorf("render history: %w", err)
	}
	return nil
}
