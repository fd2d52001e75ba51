// Package docsource supplies rule documents for ingestion. How documents
// are obtained is deliberately open: a directory of markdown files, the
// embedded samples, or rows already sitting in the database.
package docsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"golfrules-ai/internal/retrieval"
)

// Source supplies rule documents for ingestion.
type Source interface {
	Load(ctx context.Context) ([]retrieval.Document, error)
}

// DirSource loads rule documents from a directory of markdown files.
// The filename stem becomes the rule ID and the parent directory name the
// section label; the title is the first heading in the file.
type DirSource struct {
	dir    string
	parser goldmark.Markdown
}

// NewDirSource creates a source reading .md files under dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{
		dir:    dir,
		parser: goldmark.New(),
	}
}

// Load reads every markdown file under the directory, recursively.
func (s *DirSource) Load(ctx context.Context) ([]retrieval.Document, error) {
	var docs []retrieval.Document

	err := filepath.WalkDir(s.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		rel, err := filepath.Rel(s.dir, path)
		if err != nil {
			return err
		}

		ruleID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		section := filepath.Dir(rel)
		if section == "." {
			section = "General"
		}

		title := s.extractTitle(content)
		if title == "" {
			title = ruleID
		}

		docs = append(docs, retrieval.Document{
			RuleID:    ruleID,
			Section:   section,
			Title:     title,
			Content:   string(content),
			SourceURL: "file://" + path,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", s.dir, err)
	}

	return docs, nil
}

// extractTitle returns the text of the first level-1 heading, or the first
// level-2 heading when no level-1 exists.
func (s *DirSource) extractTitle(content []byte) string {
	doc := s.parser.Parser().Parse(text.NewReader(content))

	var firstH1, firstH2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := nodeText(heading, content)
		if heading.Level == 1 && firstH1 == "" {
			firstH1 = headingText
			return ast.WalkStop, nil
		}
		if heading.Level == 2 && firstH2 == "" {
			firstH2 = headingText
		}
		return ast.WalkContinue, nil
	})

	if firstH1 != "" {
		return firstH1
	}
	return firstH2
}

// nodeText collects the plain text under a node.
func nodeText(n ast.Node, content []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := node.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(content))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
