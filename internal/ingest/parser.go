package ingest

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/entity"
)

var supportedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// Parser reads source documents from disk into cleaned page text.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// ParseFile parses a single document. PDF pages map one-to-one onto
// PageText entries; plain-text files produce a single page.
func (p *Parser) ParseFile(path string) (*entity.SourceDocument, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, fmt.Errorf("unsupported file type %q: %s", ext, path)
	}

	var (
		pages []entity.PageText
		err   error
	)
	if ext == ".pdf" {
		pages, err = readPDFPages(path)
	} else {
		pages, err = readTextPages(path)
	}
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(path)
	title := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	return &entity.SourceDocument{
		Source:     path,
		FileName:   fileName,
		Title:      title,
		TotalPages: len(pages),
		Pages:      pages,
	}, nil
}

// ParseDirectory parses every supported file under dir. Files that fail to
// parse are logged and skipped; the batch does not fail because one document
// is corrupt. Returns entity.ErrNoDocuments when nothing was parsed.
func (p *Parser) ParseDirectory(ctx context.Context, dir string) ([]*entity.SourceDocument, error) {
	logger := ctxzap.Extract(ctx)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory %s: %w", dir, err)
	}

	var docs []*entity.SourceDocument
	for _, e := range entries {
		if e.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}

		doc, err := p.ParseFile(filepath.Join(dir, e.Name()))
		if err != nil {
			logger.Warn("skipping unparsable document",
				zap.String("file", e.Name()),
				zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrNoDocuments, dir)
	}
	return docs, nil
}

func readPDFPages(path string) ([]entity.PageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []entity.PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// One bad page does not invalidate the document.
			continue
		}

		cleaned := CleanText(text)
		if cleaned == "" {
			continue
		}
		pages = append(pages, entity.PageText{Number: i, Text: cleaned})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return pages, nil
}

func readTextPages(path string) ([]entity.PageText, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cleaned := CleanText(string(bytes.ToValidUTF8(raw, nil)))
	if cleaned == "" {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return []entity.PageText{{Number: 1, Text: cleaned}}, nil
}
