package ingest

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/yswa-var/rfp-bid/internal/config"
	"github.com/yswa-var/rfp-bid/internal/entity"
)

// Pipeline turns parsed source documents into index-ready chunks:
// split per page, drop non-meaningful and metadata chunks, optionally run
// the formatting improvement pass, and attach quality metadata.
type Pipeline struct {
	cfg      config.IngestConfig
	splitter *Splitter
	minChars int
	minWords int
}

func NewPipeline(cfg config.IngestConfig) *Pipeline {
	minChars := cfg.MinMeaningfulChars
	if minChars <= 0 {
		minChars = minMeaningfulChars
	}
	minWords := cfg.MinMeaningfulWords
	if minWords <= 0 {
		minWords = minMeaningfulWords
	}
	return &Pipeline{
		cfg:      cfg,
		splitter: NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		minChars: minChars,
		minWords: minWords,
	}
}

// Process chunks a batch of documents. Returns entity.ErrNoChunks when every
// candidate chunk was filtered out.
func (p *Pipeline) Process(ctx context.Context, docs []*entity.SourceDocument) ([]entity.Chunk, error) {
	logger := ctxzap.Extract(ctx)

	if len(docs) == 0 {
		return nil, entity.ErrNoDocuments
	}

	var (
		chunks   []entity.Chunk
		filtered int
	)
	now := time.Now().UTC()

	for _, doc := range docs {
		docType := DetectDocumentType(doc.FileName, doc.Title)

		for _, page := range doc.Pages {
			for _, frag := range p.splitter.Split(page.Text) {
				text := strings.TrimSpace(frag.Text)
				if !meaningfulAt(text, p.minChars, p.minWords) || IsMetadataChunk(text) {
					filtered++
					continue
				}

				improved := false
				if p.cfg.ImproveChunks {
					text, improved = ImproveText(text)
				}

				chunks = append(chunks, entity.Chunk{
					ID:           uuid.NewString(),
					Text:         text,
					Source:       doc.Source,
					FileName:     doc.FileName,
					Page:         page.Number,
					StartIndex:   frag.Start,
					CharCount:    len(text),
					WordCount:    len(strings.Fields(text)),
					QualityScore: QualityScore(text),
					DocumentType: docType,
					Cleaned:      true,
					Improved:     improved,
					ProcessedAt:  now,
				})
			}
		}
	}

	logger.Info("chunking complete",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
		zap.Int("filtered", filtered))

	if len(chunks) == 0 {
		return nil, entity.ErrNoChunks
	}
	return chunks, nil
}

// Stats aggregates quality statistics over a chunk batch.
func Stats(chunks []entity.Chunk) entity.ChunkStats {
	stats := entity.ChunkStats{
		TotalChunks:   len(chunks),
		DocumentTypes: make(map[entity.DocumentType]int),
	}
	if len(chunks) == 0 {
		return stats
	}

	for _, c := range chunks {
		stats.TotalCharacters += c.CharCount
		stats.TotalWords += c.WordCount
		stats.DocumentTypes[c.DocumentType]++
		if c.Cleaned {
			stats.CleanedChunks++
		}
		if c.Improved {
			stats.ImprovedChunks++
		}
		switch {
		case c.CharCount < 500:
			stats.ShortChunks++
		case c.CharCount <= 1500:
			stats.MediumChunks++
		default:
			stats.LongChunks++
		}
	}

	stats.AvgChunkLength = float64(stats.TotalCharacters) / float64(len(chunks))
	stats.AvgWordCount = float64(stats.TotalWords) / float64(len(chunks))
	return stats
}
