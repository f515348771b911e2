package entity

import "time"

// DocumentType classifies a source document by its title/filename keywords.
type DocumentType string

const (
	DocTypeRFP      DocumentType = "RFP"
	DocTypeContract DocumentType = "Contract"
	DocTypePolicy   DocumentType = "Policy"
	DocTypeReport   DocumentType = "Report"
	DocTypeManual   DocumentType = "Manual"
	DocTypeGeneric  DocumentType = "Document"
)

// SourceDocument is a parsed source file. Immutable once parsed.
type SourceDocument struct {
	ID         string
	Source     string
	FileName   string
	Title      string
	TotalPages int
	Pages      []PageText
}

// PageText is the cleaned text of one page of a source document.
type PageText struct {
	Number int
	Text   string
}

// Chunk is the unit of indexing and retrieval: a bounded span of cleaned
// source text with quality metadata. Chunks are never mutated after creation;
// the quality-improvement pass produces new chunks instead.
type Chunk struct {
	ID           string       `json:"chunk_id"`
	Text         string       `json:"text"`
	Source       string       `json:"source"`
	FileName     string       `json:"file_name"`
	Page         int          `json:"page"`
	StartIndex   int          `json:"start_index"`
	CharCount    int          `json:"chunk_length"`
	WordCount    int          `json:"word_count"`
	QualityScore float64      `json:"quality_score"`
	DocumentType DocumentType `json:"document_type"`
	Cleaned      bool         `json:"cleaned"`
	Improved     bool         `json:"quality_improved"`
	ProcessedAt  time.Time    `json:"processing_timestamp"`
}

// ChunkStats aggregates quality statistics over a batch of chunks.
type ChunkStats struct {
	TotalChunks     int                  `json:"total_chunks"`
	TotalCharacters int                  `json:"total_characters"`
	TotalWords      int                  `json:"total_words"`
	AvgChunkLength  float64              `json:"average_chunk_length"`
	AvgWordCount    float64              `json:"average_word_count"`
	CleanedChunks   int                  `json:"cleaned_chunks"`
	ImprovedChunks  int                  `json:"quality_improved_chunks"`
	DocumentTypes   map[DocumentType]int `json:"document_types"`
	ShortChunks     int                  `json:"short_chunks"`  // < 500 chars
	MediumChunks    int                  `json:"medium_chunks"` // 500-1500 chars
	LongChunks      int                  `json:"long_chunks"`   // > 1500 chars
}
