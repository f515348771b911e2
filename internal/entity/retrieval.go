package entity

// StoreName identifies one of the three logical knowledge stores.
type StoreName string

const (
	StoreTemplates StoreName = "templates"
	StoreExamples  StoreName = "examples"
	StoreSession   StoreName = "session"
)

// AllStores lists the logical stores in their canonical order.
func AllStores() []StoreName {
	return []StoreName{StoreTemplates, StoreExamples, StoreSession}
}

func (s StoreName) Validate() error {
	switch s {
	case StoreTemplates, StoreExamples, StoreSession:
		return nil
	default:
		return ErrInvalidParameter
	}
}

// RetrievalResult is one ranked hit from a vector store query. Within one
// store's result set, results are sorted by ascending distance (descending
// relevance).
type RetrievalResult struct {
	Rank       int     `json:"rank"`
	Content    string  `json:"content"`
	Preview    string  `json:"preview"`
	SourceFile string  `json:"source_file"`
	Page       int     `json:"page"`
	Relevance  float64 `json:"relevance"`
	Distance   float64 `json:"distance"`
}

// RetrievalContext groups the results of querying all three knowledge stores
// for one requirement. Produced fresh per query; never cached across queries.
type RetrievalContext struct {
	TemplateContext []RetrievalResult `json:"template_context"`
	ExamplesContext []RetrievalResult `json:"examples_context"`
	SessionContext  []RetrievalResult `json:"session_context"`
}

// TotalResults returns the result count across all three stores.
func (rc *RetrievalContext) TotalResults() int {
	return len(rc.TemplateContext) + len(rc.ExamplesContext) + len(rc.SessionContext)
}

// StoreStatus reports per-store readiness.
type StoreStatus struct {
	TemplatesReady bool `json:"templates_ready"`
	ExamplesReady  bool `json:"examples_ready"`
	SessionReady   bool `json:"session_ready"`
}

// AnyReady reports whether at least one store is usable.
func (s StoreStatus) AnyReady() bool {
	return s.TemplatesReady || s.ExamplesReady || s.SessionReady
}

// ReadyCount returns the number of usable stores.
func (s StoreStatus) ReadyCount() int {
	count := 0
	for _, ready := range []bool{s.TemplatesReady, s.ExamplesReady, s.SessionReady} {
		if ready {
			count++
		}
	}
	return count
}

// ChunkMatch is one nearest-neighbor hit as it comes back from the chunk
// store, before relevance scoring.
type ChunkMatch struct {
	Chunk    Chunk
	Distance float64
}

// StoreInfo describes one named store's persisted state.
type StoreInfo struct {
	Name       StoreName `json:"store_name"`
	ChunkCount int       `json:"chunk_count"`
	Ready      bool      `json:"ready"`
}
