package models

// Component health states. A service is degraded when any component is
// unhealthy but requests can still be served.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthDegraded  = "degraded"
)

// Stats is a point-in-time summary of the corpus and the pipeline
// configuration behind it.
type Stats struct {
	TotalDocuments     int    `json:"total_documents"`
	TotalChunks        int64  `json:"total_chunks"`
	TotalConversations int    `json:"total_conversations"`
	EmbeddingModel     string `json:"embedding_model"`
	LLMModel           string `json:"llm_model"`
	ChunkSize          int    `json:"chunk_size"`
	ChunkOverlap       int    `json:"chunk_overlap"`
}

// Health reports overall service state and the state of each dependency.
type Health struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
