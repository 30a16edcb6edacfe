package storage

// Payload keys written with every vector.
const (
	PayloadVectorID    = "vectorId"
	PayloadLoc         = "loc"
	PayloadPageContent = "pageContent"
	PayloadTxtPath     = "txtPath"
	PayloadDocLink     = "docLink"
)

const (
	// DefaultTopK is the number of neighbors returned when a query does not ask for a count.
	DefaultTopK = 10

	// MaxBatchSize caps the number of vectors per upsert call.
	MaxBatchSize = 100
)

// Config holds connection settings for a Qdrant deployment.
type Config struct {
	Host   string
	Port   int    // gRPC port, 6334 by default
	APIKey string // required for Qdrant Cloud
	UseTLS bool
}

// IndexSpec describes the index a writer expects to exist.
type IndexSpec struct {
	Name      string
	Dimension int
	Metric    string // cosine, dot, euclid
}

// VectorRecord is one embedded chunk as written to the index.
// Writing a record with an existing ID overwrites it.
type VectorRecord struct {
	ID       string // "<sourcePath>_<chunkIndex>"
	Values   []float32
	Metadata RecordMetadata
}

// RecordMetadata is the payload stored alongside each vector.
type RecordMetadata struct {
	Loc         string // JSON-encoded chunk location
	PageContent string // full chunk text
	TxtPath     string // source document path
	DocLink     string // link extracted from the source document, may be empty
}

// QueryMatch is a single nearest-neighbor result with its raw payload.
type QueryMatch struct {
	ID       string
	Score    float32
	Values   []float32
	Metadata map[string]any
}

// QueryResponse holds matches ranked by descending similarity.
type QueryResponse struct {
	Matches []QueryMatch
}

// IndexStats reports the state of an index.
type IndexStats struct {
	Name        string
	Status      string
	PointsCount uint64
	Dimension   int
}
