package embedding

import "errors"

// ErrEmbedding is returned when the embeddings API call fails or returns an unusable response.
var ErrEmbedding = errors.New("embedding failed")
