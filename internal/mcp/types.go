// Package mcp exposes the ask command and index status as MCP tools.
package mcp

// AskInput defines the input parameters for the ask tool.
type AskInput struct {
	// Question is the user's question about the documentation.
	Question string `json:"question" jsonschema:"The question to answer from the indexed documentation"`
	// Channel names the conversation the question came from; used for logging only.
	Channel string `json:"channel,omitempty" jsonschema:"Optional name of the channel or conversation asking"`
}

// AskOutput contains the reply to post back.
type AskOutput struct {
	// Reply is markdown: the answer followed by up to three source links,
	// or a fixed message when nothing was found or something failed.
	Reply string `json:"reply"`
}

// StatusInput defines the input parameters for the index_status tool.
// This tool takes no parameters.
type StatusInput struct{}

// StatusOutput describes the vector index.
type StatusOutput struct {
	Index     string `json:"index"`
	Status    string `json:"status"`
	Vectors   uint64 `json:"vectors"`
	Dimension int    `json:"dimension"`
}
