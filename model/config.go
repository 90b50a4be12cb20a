package model

// QueryConfig represents per-retrieval options
type QueryConfig struct {
	TopK                 int  `json:"top_k"`
	UseGraph             bool `json:"use_graph"`
	ExpandIfInsufficient bool `json:"expand_if_insufficient"`
}

// DefaultQueryConfig returns the default retrieval options
func DefaultQueryConfig() *QueryConfig {
	return &QueryConfig{
		TopK:                 5,
		UseGraph:             true,
		ExpandIfInsufficient: true,
	}
}
