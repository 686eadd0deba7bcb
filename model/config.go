package model

// DefaultTopK is the number of records retrieved per query
const DefaultTopK = 3

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	TopK int `json:"top_k"`
}

// DefaultQueryConfig returns the default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK: DefaultTopK,
	}
}

// EffectiveTopK returns TopK, or DefaultTopK if TopK is not positive
func (c *QueryConfig) EffectiveTopK() int {
	if c == nil || c.TopK <= 0 {
		return DefaultTopK
	}
	return c.TopK
}
