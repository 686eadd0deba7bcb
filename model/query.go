package model

import "strings"

// Query is a question about an ingredient label.
// ParentQuery is set when the question is a follow-up of a previous one.
type Query struct {
	Query       string `json:"query"`
	ParentQuery string `json:"parent_query,omitempty"`
}

// RetrievalAnchor is the text driving the similarity search:
// the parent query if present, the query itself otherwise.
func (q Query) RetrievalAnchor() string {
	if parent := strings.TrimSpace(q.ParentQuery); parent != "" {
		return parent
	}
	return strings.TrimSpace(q.Query)
}

// AnswerAnchor is the question echoed into the prompt, always the original query.
func (q Query) AnswerAnchor() string {
	return q.Query
}

// IsFollowUp reports whether the query refers to a parent question
func (q Query) IsFollowUp() bool {
	return strings.TrimSpace(q.ParentQuery) != ""
}
