package models

// InsightRecord is a precomputed LLM summary for one topic
type InsightRecord struct {
	Topic    string `json:"topic"`
	Analysis string `json:"analysis"` // free text, may contain markup
}
