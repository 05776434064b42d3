package models

// RedditCommentRecord is a pre-exported top comment with its sentiment label
type RedditCommentRecord struct {
	SourceTitle    string `json:"source_title"`
	Comment        string `json:"comment"`
	SentimentEmoji string `json:"sentiment_emoji"`
}
