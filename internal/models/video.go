package models

// VideoRecord is one row of the precomputed video table. Title doubles as the topic key.
type VideoRecord struct {
	Title   string `json:"title"`
	Channel string `json:"channel"`
	URL     string `json:"url,omitempty"` // empty when the export had no link
}

// HasURL reports whether a player can be built for the record.
func (v VideoRecord) HasURL() bool {
	return v.URL != ""
}
