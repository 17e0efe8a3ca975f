package events

// ConnectedData is the payload of a MessageTypeConnected greeting.
type ConnectedData struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// DatasetRefreshedData is pushed after the dataset snapshot is reloaded and
// cleaned, so connected dashboards can re-query.
type DatasetRefreshedData struct {
	RecordCount  int    `json:"record_count"`
	Source       string `json:"source"`
	LoadDuration string `json:"load_duration,omitempty"`
}

// FeedbackCreatedData is pushed when a feedback submission is accepted, with
// the classification it received at ingest.
type FeedbackCreatedData struct {
	Rating    int    `json:"rating"`
	Sentiment string `json:"sentiment"`
}
