package worker

// RebuildTask asks the rebuild consumer to re-ingest the corpus directory
// and atomically swap the serving snapshot.
type RebuildTask struct {
	CorrelationID string `json:"correlation_id,omitempty"`
}
