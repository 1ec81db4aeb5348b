package config

const (
	// TopicCorpusRebuild is the NSQ topic for corpus re-index tasks.
	TopicCorpusRebuild = "corpus.rebuild"

	// TopicDecisionRecorded is the NSQ topic decision records are announced on
	// after they have been appended to the audit log.
	TopicDecisionRecorded = "decision.recorded"
)
