package constants

// DocumentStatus is the lifecycle status stored on bill documents.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPending     DocumentStatus = "pending"      // uploaded, not parsed yet
	StatusParsed      DocumentStatus = "parsed"       // parse completed with text
	StatusNeedsReview DocumentStatus = "needs_review" // parse failed or incomplete; errorMessage explains
	StatusError       DocumentStatus = "error"        // reserved for manual flagging; parse never writes it
)

// JobStatus tracks parse jobs dispatched through the async queue.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)

// Messages written to errorMessage by the parse pipeline.
const (
	MsgEmptyText        = "Extracted text was empty"
	MsgDownloadFailed   = "Failed to download PDF"
	MsgExtractionFailed = "Failed to parse PDF"
)
