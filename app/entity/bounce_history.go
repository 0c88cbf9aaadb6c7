package entity

const (
	BounceStatusNew          int16 = 0
	BounceStatusProcessing   int16 = 1
	BounceStatusParsed       int16 = 10
	BounceStatusUnrecognized int16 = 40
	BounceStatusFailed       int16 = 50
)

// BounceHistory tracks one ingested raw bounce through the pipeline.
type BounceHistory struct {
	RequestID string
	Adapter   string
	Raw       string
	Status    int16
	Retries   int
}

// BounceStatusName returns the lowercase label of a bounce status.
func BounceStatusName(status int16) string {
	switch status {
	case BounceStatusNew:
		return "new"
	case BounceStatusProcessing:
		return "processing"
	case BounceStatusParsed:
		return "parsed"
	case BounceStatusUnrecognized:
		return "unrecognized"
	case BounceStatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
