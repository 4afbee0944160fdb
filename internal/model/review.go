package model

// ReviewCandidate is one public review pulled from a listing, before any
// matching has happened. Read-only to the core.
type ReviewCandidate struct {
	Text         string `json:"text"`
	Rating       int    `json:"rating"`
	Author       string `json:"author"`
	RelativeTime string `json:"relative_time"`
	PlaceID      string `json:"place_id"`
}

// MatchResult is the transient outcome of scoring one candidate term against
// a review text. It is never persisted standalone; results fold into an
// Extraction.
type MatchResult struct {
	Term       string `json:"term"`
	Confidence int    `json:"confidence"`
	Segment    string `json:"segment"`
}
