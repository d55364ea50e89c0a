// Package minutes turns meeting material into Minutes of Meeting. It defines
// the speech-to-text and summarizer backends the minutes service runs on the
// worker pool, with one implementation per supported provider.
package minutes

import "context"

// Media is an uploaded file handed to a summarizer as context.
type Media struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Request is the input to a summarizer. Transcript is primary; Media
// supplements it.
type Request struct {
	Transcript string
	Media      []Media
}

// Audio is a recording to transcribe. Language is an optional hint such as
// "en" or "hi".
type Audio struct {
	Filename    string
	ContentType string
	Data        []byte
	Language    string
}

// Summarizer produces minutes text. It may return an empty string; callers
// decide whether that is an error.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// Transcriber turns audio into plain text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// ModelLister is implemented by summarizers backed by a model catalog.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
