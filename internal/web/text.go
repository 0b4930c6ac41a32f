package web

var (
	PageTitle = "Video Transcript Chunker"

	ChunkerIntro = `Break large video transcripts into smaller chunks for easier processing.
	Automatically handles timestamps and speaker labels.`

	DisconnectedHint = `Make sure the chunking service is running and reachable from this site.`

	CleanTranscriptLabel = "Clean transcript (remove timestamps, speaker labels)"

	MaxCharsHint = "Default: 2900, Range: 100-50000"
)

type methodOption struct {
	Value string
	Label string
}

var methodOptions = []methodOption{
	{Value: "smart", Label: "Smart (preserves punctuation)"},
	{Value: "simple", Label: "Simple (word boundaries only)"},
}
