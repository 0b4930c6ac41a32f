package chunker

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

var (
	heavyRule = strings.Repeat("=", 50)
	lightRule = strings.Repeat("-", 60)
)

// ExportText renders r as the downloadable plain-text report. Output depends
// only on r and generatedAt.
func ExportText(r *Result, generatedAt time.Time) string {
	lines := []string{
		"VIDEO TRANSCRIPT - CHUNKED",
		heavyRule,
		"",
		fmt.Sprintf("Original text: %s characters", humanize.Comma(int64(r.OriginalLength))),
		fmt.Sprintf("Cleaned text: %s characters", humanize.Comma(int64(r.CleanedLength))),
		fmt.Sprintf("Number of chunks: %d", r.NumChunks),
		fmt.Sprintf("Target chunk size: %s characters", humanize.Comma(int64(r.TargetSize))),
		fmt.Sprintf("Method used: %s", r.MethodUsed),
		fmt.Sprintf("Generated on: %s", generatedAt.Format("1/2/2006, 3:04:05 PM")),
		"",
		heavyRule,
		"",
	}
	for i, chunk := range r.Chunks {
		lines = append(lines, fmt.Sprintf("CHUNK %d OF %d\nCharacters: %s | Target: %s\n%s\n\n%s\n\n%s\n",
			i+1, r.NumChunks,
			humanize.Comma(int64(r.ChunkSizes[i])), humanize.Comma(int64(r.TargetSize)),
			lightRule, chunk, heavyRule,
		))
	}
	return strings.Join(lines, "\n")
}

// ExportFilename names the report after the UTC second it was generated,
// e.g. transcript_chunks_2026-10-19T15-04-05.txt.
func ExportFilename(generatedAt time.Time) string {
	stamp := generatedAt.UTC().Format("2006-01-02T15:04:05")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return "transcript_chunks_" + stamp + ".txt"
}
