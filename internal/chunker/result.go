package chunker

import (
	"math"
	"unicode/utf8"
)

type Statistics struct {
	AverageChunkSize int
	LargestChunk     int
	SmallestChunk    int
	// Efficiency is the rounded percentage of NumChunks*TargetSize actually filled.
	Efficiency int
}

// Result is one successful chunking run. It is never modified after NewResult.
type Result struct {
	Chunks         []string
	OriginalLength int
	CleanedLength  int
	NumChunks      int
	ChunkSizes     []int
	TargetSize     int
	MethodUsed     Method
	Statistics     Statistics
}

// NewResult derives sizes and statistics from the service's chunks. Sizes
// count characters, not bytes.
func NewResult(chunks []string, originalLength, cleanedLength, targetSize int, method Method) *Result {
	owned := make([]string, len(chunks))
	copy(owned, chunks)

	sizes := make([]int, len(owned))
	for i, c := range owned {
		sizes[i] = utf8.RuneCountInString(c)
	}

	return &Result{
		Chunks:         owned,
		OriginalLength: originalLength,
		CleanedLength:  cleanedLength,
		NumChunks:      len(owned),
		ChunkSizes:     sizes,
		TargetSize:     targetSize,
		MethodUsed:     method,
		Statistics:     computeStatistics(sizes, targetSize),
	}
}

// computeStatistics reports zeros for an empty sizes list.
func computeStatistics(sizes []int, targetSize int) Statistics {
	if len(sizes) == 0 {
		return Statistics{}
	}

	total := 0
	largest, smallest := sizes[0], sizes[0]
	for _, s := range sizes {
		total += s
		largest = max(largest, s)
		smallest = min(smallest, s)
	}

	stats := Statistics{
		AverageChunkSize: roundHalfUp(float64(total) / float64(len(sizes))),
		LargestChunk:     largest,
		SmallestChunk:    smallest,
	}
	if capacity := len(sizes) * targetSize; capacity > 0 {
		stats.Efficiency = roundHalfUp(float64(total) / float64(capacity) * 100)
	}
	return stats
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
