package analyzer

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
)

// FileStats holds the statistics collected for a single file.
type FileStats struct {
	WordCount       int
	LineCount       int
	CharFrequencies map[rune]int
	SizeBytes       uint64
}

// ProcessingError records a failure during one step of an analysis.
// Errors accumulate on the result instead of aborting it.
type ProcessingError struct {
	Filename  string
	Operation string
	Message   string
}

// FileAnalysis is the full output for one analyzed file.
type FileAnalysis struct {
	Filename       string
	Stats          FileStats
	Errors         []ProcessingError
	ProcessingTime time.Duration
}

const readBufSize = 8 * 1024

// Analyze reads the file at path and computes its statistics. It never
// fails as a call: metadata, open, and read problems are recorded in the
// result's Errors and whatever could be computed is still returned.
//
// Text files are scanned line by line; if a line is not valid UTF-8 the
// remainder of the file is re-read as raw bytes (byte-level frequencies,
// newline-delimited lines, whitespace-delimited words).
func Analyze(path string) FileAnalysis {
	start := time.Now()

	analysis := FileAnalysis{
		Filename: path,
		Stats:    FileStats{CharFrequencies: make(map[rune]int)},
	}

	if info, err := os.Stat(path); err != nil {
		analysis.record("metadata", err)
	} else {
		analysis.Stats.SizeBytes = uint64(info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		analysis.record("open", err)
		analysis.ProcessingTime = time.Since(start)
		return analysis
	}
	defer f.Close()

	if ok := analysis.scanText(f); !ok {
		// invalid UTF-8 somewhere: start over on the raw bytes
		analysis.Stats.WordCount = 0
		analysis.Stats.LineCount = 0
		analysis.Stats.CharFrequencies = make(map[rune]int)
		analysis.scanBinary(path)
	}

	analysis.ProcessingTime = time.Since(start)
	return analysis
}

// scanText counts words, lines, and rune frequencies. Returns false as
// soon as a line fails UTF-8 validation.
func (a *FileAnalysis) scanText(r io.Reader) bool {
	reader := bufio.NewReaderSize(r, readBufSize)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			if !utf8.ValidString(line) {
				return false
			}
			a.Stats.LineCount++
			a.Stats.WordCount += len(strings.Fields(line))
			for _, ch := range line {
				a.Stats.CharFrequencies[ch]++
			}
		}
		if err != nil {
			if err != io.EOF {
				a.record("read", err)
			}
			return true
		}
	}
}

// scanBinary re-reads the whole file as raw bytes.
func (a *FileAnalysis) scanBinary(path string) {
	f, err := os.Open(path)
	if err != nil {
		a.record("open", err)
		return
	}
	defer f.Close()

	buf := make([]byte, readBufSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			for _, b := range chunk {
				a.Stats.CharFrequencies[rune(b)]++
			}
			a.Stats.LineCount += bytes.Count(chunk, []byte{'\n'})
			a.Stats.WordCount += countWordsBytes(chunk)
		}
		if err != nil {
			if err != io.EOF {
				a.record("read", err)
			}
			return
		}
	}
}

func countWordsBytes(chunk []byte) int {
	words := 0
	inWord := false
	for _, b := range chunk {
		switch b {
		case ' ', '\n', '\t', '\r':
			inWord = false
		default:
			if !inWord {
				words++
				inWord = true
			}
		}
	}
	return words
}

func (a *FileAnalysis) record(op string, err error) {
	log.Debug().Str("path", a.Filename).Str("operation", op).Err(err).Msg("analysis step failed")
	a.Errors = append(a.Errors, ProcessingError{
		Filename:  a.Filename,
		Operation: op,
		Message:   err.Error(),
	})
}
