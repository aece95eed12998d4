package prompt

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

type DiffResult struct {
	Identical bool        `json:"identical"`
	LengthA   int         `json:"lengthA"`
	LengthB   int         `json:"lengthB"`
	Added     int         `json:"addedLines"`
	Removed   int         `json:"removedLines"`
	Chunks    []DiffChunk `json:"chunks"`
}

// DiffChunk is a run of lines with the same operation. Unchanged runs carry
// only their line count.
type DiffChunk struct {
	Op    string `json:"op"`
	Lines int    `json:"lines"`
	Text  string `json:"text,omitempty"`
}

// Diff compares two prompts line by line.
func Diff(a, b string) DiffResult {
	res := DiffResult{
		Identical: a == b,
		LengthA:   utf8.RuneCountInString(a),
		LengthB:   utf8.RuneCountInString(b),
	}
	if res.Identical {
		return res
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	for _, d := range diffs {
		n := lineCount(d.Text)
		chunk := DiffChunk{Lines: n}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			chunk.Op = "insert"
			chunk.Text = d.Text
			res.Added += n
		case diffmatchpatch.DiffDelete:
			chunk.Op = "delete"
			chunk.Text = d.Text
			res.Removed += n
		default:
			chunk.Op = "equal"
		}
		res.Chunks = append(res.Chunks, chunk)
	}
	return res
}

func lineCount(s string) int {
	n := strings.Count(s, "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
