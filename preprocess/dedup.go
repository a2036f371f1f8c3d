package preprocess

import (
	"regexp"
	"strings"
	"time"

	"github.com/fwojciec/logcolor"
)

var (
	isoTimestamp  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`)
	keyBefore     = regexp.MustCompile(`[a-zA-Z_][a-zA-Z0-9_]*\s*[:=]\s*$`)
	jsonKeyBefore = regexp.MustCompile(`[{,]\s*"?[a-zA-Z_][a-zA-Z0-9_]*"?\s*:\s*"?$`)
	quotedAfter   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T[\d:.]+Z?"`)
	leadPrefix    = regexp.MustCompile(`^(?:\[[^\]]*\]\s+)?\d{4}-\d{2}-\d{2}T[\d:.]+(?:Z|[+-]\d{2}:?\d{2})?\s+$`)
)

// dataColumn is the column past which a timestamp is taken to be data
// unless the line starts with a timestamp prefix.
const dataColumn = 50

// Deduplicator removes timestamps that repeat the one before them, as
// produced by tools that prefix lines already carrying a timestamp.
type Deduplicator struct {
	maxGap time.Duration
}

// NewDeduplicator returns a Deduplicator treating timestamps at most maxGap
// apart as repeats.
func NewDeduplicator(maxGap time.Duration) *Deduplicator {
	return &Deduplicator{maxGap: maxGap}
}

// Process deduplicates each line of input.
func (d *Deduplicator) Process(input string) string {
	if !strings.Contains(input, "\n") {
		return d.Line(input)
	}
	lines := strings.Split(input, "\n")
	for i, line := range lines {
		lines[i] = d.Line(line)
	}
	return strings.Join(lines, "\n")
}

type stamp struct {
	start, end int
	at         time.Time
	ok         bool
}

// Line removes repeated timestamps from one line. A timestamp is a repeat
// when only whitespace separates it from the previous one and the two are
// within maxGap, or identical when either fails to parse. Timestamps in data
// contexts are kept. A removed timestamp takes its trailing whitespace with
// it.
func (d *Deduplicator) Line(line string) string {
	locs := isoTimestamp.FindAllStringIndex(line, -1)
	if len(locs) < 2 {
		return line
	}
	stamps := make([]stamp, len(locs))
	for i, loc := range locs {
		at, ok := logcolor.ParseTimestamp(line[loc[0]:loc[1]], time.UTC)
		stamps[i] = stamp{start: loc[0], end: loc[1], at: at, ok: ok}
	}

	var b strings.Builder
	pos := 0
	for i := 1; i < len(stamps); i++ {
		prev, cur := stamps[i-1], stamps[i]
		if !d.repeats(line, prev, cur) {
			continue
		}
		end := cur.end
		for end < len(line) && isSpace(line[end]) {
			end++
		}
		b.WriteString(line[pos:cur.start])
		pos = end
	}
	if pos == 0 {
		return line
	}
	b.WriteString(line[pos:])
	return b.String()
}

func (d *Deduplicator) repeats(line string, prev, cur stamp) bool {
	if strings.TrimSpace(line[prev.end:cur.start]) != "" {
		return false
	}
	if isData(line, cur.start) {
		return false
	}
	if prev.ok && cur.ok {
		return absDuration(cur.at.Sub(prev.at)) <= d.maxGap
	}
	return line[prev.start:prev.end] == line[cur.start:cur.end]
}

// isData reports whether the timestamp at i is a value inside structured
// data rather than a line prefix.
func isData(line string, i int) bool {
	if i > 0 {
		switch line[i-1] {
		case '"', ':', ',', '[', '{', '=':
			return true
		}
		before := line[max(0, i-20):i]
		if keyBefore.MatchString(before) || jsonKeyBefore.MatchString(before) {
			return true
		}
	}
	if quotedAfter.MatchString(line[i:min(len(line), i+100)]) {
		return true
	}
	return i > dataColumn && !leadPrefix.MatchString(line[:i])
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
