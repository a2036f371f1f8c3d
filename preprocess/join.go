package preprocess

import (
	"regexp"
	"strings"
)

var (
	jsonStart  = regexp.MustCompile(`^[{[]|:\s*[{[]`)
	indented   = regexp.MustCompile(`^\s{2,}`)
	entryStart = regexp.MustCompile(`(?i)^\s*(?:\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}|DEBUG|INFO|WARN|WARNING|ERROR|FATAL|TRACE)`)
)

type blockKind int

const (
	noBlock blockKind = iota
	jsonBlock
	continuationBlock
)

// Joiner folds multi-line JSON bodies and indented continuation lines into
// single logical lines.
type Joiner struct{}

// NewJoiner returns a Joiner.
func NewJoiner() *Joiner {
	return &Joiner{}
}

// Process joins the lines of input. A JSON object or array opened on one
// line runs until its braces and brackets balance, ignoring those inside
// quotes; its lines join with single spaces. A line indented by two or more
// spaces continues the non-blank line before it unless it starts a new entry
// with a timestamp or a level. Blank lines end any block and are kept.
func (j *Joiner) Process(input string) string {
	lines := strings.Split(input, "\n")
	var (
		out   []string
		block []string
		kind  blockKind
		depth int
	)
	flush := func() {
		switch {
		case len(block) == 0:
		case kind == noBlock:
			out = append(out, block...)
		default:
			out = append(out, joinBlock(block))
		}
		block, kind, depth = nil, noBlock, 0
	}

	for i, line := range lines {
		switch {
		case strings.TrimSpace(line) == "":
			flush()
			out = append(out, line)

		case kind == jsonBlock:
			block = append(block, line)
			depth += nesting(line)
			if depth <= 0 {
				flush()
			}

		case jsonStart.MatchString(strings.TrimSpace(line)):
			flush()
			if d := nesting(line); d > 0 {
				block, kind, depth = []string{line}, jsonBlock, d
			} else {
				out = append(out, line)
			}

		case i > 0 && isContinuation(line, lines[i-1]):
			if kind != continuationBlock {
				flush()
				if len(out) > 0 {
					block = []string{out[len(out)-1]}
					out = out[:len(out)-1]
				}
				kind = continuationBlock
			}
			block = append(block, line)

		default:
			flush()
			out = append(out, line)
		}
	}
	flush()
	return strings.Join(out, "\n")
}

func isContinuation(line, prev string) bool {
	return indented.MatchString(line) && strings.TrimSpace(prev) != "" && !entryStart.MatchString(line)
}

// joinBlock keeps the first line as is and appends the trimmed rest.
func joinBlock(lines []string) string {
	var b strings.Builder
	b.WriteString(lines[0])
	for _, line := range lines[1:] {
		if t := strings.TrimSpace(line); t != "" {
			b.WriteByte(' ')
			b.WriteString(t)
		}
	}
	return b.String()
}

// nesting returns opened minus closed braces and brackets outside quoted
// strings.
func nesting(line string) int {
	n := 0
	var quote byte
	escaped := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '{' || c == '[':
			n++
		case c == '}' || c == ']':
			n--
		}
	}
	return n
}
