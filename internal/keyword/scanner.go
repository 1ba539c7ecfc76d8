package keyword

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// ErrUnclosedBlock indicates the configuration ended inside an open block.
var ErrUnclosedBlock = errors.New("unexpected end of configuration inside block")

// Scanner consumes configuration text statement by statement and
// dispatches each line against a Registry. Scanning is strictly
// sequential: one logical line at a time, no goroutines, no handler
// ever suspends.
type Scanner struct {
	reg *Registry
	log *slog.Logger
}

// NewScanner creates a Scanner over the given keyword table.
// If logger is nil, slog.Default() is used.
func NewScanner(reg *Registry, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{reg: reg, log: logger}
}

// Run parses the configuration text from r to completion.
// Handler-level failures never surface here; only unreadable input or
// structurally unterminated blocks produce an error.
func (s *Scanner) Run(r io.Reader) error {
	lr := newLineReader(r)

	for {
		st, err := lr.next()
		if err != nil {
			return err
		}
		if st == nil {
			return nil
		}

		if st.tokens[0] == "}" {
			s.log.Warn("unmatched close brace outside any block",
				slog.Int("line", st.line),
			)
			continue
		}

		// A stray abort at root level has no enclosing block to skip.
		if _, err := s.dispatch(lr, s.reg.roots, st); err != nil {
			return err
		}
	}
}

// dispatch runs the handler for one statement at the scope defined by
// kws. The returned abort flag tells the caller that its own block must
// be discarded (a leaf handler signalled AbortBlock); an abort from a
// handler that opens its own block is consumed by skipping that block.
func (s *Scanner) dispatch(lr *lineReader, kws []*Keyword, st *statement) (bool, error) {
	name := st.tokens[0]
	args := st.tokens[1:]

	opens := false
	if n := len(args); n > 0 && args[n-1] == "{" {
		opens = true
		args = args[:n-1]
	}
	if !opens {
		// The open brace may sit alone on the following line.
		brace, err := lr.consumeLoneBrace()
		if err != nil {
			return false, err
		}
		opens = brace
	}

	kw := findKeyword(kws, name)
	if kw == nil {
		s.log.Warn("unknown configuration keyword, ignoring",
			slog.String("keyword", name),
			slog.Int("line", st.line),
		)
		if opens {
			return false, s.skipBlock(lr)
		}
		return false, nil
	}

	res := Continue
	if kw.handler != nil {
		res = kw.handler(args)
	}

	if res == AbortBlock {
		if opens {
			return false, s.skipBlock(lr)
		}
		return true, nil
	}
	if opens {
		return false, s.runBlock(lr, kw)
	}
	return false, nil
}

// runBlock processes statements inside kw's block until the matching
// close brace, then invokes kw's end handler. If a child handler aborts,
// the rest of the block is consumed and the end handler does not run.
func (s *Scanner) runBlock(lr *lineReader, kw *Keyword) error {
	for {
		st, err := lr.next()
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("block %q: %w", kw.name, ErrUnclosedBlock)
		}

		if st.tokens[0] == "}" {
			if kw.end != nil {
				kw.end()
			}
			return nil
		}

		abort, err := s.dispatch(lr, kw.subs, st)
		if err != nil {
			return err
		}
		if abort {
			return s.skipBlock(lr)
		}
	}
}

// skipBlock consumes lines until the current block's close brace,
// accounting for nested blocks. No handlers run for skipped lines.
func (s *Scanner) skipBlock(lr *lineReader) error {
	depth := 1
	for depth > 0 {
		st, err := lr.next()
		if err != nil {
			return err
		}
		if st == nil {
			return ErrUnclosedBlock
		}
		for _, tok := range st.tokens {
			switch tok {
			case "{":
				depth++
			case "}":
				depth--
			}
			if depth == 0 {
				break
			}
		}
	}
	return nil
}

// -------------------------------------------------------------------------
// Line Reader
// -------------------------------------------------------------------------

// statement is one logical configuration line, already tokenized.
type statement struct {
	tokens []string
	line   int
}

// lineReader yields non-empty tokenized statements and supports
// unreading a single statement, which the scanner needs to peek for a
// block-opening brace on its own line.
type lineReader struct {
	sc      *bufio.Scanner
	line    int
	pending *statement
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{sc: bufio.NewScanner(r)}
}

// next returns the next statement, or (nil, nil) at end of input.
func (lr *lineReader) next() (*statement, error) {
	if st := lr.pending; st != nil {
		lr.pending = nil
		return st, nil
	}

	for lr.sc.Scan() {
		lr.line++
		tokens := splitTokens(lr.sc.Text())
		if len(tokens) == 0 {
			continue
		}
		return &statement{tokens: tokens, line: lr.line}, nil
	}

	if err := lr.sc.Err(); err != nil {
		return nil, fmt.Errorf("read configuration line %d: %w", lr.line, err)
	}
	return nil, nil
}

func (lr *lineReader) unread(st *statement) {
	lr.pending = st
}

// consumeLoneBrace consumes the next statement if it is a bare "{",
// reporting whether it did so.
func (lr *lineReader) consumeLoneBrace() (bool, error) {
	st, err := lr.next()
	if err != nil {
		return false, err
	}
	if st == nil {
		return false, nil
	}
	if len(st.tokens) == 1 && st.tokens[0] == "{" {
		return true, nil
	}
	lr.unread(st)
	return false, nil
}

// splitTokens splits one configuration line into tokens. Unquoted '#'
// and '!' start a comment running to end of line; double quotes group
// a single argument.
func splitTokens(line string) []string {
	var tokens []string

	i := 0
	for i < len(line) {
		switch c := line[i]; {
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '#' || c == '!':
			return tokens
		case c == '"':
			i++
			start := i
			for i < len(line) && line[i] != '"' {
				i++
			}
			tokens = append(tokens, line[start:i])
			if i < len(line) {
				i++ // closing quote
			}
		default:
			start := i
			for i < len(line) && !tokenBoundary(line[i]) {
				i++
			}
			tokens = append(tokens, line[start:i])
		}
	}
	return tokens
}

func tokenBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '"' || c == '#' || c == '!'
}
