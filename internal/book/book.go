// Package book implements a line book: each line is a sequence of UCI moves
// from the starting position, and a lookup picks one line that extends the
// moves played so far.
package book

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"github.com/hailam/megalodon/internal/board"
)

// ErrNoBook is returned when a source holds no usable line.
var ErrNoBook = errors.New("book: no lines")

// Book represents an opening book.
type Book struct {
	lines [][]string
}

// New creates an empty book.
func New() *Book {
	return &Book{}
}

// LoadFile loads a book from a file.
func LoadFile(filename string) (*Book, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open book: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Load reads one line of space-separated moves per text line. Blank lines,
// comments starting with '#' and lines holding anything other than move
// text (a CSV header, say) are skipped.
func Load(r io.Reader) (*Book, error) {
	b := New()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		b.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read book: %w", err)
	}
	if b.Size() == 0 {
		return nil, ErrNoBook
	}
	return b, nil
}

// Add appends one line to the book and reports whether it was accepted.
func (b *Book) Add(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return false
	}
	moves := strings.Fields(strings.Trim(line, `"`))
	for _, m := range moves {
		if _, err := board.ParseMove(m); err != nil {
			return false
		}
	}
	b.lines = append(b.lines, moves)
	return true
}

// Lookup returns the next move of a uniformly chosen line that starts with
// played and is longer than it. rnd may be nil to use the global source.
func (b *Book) Lookup(played []string, rnd *rand.Rand) (string, bool) {
	if b == nil {
		return "", false
	}

	var candidates [][]string
	for _, line := range b.lines {
		if len(line) > len(played) && hasPrefix(line, played) {
			candidates = append(candidates, line)
		}
	}
	if len(candidates) == 0 {
		return "", false
	}

	var i int
	if rnd != nil {
		i = rnd.Intn(len(candidates))
	} else {
		i = rand.Intn(len(candidates))
	}
	return candidates[i][len(played)], true
}

// Probe is Lookup resolved against pos. A book move that is not legal in
// pos is treated as a miss.
func (b *Book) Probe(pos *board.Position, played []string, rnd *rand.Rand) (board.Move, bool) {
	text, ok := b.Lookup(played, rnd)
	if !ok {
		return board.NoMove, false
	}
	m, err := board.FindMove(pos, text)
	if err != nil {
		return board.NoMove, false
	}
	return m, true
}

// Size returns the number of lines in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}

func hasPrefix(line, played []string) bool {
	for i, m := range played {
		if line[i] != m {
			return false
		}
	}
	return true
}
