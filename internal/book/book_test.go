package book

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hailam/megalodon/internal/board"
)

const testBook = `0
# open games
e2e4 e7e5 g1f3 b8c6
e2e4 e7e5 f1c4
e2e4 c7c5

d2d4 d7d5 c2c4
"d2d4 g8f6"
`

func loadTestBook(t *testing.T) *Book {
	t.Helper()
	b, err := Load(strings.NewReader(testBook))
	if err != nil {
		t.Fatalf("Failed to load book: %v", err)
	}
	return b
}

func TestLoad(t *testing.T) {
	b := loadTestBook(t)
	if b.Size() != 5 {
		t.Errorf("Expected book size 5, got %d", b.Size())
	}
}

func TestLoadEmpty(t *testing.T) {
	_, err := Load(strings.NewReader("moves\n\n# nothing\n"))
	if !errors.Is(err, ErrNoBook) {
		t.Errorf("Load of empty book: err = %v, want ErrNoBook", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	if err := os.WriteFile(path, []byte(testBook), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if b.Size() != 5 {
		t.Errorf("Expected book size 5, got %d", b.Size())
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestLookup(t *testing.T) {
	b := loadTestBook(t)
	tests := []struct {
		played []string
		want   []string // any of these
	}{
		{nil, []string{"e2e4", "d2d4"}},
		{[]string{"e2e4"}, []string{"e7e5", "c7c5"}},
		{[]string{"e2e4", "e7e5"}, []string{"g1f3", "f1c4"}},
		{[]string{"d2d4", "d7d5"}, []string{"c2c4"}},
	}
	rnd := rand.New(rand.NewSource(1))
	for _, tt := range tests {
		for range 20 {
			got, ok := b.Lookup(tt.played, rnd)
			if !ok {
				t.Fatalf("Lookup(%v) missed", tt.played)
			}
			found := false
			for _, w := range tt.want {
				found = found || got == w
			}
			if !found {
				t.Errorf("Lookup(%v) = %s, want one of %v", tt.played, got, tt.want)
			}
		}
	}
}

func TestLookupMiss(t *testing.T) {
	b := loadTestBook(t)
	misses := [][]string{
		{"g1f3"},
		{"e2e4", "c7c5"},                 // line ends here
		{"e2e4", "e7e5", "f1c4", "a7a6"}, // longer than any line
	}
	for _, played := range misses {
		if m, ok := b.Lookup(played, nil); ok {
			t.Errorf("Lookup(%v) = %s, want miss", played, m)
		}
	}

	var empty *Book
	if _, ok := empty.Lookup(nil, nil); ok {
		t.Error("Expected miss on nil book")
	}
}

func TestLookupCoversAllLines(t *testing.T) {
	b := loadTestBook(t)
	rnd := rand.New(rand.NewSource(7))
	seen := map[string]bool{}
	for range 200 {
		m, _ := b.Lookup([]string{"e2e4"}, rnd)
		seen[m] = true
	}
	if !seen["e7e5"] || !seen["c7c5"] {
		t.Errorf("uniform choice never picked some line: %v", seen)
	}
}

func TestProbe(t *testing.T) {
	b := loadTestBook(t)
	pos := board.NewPosition()
	m, ok := b.Probe(&pos, nil, rand.New(rand.NewSource(3)))
	if !ok {
		t.Fatal("Expected to find move in book")
	}
	if s := m.String(); s != "e2e4" && s != "d2d4" {
		t.Errorf("Probe = %s", s)
	}

	bad := New()
	bad.Add("e2e5")
	if _, ok := bad.Probe(&pos, nil, nil); ok {
		t.Error("illegal book move accepted")
	}
}
