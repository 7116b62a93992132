package theory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/staffline/pkg/errors"
)

// Letter is a diatonic note letter, C through B.
type Letter int

const (
	C Letter = iota
	D
	E
	F
	G
	A
	B
)

var letterNames = [...]string{"C", "D", "E", "F", "G", "A", "B"}

// semitones holds the chromatic offset of each letter above C.
var semitones = [...]int{0, 2, 4, 5, 7, 9, 11}

func (l Letter) String() string {
	if l < C || l > B {
		return "?"
	}
	return letterNames[l]
}

// Note is a spelled pitch: letter, accidental and octave (scientific pitch
// notation, middle C is C4).
type Note struct {
	Letter     Letter
	Accidental int // -2 (double flat) .. +2 (double sharp)
	Octave     int
}

// NewNote validates and returns a note.
func NewNote(letter Letter, accidental, octave int) (Note, error) {
	if letter < C || letter > B {
		return Note{}, errors.New(errors.ErrCodeInvalidNote, "invalid degree %d", letter)
	}
	if accidental < -2 || accidental > 2 {
		return Note{}, errors.New(errors.ErrCodeInvalidNote, "invalid accidental %d", accidental)
	}
	if octave < 0 || octave > 9 {
		return Note{}, errors.New(errors.ErrCodeInvalidNote, "octave %d out of range", octave)
	}
	return Note{Letter: letter, Accidental: accidental, Octave: octave}, nil
}

// DiatonicID is the staff position of the note independent of accidental.
// Consecutive ids are one line or space apart.
func (n Note) DiatonicID() int { return n.Octave*7 + int(n.Letter) }

// MIDI returns the MIDI key number (C4 = 60).
func (n Note) MIDI() int {
	return (n.Octave+1)*12 + semitones[n.Letter] + n.Accidental
}

// Equal reports whether two notes are identically spelled.
func (n Note) Equal(o Note) bool { return n == o }

// String formats the note as e.g. "C#4" or "Bbb3".
func (n Note) String() string {
	var acc string
	switch {
	case n.Accidental > 0:
		acc = strings.Repeat("#", n.Accidental)
	case n.Accidental < 0:
		acc = strings.Repeat("b", -n.Accidental)
	}
	return n.Letter.String() + acc + strconv.Itoa(n.Octave)
}

// NoteFromDiatonic returns the natural note at the given diatonic id.
func NoteFromDiatonic(id int) Note {
	oct := id / 7
	l := id % 7
	if l < 0 {
		l += 7
		oct--
	}
	return Note{Letter: Letter(l), Octave: oct}
}

// ParseNote parses scientific pitch notation such as "C4", "F#5", "Bb3"
// or "Ebb2". Letters are case-insensitive.
func ParseNote(s string) (Note, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Note{}, errors.New(errors.ErrCodeInvalidNote, "invalid note %q", s)
	}

	idx := strings.IndexByte("CDEFGAB", strings.ToUpper(s[:1])[0])
	if idx < 0 {
		return Note{}, errors.New(errors.ErrCodeInvalidNote, "invalid degree in %q", s)
	}

	rest := s[1:]
	acc := 0
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			acc++
		} else {
			acc--
		}
		rest = rest[1:]
	}

	oct, err := strconv.Atoi(rest)
	if err != nil {
		return Note{}, errors.Wrap(errors.ErrCodeInvalidNote, err, "invalid octave in %q", s)
	}
	return NewNote(Letter(idx), acc, oct)
}

// NoteTable memoizes note-name parsing. Each document owns its own table.
// The zero value is ready to use. A NoteTable is not safe for concurrent use.
type NoteTable struct {
	byName map[string]Note
}

// NewNoteTable returns an empty lookup table.
func NewNoteTable() *NoteTable {
	return &NoteTable{byName: make(map[string]Note)}
}

// Lookup parses name, reusing a previous result when available.
func (t *NoteTable) Lookup(name string) (Note, error) {
	if t.byName == nil {
		t.byName = make(map[string]Note)
	}
	if n, ok := t.byName[name]; ok {
		return n, nil
	}
	n, err := ParseNote(name)
	if err != nil {
		return Note{}, err
	}
	t.byName[name] = n
	return n, nil
}

// MustLookup is like Lookup but panics on malformed names. It is intended for
// literals in tests and examples.
func (t *NoteTable) MustLookup(name string) Note {
	n, err := t.Lookup(name)
	if err != nil {
		panic(fmt.Sprintf("theory: %v", err))
	}
	return n
}

// Len returns the number of memoized names.
func (t *NoteTable) Len() int { return len(t.byName) }
