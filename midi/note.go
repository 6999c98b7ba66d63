package midi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownNote is returned for names that are not scientific pitch
// notation within the MIDI range
var ErrUnknownNote = errors.New("unknown note")

// Pitch classes from C, semitones
var pitchClasses = map[byte]int{
	'C': 0,
	'D': 2,
	'E': 4,
	'F': 5,
	'G': 7,
	'A': 9,
	'B': 11,
}

var sharpNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// ParseNote converts a name like "C4", "F#3" or "Bb2" to a MIDI note
// number. C4 is 60; octaves run from -1 to 9.
func ParseNote(name string) (uint8, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	pc, ok := pitchClasses[upper(s[0])]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	s = s[1:]

	for len(s) > 0 && (s[0] == '#' || s[0] == 'b') {
		if s[0] == '#' {
			pc++
		} else {
			pc--
		}
		s = s[1:]
	}

	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}

	n := (octave+1)*12 + pc
	if n < 0 || n > 127 {
		return 0, fmt.Errorf("%w: %q out of range", ErrUnknownNote, name)
	}
	return uint8(n), nil
}

// NoteName returns the sharp-spelled name of a MIDI note number
func NoteName(n uint8) string {
	return fmt.Sprintf("%s%d", sharpNames[int(n)%12], int(n)/12-1)
}

// Transpose shifts a note name by semitones and returns the new name
func Transpose(name string, semitones int) (string, error) {
	if semitones == 0 {
		return name, nil
	}
	n, err := ParseNote(name)
	if err != nil {
		return "", err
	}
	shifted := int(n) + semitones
	if shifted < 0 || shifted > 127 {
		return "", fmt.Errorf("%w: %q%+d out of range", ErrUnknownNote, name, semitones)
	}
	return NoteName(uint8(shifted)), nil
}

// Velocity maps a 0-1 gain to a MIDI velocity (1-127).
// Anything audible gets at least 1 so NoteOn never becomes NoteOff.
func Velocity(v float64) uint8 {
	if v <= 0 {
		return 1
	}
	if v >= 1 {
		return 127
	}
	vel := int(v*127 + 0.5)
	if vel < 1 {
		vel = 1
	}
	return uint8(vel)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
