// Package lineio provides sequential rune/line scanning over one or more
// input sources, tracking the (source name, line number) of the current
// and last-completed line. It is used by the knitout parser to attribute
// parse errors and original line numbers to their source text.
package lineio

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Location names a line within a named source.
type Location struct {
	Name string
	Line int
}

func (loc Location) String() string { return fmt.Sprintf("%v:%v", loc.Name, loc.Line) }

// Line combines a Location with the accumulated text of that line.
type Line struct {
	Location
	bytes.Buffer
}

func (l Line) String() string { return fmt.Sprintf("%v %q", l.Location, l.Buffer.String()) }

// Reader sequentially scans runes out of a queue of input sources,
// rolling Scan into Last every time a line feed is read, and at the end
// of a source whose final line has no line feed.
type Reader struct {
	rr    runeReader
	Queue []io.Reader
	Last  Line
	Scan  Line
}

// NewReader constructs a Reader over the given sources, read in order.
func NewReader(sources ...io.Reader) *Reader {
	return &Reader{Queue: append([]io.Reader(nil), sources...)}
}

// ReadRune reads one rune from the current source, appending it to Scan,
// and rolling Scan over to Last after a line feed.
func (r *Reader) ReadRune() (rune, int, error) {
	if r.rr == nil && !r.nextSource() {
		return 0, 0, io.EOF
	}

	ru, n, err := r.rr.ReadRune()
	if ru == '\n' {
		r.nextLine()
	} else if ru != 0 {
		r.Scan.WriteRune(ru)
	}

	if ru != 0 {
		return ru, n, nil
	}
	if err == io.EOF && r.nextSource() {
		err = nil
	}
	return 0, n, err
}

func (r *Reader) nextLine() {
	r.Last.Reset()
	r.Last.Name = r.Scan.Name
	r.Last.Line = r.Scan.Line
	r.Last.Write(r.Scan.Bytes())
	r.Scan.Reset()
	r.Scan.Line++
}

func (r *Reader) nextSource() bool {
	if r.Scan.Len() > 0 {
		r.nextLine()
	}
	if r.rr != nil {
		if cl, ok := r.rr.(io.Closer); ok {
			cl.Close()
		}
		r.rr = nil
	}
	if len(r.Queue) > 0 {
		src := r.Queue[0]
		r.Queue = r.Queue[1:]
		r.rr = newRuneReader(src)
		r.Scan.Name = nameOf(src)
		r.Scan.Line = 1
	}
	return r.rr != nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return fmt.Sprintf("<unnamed %T>", obj)
}

type runeReader interface {
	io.Reader
	io.RuneReader
}

func newRuneReader(r io.Reader) runeReader {
	if rr, ok := r.(runeReader); ok {
		return rr
	}
	return struct {
		io.Reader
		io.RuneReader
	}{r, bufio.NewReader(r)}
}

// ReadLines splits s into a slice of lines without trailing newlines,
// preserving a final line even if it has no trailing newline.
func ReadLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
