// Package grid provides a memory-mapped view over a maze file: a header
// line of "rows cols", followed by rows lines of cols characters each.
package grid

import (
	"bufio"
	"bytes"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

const (
	// Wall is the byte marking a blocked cell.
	Wall = '#'
	// Start is the byte marking the fixed origin cell.
	Start = '@'
	// Goal is the byte marking the fixed destination cell.
	Goal = '%'
	// PathMark replaces a traversable cell's byte once it is part of the
	// reported path.
	PathMark = '*'
)

// Grid is a row-addressable byte grid backed by a memory-mapped file.
//
// Coordinates are (x, y) with x the column and y the row, both 0-based.
// The file's border row/column (index 0 and rows-1/cols-1) is part of the
// mapped bytes but IsWall always reports it blocked regardless of content,
// matching the maze format's convention of a walled border.
type Grid struct {
	file *os.File
	data []byte // mmap'd file contents

	rows, cols int
	// lineLen is the stride between the first byte of consecutive rows
	// in data, i.e. cols+1 to account for the trailing newline.
	lineLen int
	// headerLen is the byte offset of row 0 within data.
	headerLen int
}

// Open maps path into memory and parses its header. The file is opened
// read-write; Close flushes pending writes back to disk.
func Open(path string) (*Grid, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("grid: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("grid: stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		f.Close()
		return nil, fmt.Errorf("grid: %s is empty", path)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("grid: mmap %s: %w", path, err)
	}

	rows, cols, headerLen, err := parseHeader(data)
	if err != nil {
		unix.Munmap(data)
		f.Close()
		return nil, err
	}

	lineLen := cols + 1 // + newline
	if headerLen+rows*lineLen > len(data) {
		unix.Munmap(data)
		f.Close()
		return nil, fmt.Errorf("grid: %s: header declares %dx%d but file is too short", path, rows, cols)
	}

	return &Grid{
		file:      f,
		data:      data,
		rows:      rows,
		cols:      cols,
		lineLen:   lineLen,
		headerLen: headerLen,
	}, nil
}

// parseHeader reads "rows cols\n" from the start of data and returns the
// parsed dimensions plus the byte offset immediately following that line.
func parseHeader(data []byte) (rows, cols, headerLen int, err error) {
	nl := bytes.IndexByte(data, '\n')
	if nl < 0 {
		return 0, 0, 0, fmt.Errorf("grid: missing header line")
	}
	var r, c int
	if _, err := fmt.Fscanf(bytes.NewReader(data[:nl]), "%d %d", &r, &c); err != nil {
		return 0, 0, 0, fmt.Errorf("grid: malformed header %q: %w", data[:nl], err)
	}
	if r <= 0 || c <= 0 {
		return 0, 0, 0, fmt.Errorf("grid: non-positive dimensions %d x %d", r, c)
	}
	return r, c, nl + 1, nil
}

// Rows returns the number of maze rows (the "rows" header field).
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of maze columns (the "cols" header field).
func (g *Grid) Cols() int { return g.cols }

// inBounds reports whether (x, y) addresses a cell of the mapped grid,
// outer border included.
func (g *Grid) inBounds(x, y int) bool {
	return x >= 0 && x < g.cols && y >= 0 && y < g.rows
}

// offset returns the byte index of cell (x, y) within data. Callers must
// have already checked inBounds.
func (g *Grid) offset(x, y int) int {
	return g.headerLen + y*g.lineLen + x
}

// IsWall reports whether (x, y) blocks movement: out-of-bounds cells
// (including the maze's outer border) and '#' cells are walls; everything
// else, including '*' marks left by a prior run, is open.
func (g *Grid) IsWall(x, y int) bool {
	if !g.inBounds(x, y) {
		return true
	}
	if x == 0 || y == 0 || x == g.cols-1 || y == g.rows-1 {
		return true
	}
	return g.data[g.offset(x, y)] == Wall
}

// At returns the raw byte at (x, y). Callers must ensure inBounds.
func (g *Grid) At(x, y int) byte {
	return g.data[g.offset(x, y)]
}

// WriteMark stamps b at (x, y), overwriting whatever traversable
// character was there. Writing over Start or Goal is avoided by callers.
func (g *Grid) WriteMark(x, y int, b byte) {
	g.data[g.offset(x, y)] = b
}

// StartCell is the fixed search origin, per the maze format convention.
func (g *Grid) StartCell() (x, y int) { return 1, 1 }

// GoalCell is the fixed search destination, per the maze format convention.
func (g *Grid) GoalCell() (x, y int) { return g.cols - 2, g.rows - 2 }

// Close flushes the mapping back to disk and releases it.
func (g *Grid) Close() error {
	if g.data == nil {
		return nil
	}
	if err := unix.Msync(g.data, unix.MS_SYNC); err != nil {
		unix.Munmap(g.data)
		g.file.Close()
		g.data = nil
		return fmt.Errorf("grid: msync: %w", err)
	}
	if err := unix.Munmap(g.data); err != nil {
		g.file.Close()
		g.data = nil
		return fmt.Errorf("grid: munmap: %w", err)
	}
	g.data = nil
	return g.file.Close()
}

// bufferedLines is a small helper exposed for tests that want to read the
// mapped contents back out line-by-line without re-opening the file.
func (g *Grid) bufferedLines() []string {
	lines := make([]string, 0, g.rows)
	sc := bufio.NewScanner(bytes.NewReader(g.data[g.headerLen:]))
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
