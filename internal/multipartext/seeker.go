package multipartext

import (
	"fmt"
	"io"
	"sort"
)

// part is one of the readers of a multiReadSeeker, located at start within the concatenation.
type part struct {
	r     io.ReadSeeker
	start int64
	size  int64
}

// multiReadSeeker serves the logical concatenation of its parts. Every Read seeks the underlying part, so the
// parts must not be used by anyone else.
type multiReadSeeker struct {
	parts  []part
	offset int64
	size   int64
}

// MultiReadSeeker returns a ReadSeeker that's the logical concatenation of the provided readers.
// The size of each reader is determined up front, which rewinds it.
func MultiReadSeeker(readers ...io.ReadSeeker) (io.ReadSeeker, error) {
	m := &multiReadSeeker{}
	for _, r := range readers {
		n, err := Size(r)
		if err != nil {
			return nil, err
		}
		m.parts = append(m.parts, part{r: r, start: m.size, size: n})
		m.size += n
	}
	return m, nil
}

func (m *multiReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.offset + offset
	case io.SeekEnd:
		abs = m.size + offset
	default:
		return 0, fmt.Errorf("seek: invalid whence %d", whence)
	}

	if abs < 0 {
		return 0, fmt.Errorf("seek: invalid negative offset %d", abs)
	}
	if abs > m.size {
		return 0, fmt.Errorf("seek: offset %d beyond size %d", abs, m.size)
	}

	m.offset = abs
	return abs, nil
}

func (m *multiReadSeeker) Read(p []byte) (int, error) {
	if m.offset >= m.size {
		return 0, io.EOF
	}

	// The first part ending after the current offset. Empty parts never qualify.
	i := sort.Search(len(m.parts), func(i int) bool {
		return m.parts[i].start+m.parts[i].size > m.offset
	})
	pt := m.parts[i]

	if _, err := pt.r.Seek(m.offset-pt.start, io.SeekStart); err != nil {
		return 0, err
	}
	if rest := pt.start + pt.size - m.offset; int64(len(p)) > rest {
		p = p[:rest]
	}

	n, err := pt.r.Read(p)
	m.offset += int64(n)
	if err == io.EOF {
		if n == 0 {
			// The part shrank since its size was taken.
			return 0, io.ErrUnexpectedEOF
		}
		err = nil
	}
	return n, err
}
