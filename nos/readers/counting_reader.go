package readers

import "io"

func NewCountingReader(in io.Reader) *CountingReader {
	return &CountingReader{in: in}
}

// CountingReader reports how many bytes went through it, e.g. for a
// download summary.
type CountingReader struct {
	in   io.Reader
	read int64
}

func (cr *CountingReader) Read(b []byte) (int, error) {
	n, err := cr.in.Read(b)
	cr.read += int64(n)
	return n, err
}

func (cr *CountingReader) BytesRead() int64 {
	return cr.read
}
