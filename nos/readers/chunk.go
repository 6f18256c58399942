package readers

import "io"

// ReadFill reads from r until buf is full or r returns an error.
func ReadFill(r io.Reader, buf []byte) (n int, err error) {
	var nn int
	for n < len(buf) && err == nil {
		nn, err = r.Read(buf[n:])
		n += nn
	}
	return n, err
}

// ForEachChunk reads r to EOF in chunks of chunkSize bytes, handing every
// chunk to fn. The slice passed to fn is reused between calls. It returns
// the number of bytes consumed.
func ForEachChunk(r io.Reader, chunkSize int, fn func([]byte)) (int64, error) {
	if chunkSize <= 0 {
		chunkSize = 64 * 1024
	}
	buf := make([]byte, chunkSize)
	var total int64
	for {
		n, err := ReadFill(r, buf)
		if n > 0 {
			fn(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}
