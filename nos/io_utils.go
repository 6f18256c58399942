package nos

import "io"

func seekerLen(s io.Seeker) (int64, error) {
	curOffset, err := s.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}

	endOffset, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}

	_, err = s.Seek(curOffset, io.SeekStart)
	if err != nil {
		return 0, err
	}

	return endOffset - curOffset, nil
}

// isBinaryMode reports false only for bodies that say they were opened in
// text mode.
func isBinaryMode(v any) bool {
	if m, ok := v.(BinaryModer); ok {
		return m.IsBinaryMode()
	}
	return true
}

// discardBody drains and closes a response body the caller has no use for.
func discardBody(body io.ReadCloser) error {
	if body == nil {
		return nil
	}
	_, err := io.Copy(io.Discard, body)
	if cerr := body.Close(); err == nil {
		err = cerr
	}
	return err
}
