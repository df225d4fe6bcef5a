package wire

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
)

// ErrCompression is returned when the deflate stream fails.
var ErrCompression = errors.New("wire: compression failed")

// Compress deflates b at the maximum compression level. The output
// buffer starts with a 1 KiB capacity and is then grown by bytes.Buffer's
// own policy; it does not grow in fixed 1 KiB increments.
func Compress(b []byte) ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, 1024))

	w, err := zlib.NewWriterLevel(buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	if _, err := w.Write(b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream produced by Compress. It is used by
// tests and by any tooling that needs to inspect what was sent on the
// wire; the controller side does its own inflate independently.
func Decompress(b []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCompression, err)
	}
	defer r.Close()

	out := bytes.NewBuffer(make([]byte, 0, 1024))
	buf := make([]byte, 1024)
	for {
		n, rerr := r.Read(buf)
		if n > 0 {
			out.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("%w: %v", ErrCompression, rerr)
		}
	}
	return out.Bytes(), nil
}
