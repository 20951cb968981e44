package mcp

import (
	"bytes"
	"strconv"
	"strings"
)

// Decoder incrementally splits the producer's byte stream into frame bodies.
//
// Header-prefixed framing is attempted first at the buffer head: header
// lines terminated by a blank line, with a case-insensitive Content-Length
// header declaring how many body bytes follow. When no such block is
// buffered, the head is consumed as newline-delimited JSON instead. The two
// framings may alternate within one connection.
//
// The internal buffer holds whatever prefix of a frame has arrived so far.
// It has no upper bound: a producer that never terminates a frame grows it
// without limit.
type Decoder struct {
	buf bytes.Buffer
}

// Feed appends bytes received from the socket.
func (d *Decoder) Feed(p []byte) {
	d.buf.Write(p)
}

// Next extracts the next complete frame body. It returns ok == false when
// nothing complete is buffered; feed more input and call again. The returned
// slice is owned by the caller.
func (d *Decoder) Next() ([]byte, bool) {
	for {
		data := d.buf.Bytes()
		if len(data) == 0 {
			return nil, false
		}

		if header, bodyStart := splitHeaderBlock(data); bodyStart >= 0 {
			if n, ok := contentLength(header); ok {
				if len(data) < bodyStart+n {
					// Full header but the body has not arrived
					// yet; consume nothing until it does.
					return nil, false
				}
				body := make([]byte, n)
				copy(body, data[bodyStart:bodyStart+n])
				d.buf.Next(bodyStart + n)
				return body, true
			}
		}

		idx := bytes.IndexByte(data, '\n')
		if idx < 0 {
			return nil, false
		}
		line := bytes.TrimSpace(data[:idx])
		if len(line) == 0 {
			d.buf.Next(idx + 1)
			continue
		}
		out := make([]byte, len(line))
		copy(out, line)
		d.buf.Next(idx + 1)
		return out, true
	}
}

// splitHeaderBlock locates the blank line ending a header block at the head
// of buf. It returns the header bytes and the body offset, or -1 when no
// complete block is buffered. Both "\r\n" and bare "\n" line endings are
// accepted.
func splitHeaderBlock(buf []byte) ([]byte, int) {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] != '\n' {
			continue
		}
		if buf[i+1] == '\n' {
			return buf[:i+1], i + 2
		}
		if buf[i+1] == '\r' && i+2 < len(buf) && buf[i+2] == '\n' {
			return buf[:i+1], i + 3
		}
	}
	return nil, -1
}

// contentLength extracts the Content-Length value from a header block. It
// reports false when the block is not made of header-shaped lines or carries
// no usable Content-Length, in which case the caller falls back to line
// framing over the same bytes.
func contentLength(header []byte) (int, bool) {
	length, found := 0, false
	for _, line := range bytes.Split(header, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		key, value, ok := bytes.Cut(line, []byte(":"))
		if !ok || !isHeaderKey(bytes.TrimSpace(key)) {
			return 0, false
		}
		if strings.EqualFold(string(bytes.TrimSpace(key)), "Content-Length") {
			n, err := strconv.Atoi(string(bytes.TrimSpace(value)))
			if err != nil || n < 0 {
				return 0, false
			}
			length, found = n, true
		}
	}
	return length, found
}

func isHeaderKey(key []byte) bool {
	if len(key) == 0 {
		return false
	}
	for _, b := range key {
		switch {
		case b >= 'a' && b <= 'z':
		case b >= 'A' && b <= 'Z':
		case b >= '0' && b <= '9':
		case b == '-' || b == '_':
		default:
			return false
		}
	}
	return true
}
