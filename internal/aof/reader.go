package aof

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ferrodb/ferrodb/internal/resp"
)

// Reader replays a previously written AOF file, reusing the same RESP
// parser the server uses for live connections since the on-disk grammar is
// identical to the wire protocol (§4.C).
type Reader struct {
	file *os.File
	buf  []byte
}

// NewReader opens path for replay. A missing file is not an error: it
// returns (nil, nil) so callers can treat "no AOF yet" as an empty log.
func NewReader(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open aof file: %w", err)
	}
	return &Reader{file: file}, nil
}

func (r *Reader) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// fill reads more data from the file into buf, returning io.EOF once the
// file is exhausted and the buffer is empty.
func (r *Reader) fill() error {
	chunk := make([]byte, 64*1024)
	n, err := r.file.Read(chunk)
	if n > 0 {
		r.buf = append(r.buf, chunk[:n]...)
	}
	if err != nil {
		return err
	}
	return nil
}

// ReadCommand returns the next command's argument list, or io.EOF once the
// file is exhausted. A malformed frame returns a wrapped error, letting the
// caller decide whether to treat a truncated tail command as ignorable
// (a common effect of a crash mid-write, §6).
func (r *Reader) ReadCommand() ([][]byte, error) {
	if r == nil {
		return nil, io.EOF
	}
	for {
		cmd, n, err := resp.ParseCommand(r.buf)
		switch err {
		case nil:
			r.buf = r.buf[n:]
			return cmd.Args, nil
		case resp.ErrIncomplete:
			if fillErr := r.fill(); fillErr != nil {
				if fillErr == io.EOF {
					if len(r.buf) == 0 {
						return nil, io.EOF
					}
					return nil, fmt.Errorf("truncated aof command: %w", io.ErrUnexpectedEOF)
				}
				return nil, fillErr
			}
		default:
			return nil, fmt.Errorf("corrupt aof command: %w", err)
		}
	}
}

// LoadAll reads every command in the file in order. A truncated final
// command (the signature of a crash mid-append) is dropped rather than
// failing the whole replay.
func LoadAll(path string) ([][][]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}
	defer r.Close()

	var commands [][][]byte
	for {
		cmd, err := r.ReadCommand()
		if err == io.EOF {
			break
		}
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return commands, err
		}
		commands = append(commands, cmd)
	}
	return commands, nil
}
