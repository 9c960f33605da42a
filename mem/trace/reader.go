// Package trace reads memory access traces and provides tracers that record
// how the pager served them.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/vmsim/mem/vm"
)

// ErrTraceSourceUnavailable is returned when a trace cannot be opened or
// read.
var ErrTraceSourceUnavailable = errors.New("trace source unavailable")

// A Reader parses records of the form `<hex-address> <op>`. Records are
// separated by any whitespace. An op of `W` is a write; any other character
// is a read.
//
// The first record that cannot be parsed ends the trace. This is not an
// error: Next returns false and Malformed reports true.
type Reader struct {
	r         *bufio.Reader
	bytesRead int64
	records   uint64
	done      bool
	malformed bool
	err       error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next access. It returns false at the end of the valid
// trace.
func (r *Reader) Next() (vm.Access, bool) {
	if r.done {
		return vm.Access{}, false
	}

	addr, ok := r.readAddress()
	if !ok {
		r.done = true
		return vm.Access{}, false
	}

	op, ok := r.readOp()
	if !ok {
		r.stop(true)
		return vm.Access{}, false
	}

	r.records++

	return vm.Access{Address: addr, IsWrite: op == 'W'}, true
}

// Err returns the I/O error that stopped the reader, if any. Malformed
// records are not errors.
func (r *Reader) Err() error {
	return r.err
}

// Malformed tells if the trace ended on a record that could not be parsed
// rather than at the end of the input.
func (r *Reader) Malformed() bool {
	return r.malformed
}

// BytesRead returns how many bytes of input have been consumed.
func (r *Reader) BytesRead() int64 {
	return r.bytesRead
}

// Records returns the number of records returned so far.
func (r *Reader) Records() uint64 {
	return r.records
}

func (r *Reader) stop(malformed bool) {
	r.done = true
	r.malformed = r.malformed || (malformed && r.err == nil)
}

func (r *Reader) readByte() (byte, bool) {
	b, err := r.r.ReadByte()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			r.err = fmt.Errorf("%w: %v", ErrTraceSourceUnavailable, err)
		}

		return 0, false
	}

	r.bytesRead++

	return b, true
}

func (r *Reader) unreadByte() {
	if err := r.r.UnreadByte(); err != nil {
		panic(err)
	}

	r.bytesRead--
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func hexValue(b byte) (uint64, bool) {
	switch {
	case b >= '0' && b <= '9':
		return uint64(b - '0'), true
	case b >= 'a' && b <= 'f':
		return uint64(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return uint64(b-'A') + 10, true
	default:
		return 0, false
	}
}

// skipSpace consumes whitespace and returns false at the end of input.
func (r *Reader) skipSpace() bool {
	for {
		b, ok := r.readByte()
		if !ok {
			return false
		}

		if !isSpace(b) {
			r.unreadByte()
			return true
		}
	}
}

func (r *Reader) readAddress() (uint64, bool) {
	if !r.skipSpace() {
		return 0, false
	}

	r.skipHexPrefix()

	var (
		addr   uint64
		digits int
	)

	for {
		b, ok := r.readByte()
		if !ok {
			break
		}

		v, isHex := hexValue(b)
		if !isHex {
			r.unreadByte()
			break
		}

		addr = addr<<4 | v
		digits++

		if addr > vm.AddressMask {
			r.stop(true)
			return 0, false
		}
	}

	if digits == 0 {
		r.stop(true)
		return 0, false
	}

	return addr, true
}

// skipHexPrefix drops a leading 0x. A lone 0 is left for the digit loop.
func (r *Reader) skipHexPrefix() {
	prefix, _ := r.r.Peek(2)
	if len(prefix) < 2 || prefix[0] != '0' ||
		(prefix[1] != 'x' && prefix[1] != 'X') {
		return
	}

	n, _ := r.r.Discard(2)
	r.bytesRead += int64(n)
}

func (r *Reader) readOp() (byte, bool) {
	if !r.skipSpace() {
		return 0, false
	}

	return r.readByte()
}

// A File is a Reader over an opened trace file.
type File struct {
	*Reader

	name string
	file *os.File
	size int64
}

// Open opens the trace file at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTraceSourceUnavailable, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrTraceSourceUnavailable, err)
	}

	if info.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%w: %s is a directory",
			ErrTraceSourceUnavailable, path)
	}

	return &File{
		Reader: NewReader(f),
		name:   path,
		file:   f,
		size:   info.Size(),
	}, nil
}

// Name returns the path the file was opened with.
func (f *File) Name() string {
	return f.name
}

// Size returns the size of the file in bytes.
func (f *File) Size() int64 {
	return f.size
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}
