package binaryserializer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxItems is the number of buffers to keep in the free
// list to use for binary serialization and deserialization.
const maxItems = 1024

// ErrMalformedLength is returned when a length prefix exceeds the maximum
// the reader allows.
var ErrMalformedLength = errors.New("malformed length prefix")

// Borrow returns a byte slice from the free list with a length of 8. A new
// buffer is allocated if there are not any available on the free list.
func Borrow() []byte {
	var buf []byte
	select {
	case buf = <-binaryFreeList:
	default:
		buf = make([]byte, 8)
	}
	return buf[:8]
}

// Return puts the provided byte slice back on the free list. The buffer MUST
// have been obtained via the Borrow function and therefore have a cap of 8.
func Return(buf []byte) {
	select {
	case binaryFreeList <- buf:
	default:
		// Let it go to the garbage collector.
	}
}

// Uint8 reads a single byte from the provided reader.
func Uint8(r io.Reader) (uint8, error) {
	buf := Borrow()[:1]
	defer Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, errors.WithStack(err)
	}
	return buf[0], nil
}

// Uint32 reads four little-endian bytes from the provided reader.
func Uint32(r io.Reader) (uint32, error) {
	buf := Borrow()[:4]
	defer Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// Uint64 reads eight little-endian bytes from the provided reader.
func Uint64(r io.Reader) (uint64, error) {
	buf := Borrow()[:8]
	defer Return(buf)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, errors.WithStack(err)
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// Bool reads a single byte and interprets any non-zero value as true.
func Bool(r io.Reader) (bool, error) {
	b, err := Uint8(r)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// FixedBytes reads exactly len(dst) bytes into dst.
func FixedBytes(r io.Reader, dst []byte) error {
	_, err := io.ReadFull(r, dst)
	return errors.WithStack(err)
}

// VarBytes reads a uint32 length prefix followed by that many bytes. Lengths
// above maxLength are rejected with ErrMalformedLength.
func VarBytes(r io.Reader, maxLength uint32) ([]byte, error) {
	length, err := Uint32(r)
	if err != nil {
		return nil, err
	}
	if length > maxLength {
		return nil, errors.Wrapf(ErrMalformedLength, "length %d is above the maximum of %d", length, maxLength)
	}
	data := make([]byte, length)
	if err := FixedBytes(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// PutUint8 writes the provided uint8 to the given writer.
func PutUint8(w io.Writer, val uint8) error {
	buf := Borrow()[:1]
	defer Return(buf)
	buf[0] = val
	_, err := w.Write(buf)
	return errors.WithStack(err)
}

// PutUint32 writes the provided uint32 to the given writer in little-endian
// byte order.
func PutUint32(w io.Writer, val uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], val)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// PutUint64 writes the provided uint64 to the given writer in little-endian
// byte order.
func PutUint64(w io.Writer, val uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], val)
	_, err := w.Write(buf[:])
	return errors.WithStack(err)
}

// PutBool writes true as 1 and false as 0.
func PutBool(w io.Writer, val bool) error {
	if val {
		return PutUint8(w, 1)
	}
	return PutUint8(w, 0)
}

// PutFixedBytes writes data as-is.
func PutFixedBytes(w io.Writer, data []byte) error {
	_, err := w.Write(data)
	return errors.WithStack(err)
}

// PutVarBytes writes a uint32 length prefix followed by data.
func PutVarBytes(w io.Writer, data []byte) error {
	if err := PutUint32(w, uint32(len(data))); err != nil {
		return err
	}
	return PutFixedBytes(w, data)
}

// binaryFreeList provides a free list of buffers to use for serializing and
// deserializing primitive integer values to and from io.Readers and io.Writers.
var binaryFreeList = make(chan []byte, maxItems)
