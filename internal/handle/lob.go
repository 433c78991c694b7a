// Package handle implements the disposable value handles a cursor hands out
// for large objects, XML documents, arrays and structured values.
package handle

import (
	"context"
	"io"
	"unicode/utf8"

	"github.com/sqlkit/sqlcore/internal/lifetime"
	"github.com/sqlkit/sqlcore/internal/xerrors"
	"github.com/sqlkit/sqlcore/sqlerr"
	"github.com/sqlkit/sqlcore/sqltypes"
)

// Reader fetches locator-backed content from the server. Offsets and lengths
// are in bytes for binary objects and in characters for character objects.
type Reader interface {
	ReadLob(ctx context.Context, id uint64, offset int64, length int) ([]byte, error)
}

// readChunk bounds a single ReadLob round trip of String and Reader.
const readChunk = 64 << 10

var (
	_ sqltypes.Locatable = (*Blob)(nil)
	_ sqltypes.Locatable = (*Clob)(nil)
	_ sqltypes.Locatable = (*SQLXML)(nil)
)

type lob struct {
	guard *lifetime.Guard
	r     Reader
	loc   sqltypes.Locator
	code  sqltypes.Code
}

func newLob(owner *lifetime.Guard, r Reader, code sqltypes.Code, loc sqltypes.Locator) lob {
	return lob{
		guard: owner.Attach(code.String()),
		r:     r,
		loc:   loc,
		code:  code,
	}
}

func (l *lob) Code() sqltypes.Code {
	return l.code
}

// Locator allows the handle to be bound back as a parameter value.
func (l *lob) Locator() sqltypes.Locator {
	return l.loc
}

// Free releases the handle. Repeated calls are no-ops.
func (l *lob) Free() {
	l.guard.Free()
}

func (l *lob) State() lifetime.State {
	return l.guard.State()
}

func checkRange(pos int64, n int) error {
	if pos < 1 || n < 0 {
		return xerrors.WithStackTrace(sqlerr.Newf(sqlerr.KindInvalidArgument,
			"invalid range: position %d, length %d", pos, n,
		), xerrors.WithSkipDepth(1))
	}

	return nil
}

// fetch reads up to n units starting at the 1-based position pos.
func (l *lob) fetch(ctx context.Context, pos int64, n int) ([]byte, error) {
	if err := l.guard.Err(); err != nil {
		return nil, err
	}
	if err := checkRange(pos, n); err != nil {
		return nil, err
	}
	if l.loc.Inline {
		return sliceInline(l.loc.Data, pos-1, n), nil
	}
	if pos > l.loc.Length {
		return []byte{}, nil
	}
	b, err := l.r.ReadLob(ctx, l.loc.ID, pos-1, n)
	if err != nil {
		return nil, xerrors.WithStackTrace(err)
	}

	return b, nil
}

func sliceInline(data []byte, offset int64, n int) []byte {
	if offset >= int64(len(data)) {
		return []byte{}
	}
	end := offset + int64(n)
	if end > int64(len(data)) {
		end = int64(len(data))
	}

	return append([]byte{}, data[offset:end]...)
}

// Blob is a binary large object.
type Blob struct {
	lob
}

func NewBlob(owner *lifetime.Guard, r Reader, loc sqltypes.Locator) *Blob {
	return &Blob{lob: newLob(owner, r, sqltypes.TypeBlob, loc)}
}

// Length returns the length in bytes.
func (b *Blob) Length() (int64, error) {
	if err := b.guard.Err(); err != nil {
		return 0, err
	}

	return b.loc.Length, nil
}

// Bytes returns up to n bytes starting at the 1-based position pos.
func (b *Blob) Bytes(ctx context.Context, pos int64, n int) ([]byte, error) {
	return b.fetch(ctx, pos, n)
}

// Reader streams the whole content in chunks.
func (b *Blob) Reader(ctx context.Context) (io.Reader, error) {
	if err := b.guard.Err(); err != nil {
		return nil, err
	}

	return &blobReader{ctx: ctx, b: b, pos: 1}, nil
}

type blobReader struct {
	ctx context.Context
	b   *Blob
	pos int64
	buf []byte
}

func (r *blobReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		if r.pos > r.b.loc.Length {
			return 0, io.EOF
		}
		chunk, err := r.b.fetch(r.ctx, r.pos, readChunk)
		if err != nil {
			return 0, err
		}
		if len(chunk) == 0 {
			return 0, io.EOF
		}
		r.pos += int64(len(chunk))
		r.buf = chunk
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]

	return n, nil
}

// Clob is a character large object. NCLOB values use the same handle.
type Clob struct {
	lob
}

func NewClob(owner *lifetime.Guard, r Reader, code sqltypes.Code, loc sqltypes.Locator) *Clob {
	return &Clob{lob: newLob(owner, r, code, loc)}
}

// Length returns the length in characters.
func (c *Clob) Length() (int64, error) {
	if err := c.guard.Err(); err != nil {
		return 0, err
	}
	if c.loc.Inline {
		return int64(utf8.RuneCount(c.loc.Data)), nil
	}

	return c.loc.Length, nil
}

// Substring returns up to n characters starting at the 1-based position pos.
func (c *Clob) Substring(ctx context.Context, pos int64, n int) (string, error) {
	if err := c.guard.Err(); err != nil {
		return "", err
	}
	if err := checkRange(pos, n); err != nil {
		return "", err
	}
	if c.loc.Inline {
		return substring(c.loc.Data, pos-1, n), nil
	}
	b, err := c.fetch(ctx, pos, n)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func substring(data []byte, offset int64, n int) string {
	s := string(data)
	for i := int64(0); i < offset && s != ""; i++ {
		_, size := utf8.DecodeRuneInString(s)
		s = s[size:]
	}
	end := 0
	for i := 0; i < n && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}

	return s[:end]
}

// String reads the whole content.
func (c *Clob) String(ctx context.Context) (string, error) {
	return readAll(ctx, &c.lob)
}

func readAll(ctx context.Context, l *lob) (string, error) {
	if err := l.guard.Err(); err != nil {
		return "", err
	}
	if l.loc.Inline {
		return string(l.loc.Data), nil
	}
	var b []byte
	for pos := int64(1); pos <= l.loc.Length; {
		chunk, err := l.fetch(ctx, pos, readChunk)
		if err != nil {
			return "", err
		}
		if len(chunk) == 0 {
			break
		}
		b = append(b, chunk...)
		pos += int64(utf8.RuneCount(chunk))
	}

	return string(b), nil
}

// SQLXML is an XML document value.
type SQLXML struct {
	lob
}

func NewSQLXML(owner *lifetime.Guard, r Reader, loc sqltypes.Locator) *SQLXML {
	return &SQLXML{lob: newLob(owner, r, sqltypes.TypeSQLXML, loc)}
}

// String reads the whole document.
func (x *SQLXML) String(ctx context.Context) (string, error) {
	return readAll(ctx, &x.lob)
}
