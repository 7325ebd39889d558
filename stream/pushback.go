package stream

// Pushback wraps r so the next read sees b before anything else in r. It
// exists for self-describing categories (Optional, Variant, Result) that
// must read one prefix byte to decide which decode path to take, then hand
// the reader — prefix byte included — to a nested codec whose Read always
// expects to consume its own prefix.
func Pushback(r Reader, b byte) Reader {
	return &pushbackReader{first: b, has: true, r: r}
}

type pushbackReader struct {
	first byte
	has   bool
	r     Reader
}

func (p *pushbackReader) Ensure(n int) bool {
	if p.has {
		if n <= 1 {
			return true
		}
		return p.r.Ensure(n - 1)
	}
	return p.r.Ensure(n)
}

func (p *pushbackReader) ReadByte() (byte, error) {
	if p.has {
		p.has = false
		return p.first, nil
	}
	return p.r.ReadByte()
}

func (p *pushbackReader) Read(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if p.has {
		p.has = false
		buf[0] = p.first
		if len(buf) == 1 {
			return nil
		}
		return p.r.Read(buf[1:])
	}
	return p.r.Read(buf)
}

func (p *pushbackReader) Skip(n int) error {
	if p.has && n > 0 {
		p.has = false
		n--
	}
	if n == 0 {
		return nil
	}
	return p.r.Skip(n)
}

func (p *pushbackReader) GetHandle(ref int64) (int64, error) { return p.r.GetHandle(ref) }
