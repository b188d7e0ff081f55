package tezos

import (
	"errors"
	"fmt"
)

// Decoding errors.
var (
	ErrTruncated        = errors.New("forged operation truncated")
	ErrUnknownOperation = errors.New("unknown operation kind")
	ErrInvalidBool      = errors.New("invalid boolean byte")
	ErrUnsupported      = errors.New("unsupported operation field")
)

const (
	boolTrue  = 0xff
	boolFalse = 0x00

	// Key tag for ed25519 public keys.
	keyTagEd25519 = 0x00

	forgedAddressSize = 1 + HashSize
)

// appendAddress writes an implicit address as a one-byte curve tag and
// the key hash. Addresses that are not tz1, tz2 or tz3 cannot be forged
// here and must be rejected before encoding.
func appendAddress(dst []byte, a Address) []byte {
	var tag byte
	switch a.Kind {
	case TZ1:
		tag = 0x00
	case TZ2:
		tag = 0x01
	case TZ3:
		tag = 0x02
	default:
		panic(fmt.Sprintf("tezos: cannot forge address of kind %s", a.Kind))
	}
	dst = append(dst, tag)
	return append(dst, a.Hash[:]...)
}

func appendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, boolTrue)
	}
	return append(dst, boolFalse)
}

// AppendContent appends the forged bytes of c.
func AppendContent(dst []byte, c Content) []byte {
	dst = append(dst, byte(c.Operation.Kind()))
	dst = appendAddress(dst, c.Source)
	dst = AppendZarith(dst, c.Fee)
	dst = AppendZarith(dst, c.Counter)
	dst = AppendZarith(dst, c.GasLimit)
	dst = AppendZarith(dst, c.StorageLimit)

	switch op := c.Operation.(type) {
	case Transfer:
		dst = AppendZarith(dst, op.Amount)
		dst = appendBool(dst, false) // originated destination
		dst = appendAddress(dst, op.Destination)
		dst = appendBool(dst, false) // parameters
	case Delegation:
		if op.Delegate.IsZero() {
			dst = appendBool(dst, false)
		} else {
			dst = appendBool(dst, true)
			dst = appendAddress(dst, op.Delegate)
		}
	case Reveal:
		dst = append(dst, keyTagEd25519)
		dst = append(dst, op.PublicKey[:]...)
	default:
		panic(fmt.Sprintf("tezos: unhandled operation type %T", c.Operation))
	}
	return dst
}

// EncodeContent returns the forged bytes of c.
func EncodeContent(c Content) []byte {
	return AppendContent(nil, c)
}

// Forge returns the branch followed by every content's forged bytes.
func (l OperationList) Forge() []byte {
	out := append([]byte{}, l.Branch[:]...)
	for _, c := range l.Contents {
		out = AppendContent(out, c)
	}
	return out
}

// decoder reads forged fields from untrusted bytes.
type decoder struct {
	b   []byte
	off int
}

func (d *decoder) readByte() (byte, error) {
	if d.off >= len(d.b) {
		return 0, ErrTruncated
	}
	c := d.b[d.off]
	d.off++
	return c, nil
}

func (d *decoder) readBytes(n int) ([]byte, error) {
	if len(d.b)-d.off < n {
		return nil, ErrTruncated
	}
	out := d.b[d.off : d.off+n]
	d.off += n
	return out, nil
}

func (d *decoder) readZarith() (uint64, error) {
	v, n, err := DecodeZarith(d.b[d.off:])
	if err != nil {
		return 0, err
	}
	d.off += n
	return v, nil
}

func (d *decoder) readBool() (bool, error) {
	c, err := d.readByte()
	if err != nil {
		return false, err
	}
	switch c {
	case boolTrue:
		return true, nil
	case boolFalse:
		return false, nil
	}
	return false, fmt.Errorf("%w: 0x%02x", ErrInvalidBool, c)
}

func (d *decoder) readAddress() (Address, error) {
	b, err := d.readBytes(forgedAddressSize)
	if err != nil {
		return Address{}, err
	}
	var a Address
	switch b[0] {
	case 0x00:
		a.Kind = TZ1
	case 0x01:
		a.Kind = TZ2
	case 0x02:
		a.Kind = TZ3
	default:
		return Address{}, fmt.Errorf("%w: tag 0x%02x", ErrUnknownPrefix, b[0])
	}
	copy(a.Hash[:], b[1:])
	return a, nil
}

func (d *decoder) readContent() (Content, error) {
	tag, err := d.readByte()
	if err != nil {
		return Content{}, err
	}
	kind := OperationKind(tag)
	switch kind {
	case KindReveal, KindTransaction, KindDelegation:
	default:
		return Content{}, fmt.Errorf("%w: %d", ErrUnknownOperation, tag)
	}

	var c Content
	if c.Source, err = d.readAddress(); err != nil {
		return Content{}, fmt.Errorf("source: %w", err)
	}
	for _, f := range []*uint64{&c.Fee, &c.Counter, &c.GasLimit, &c.StorageLimit} {
		if *f, err = d.readZarith(); err != nil {
			return Content{}, err
		}
	}

	switch kind {
	case KindTransaction:
		var op Transfer
		if op.Amount, err = d.readZarith(); err != nil {
			return Content{}, err
		}
		originated, err := d.readBool()
		if err != nil {
			return Content{}, err
		}
		if originated {
			return Content{}, fmt.Errorf("%w: originated destination", ErrUnsupported)
		}
		if op.Destination, err = d.readAddress(); err != nil {
			return Content{}, fmt.Errorf("destination: %w", err)
		}
		params, err := d.readBool()
		if err != nil {
			return Content{}, err
		}
		if params {
			return Content{}, fmt.Errorf("%w: contract parameters", ErrUnsupported)
		}
		c.Operation = op
	case KindDelegation:
		var op Delegation
		set, err := d.readBool()
		if err != nil {
			return Content{}, err
		}
		if set {
			if op.Delegate, err = d.readAddress(); err != nil {
				return Content{}, fmt.Errorf("delegate: %w", err)
			}
		}
		c.Operation = op
	case KindReveal:
		var op Reveal
		keyTag, err := d.readByte()
		if err != nil {
			return Content{}, err
		}
		if keyTag != keyTagEd25519 {
			return Content{}, fmt.Errorf("%w: key tag 0x%02x", ErrUnsupported, keyTag)
		}
		key, err := d.readBytes(len(op.PublicKey))
		if err != nil {
			return Content{}, err
		}
		copy(op.PublicKey[:], key)
		c.Operation = op
	}
	return c, nil
}

// DecodeContent parses exactly one forged operation.
func DecodeContent(b []byte) (Content, error) {
	d := decoder{b: b}
	c, err := d.readContent()
	if err != nil {
		return Content{}, fmt.Errorf("decode operation: %w", err)
	}
	if d.off != len(b) {
		return Content{}, fmt.Errorf("decode operation: %d trailing bytes", len(b)-d.off)
	}
	return c, nil
}

// ParseOperationList parses a forged branch and its operations.
func ParseOperationList(b []byte) (OperationList, error) {
	d := decoder{b: b}
	branch, err := d.readBytes(len(BlockHash{}))
	if err != nil {
		return OperationList{}, fmt.Errorf("decode operation list: branch: %w", err)
	}
	l := OperationList{Branch: BlockHash(branch)}
	for d.off < len(b) {
		c, err := d.readContent()
		if err != nil {
			return OperationList{}, fmt.Errorf("decode operation list: operation %d: %w", len(l.Contents), err)
		}
		l.Contents = append(l.Contents, c)
	}
	return l, nil
}
