package repositories

import (
	"chat-feed/errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// recordWriter appends protobuf wire fields. Zero values are omitted like proto3 does.
type recordWriter struct {
	b []byte
}

func (w *recordWriter) string(num protowire.Number, v string) {
	if v == "" {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
	w.b = protowire.AppendString(w.b, v)
}

func (w *recordWriter) strings(num protowire.Number, values []string) {
	for _, v := range values {
		w.b = protowire.AppendTag(w.b, num, protowire.BytesType)
		w.b = protowire.AppendString(w.b, v)
	}
}

func (w *recordWriter) int64(num protowire.Number, v int64) {
	if v == 0 {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, uint64(v))
}

func (w *recordWriter) bool(num protowire.Number, v bool) {
	if !v {
		return
	}
	w.b = protowire.AppendTag(w.b, num, protowire.VarintType)
	w.b = protowire.AppendVarint(w.b, protowire.EncodeBool(v))
}

// recordFields maps field numbers to their destination. Unknown fields are skipped
// so older binaries can read records written by newer ones.
type recordFields struct {
	strings  map[protowire.Number]*string
	repeated map[protowire.Number]*[]string
	ints     map[protowire.Number]*int64
	bools    map[protowire.Number]*bool
}

func (f recordFields) decode(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", errors.ErrCorrupted, protowire.ParseError(n))
		}
		b = b[n:]

		var m int
		switch {
		case typ == protowire.BytesType && f.strings[num] != nil:
			var v string
			v, m = protowire.ConsumeString(b)
			*f.strings[num] = v
		case typ == protowire.BytesType && f.repeated[num] != nil:
			var v string
			v, m = protowire.ConsumeString(b)
			*f.repeated[num] = append(*f.repeated[num], v)
		case typ == protowire.VarintType && f.ints[num] != nil:
			var v uint64
			v, m = protowire.ConsumeVarint(b)
			*f.ints[num] = int64(v)
		case typ == protowire.VarintType && f.bools[num] != nil:
			var v uint64
			v, m = protowire.ConsumeVarint(b)
			*f.bools[num] = protowire.DecodeBool(v)
		default:
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return fmt.Errorf("%w: field %d: %v", errors.ErrCorrupted, num, protowire.ParseError(m))
		}
		b = b[m:]
	}
	return nil
}
