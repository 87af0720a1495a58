package poly

import (
	"math/big"

	"github.com/2x3systems/goknots/goknots"
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

/***

Binary format (protobuf wire primitives, no field tags):

	Vars[0], Vars[1]             string bytes
	NumTerms                     varint
	NumTerms x {
		Exp[0], Exp[1]           zigzag varint
		Coef                     string bytes ("num" or "num/denom")
	}

***/

// MarshalBinary encodes P for storage in a catalog.
func (P Poly) MarshalBinary() ([]byte, error) {
	buf := proto.NewBuffer(make([]byte, 0, 16+12*len(P.terms)))
	for _, name := range P.Vars {
		if err := buf.EncodeStringBytes(name); err != nil {
			return nil, err
		}
	}
	if err := buf.EncodeVarint(uint64(len(P.terms))); err != nil {
		return nil, err
	}
	for _, t := range P.terms {
		buf.EncodeZigzag64(uint64(int64(t.Exp[0])))
		buf.EncodeZigzag64(uint64(int64(t.Exp[1])))
		if err := buf.EncodeStringBytes(t.Coef.RatString()); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a Poly written by MarshalBinary.
func (P *Poly) UnmarshalBinary(data []byte) error {
	buf := proto.NewBuffer(data)

	var vars Vars
	for i := range vars {
		name, err := buf.DecodeStringBytes()
		if err != nil {
			return errors.Wrap(goknots.ErrUnmarshal, err.Error())
		}
		vars[i] = name
	}

	n, err := buf.DecodeVarint()
	if err != nil {
		return errors.Wrap(goknots.ErrUnmarshal, err.Error())
	}

	terms := make([]Term, 0, n)
	for i := uint64(0); i < n; i++ {
		var t Term
		for j := range t.Exp {
			e, err := buf.DecodeZigzag64()
			if err != nil {
				return errors.Wrap(goknots.ErrUnmarshal, err.Error())
			}
			t.Exp[j] = int32(int64(e))
		}
		coef, err := buf.DecodeStringBytes()
		if err != nil {
			return errors.Wrap(goknots.ErrUnmarshal, err.Error())
		}
		var ok bool
		if t.Coef, ok = new(big.Rat).SetString(coef); !ok {
			return errors.Wrapf(goknots.ErrUnmarshal, "bad coefficient %q", coef)
		}
		terms = append(terms, t)
	}

	*P = collect(vars, terms)
	return nil
}
