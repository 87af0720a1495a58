package poly

import (
	"math/big"
	"testing"

	"github.com/2x3systems/goknots/goknots"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

var az = Vars{"a", "z"}

func TestCollect(t *testing.T) {
	a := Var(az, 0, 1)
	z := Var(az, 1, 1)

	P := a.Add(z).Add(a).Sub(z)
	require.True(t, P.Equal(Const(az, 2).Mul(a)))
	require.Equal(t, 1, P.NumTerms())

	require.True(t, a.Sub(a).IsZero())
	require.Equal(t, "0", a.Sub(a).String())
}

func TestArithmetic(t *testing.T) {
	a := Var(az, 0, 1)
	z := Var(az, 1, 1)
	ainv := a.MustPow(-1)

	// (a + 1/a)^2 = a^2 + 2 + a^-2
	sq := a.Add(ainv).MustPow(2)
	require.True(t, sq.Equal(a.MustPow(2).Add(Const(az, 2)).Add(a.MustPow(-2))))

	// d*z = a + a^-1 - z
	d, err := a.Add(ainv).Div(z)
	require.NoError(t, err)
	d = d.Sub(Const(az, 1))
	require.True(t, d.Mul(z).Equal(a.Add(ainv).Sub(z)))

	half := Monomial(az, big.NewRat(1, 2), 0, 0)
	require.True(t, half.Add(half).Equal(Const(az, 1)))

	_, err = a.Add(z).Pow(-1)
	require.True(t, errors.Is(err, goknots.ErrNotMonomial))

	_, err = a.Div(a.Add(z))
	require.True(t, errors.Is(err, goknots.ErrNotMonomial))

	require.True(t, a.MustPow(0).Equal(Const(az, 1)))
}

func TestVarsMismatch(t *testing.T) {
	v := Var(Vars{"v", "z"}, 0, 1)
	a := Var(az, 0, 1)
	require.Panics(t, func() { a.Add(v) })

	// constants without named variables combine with any ring
	two := Const(Vars{}, 2)
	require.True(t, a.Mul(two).Equal(a.Add(a)))
}

func TestStringAndParse(t *testing.T) {
	a := Var(az, 0, 1)
	z := Var(az, 1, 1)

	P := a.MustPow(-1).Neg().Sub(Const(az, 2).Mul(a)).Add(z.Mul(a.MustPow(-2)))
	require.Equal(t, "-a^-1 - 2*a + a^-2*z", P.String())

	Q, err := Parse(P.String(), az)
	require.NoError(t, err)
	require.True(t, P.Equal(Q))

	tests := []struct {
		expr string
		want Poly
	}{
		{"a**-1 + a", a.Add(a.MustPow(-1))},
		{"(a + 1/a)/z - 1", a.Add(a.MustPow(-1)).Mul(z.MustPow(-1)).Sub(Const(az, 1))},
		{"-(a+z)^2", a.Add(z).MustPow(2).Neg()},
		{"3/2 * z", Monomial(az, big.NewRat(3, 2), 0, 1)},
		{"0", Zero(az)},
	}
	for _, tc := range tests {
		got, err := Parse(tc.expr, az)
		require.NoError(t, err, tc.expr)
		require.True(t, tc.want.Equal(got), "%s: got %v, want %v", tc.expr, got, tc.want)
	}

	_, err = Parse("a + q", az)
	require.True(t, errors.Is(err, goknots.ErrUnknownVar))

	_, err = Parse("a + (z", az)
	require.True(t, errors.Is(err, goknots.ErrParse))
}

func TestBinaryCodec(t *testing.T) {
	P := MustParse("-2*a - a^-1 + (1 + a^-2)*z + 7/3*a*z^2", az)

	buf, err := P.MarshalBinary()
	require.NoError(t, err)

	var Q Poly
	require.NoError(t, Q.UnmarshalBinary(buf))
	require.True(t, P.Equal(Q))
	require.Equal(t, az, Q.Vars)

	require.Error(t, Q.UnmarshalBinary(buf[:len(buf)-2]))
}
