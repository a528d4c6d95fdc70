package pagination

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	c := Cursor{Did: "ds-123", Dsv: 4, Off: 50, Ps: 25, Fh: FilterHash("North", "ALL")}
	tok, err := EncodeCursor(c)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := DecodeCursor(tok)
	require.NoError(t, err)
	require.Equal(t, "ds-123", got.Did)
	require.Equal(t, int64(4), got.Dsv)
	require.Equal(t, 50, got.Off)
	require.Equal(t, 25, got.Ps)
	require.Equal(t, c.Fh, got.Fh)
	require.Equal(t, 1, got.V)
	require.NotZero(t, got.Iat)
}

func TestEncode_RejectsInvalid(t *testing.T) {
	_, err := EncodeCursor(Cursor{Ps: 10, Off: 0})
	require.Error(t, err) // missing dataset id

	_, err = EncodeCursor(Cursor{Did: "ds", Ps: 0})
	require.Error(t, err) // page size must be positive

	_, err = EncodeCursor(Cursor{Did: "ds", Ps: 10, Off: -1})
	require.Error(t, err)
}

func TestDecode_RejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("")
	require.Error(t, err)

	_, err = DecodeCursor("!!!not-base64!!!")
	require.Error(t, err)

	_, err = DecodeCursor("bm90LWpzb24")
	require.Error(t, err)
}

func TestNextOffset(t *testing.T) {
	require.Equal(t, 75, NextOffset(50, 25))
	require.Equal(t, 50, NextOffset(50, 0))
	require.Equal(t, 0, NextOffset(-5, 0))
}

func TestFilterHash_Stability(t *testing.T) {
	a := FilterHash("North", "", "x,y", "2025-06")
	b := FilterHash("North", "", "x,y", "2025-06")
	c := FilterHash("North", "", "x,y", "2025-07")
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}
