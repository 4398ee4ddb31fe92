package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleEntries() []Entry {
	return []Entry{
		{Dest: 2, Metric: 1, NextHop: 1},
		{Dest: 3, Metric: 2, NextHop: 2},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	integrity := DigestIntegrity{}
	packet := Encode(1, 2, sampleEntries(), integrity)

	header, entries, err := Decode(packet, 2, integrity)
	require.NoError(t, err)
	require.Equal(t, Command, header.Command)
	require.Equal(t, Version, header.Version)
	require.Equal(t, 2, header.DestNeighbor)

	require.Len(t, entries, 2)
	require.Equal(t, 1, entries[0].Source)
	require.Equal(t, 2, entries[0].Dest)
	require.Equal(t, 1, entries[0].Metric)
	require.Equal(t, 1, entries[0].NextHop)
	require.Equal(t, 1, entries[1].Source)
	require.Equal(t, 3, entries[1].Dest)
	require.Equal(t, 2, entries[1].Metric)
}

func TestDecodeRejectsBadTag(t *testing.T) {
	integrity := DigestIntegrity{}
	packet := Encode(1, 2, sampleEntries(), integrity)
	packet[0] ^= 0xFF // corrupt a byte of the tag

	_, _, err := Decode(packet, 2, integrity)
	require.Error(t, err)
}

func TestDecodeRejectsWrongDestination(t *testing.T) {
	integrity := DigestIntegrity{}
	packet := Encode(1, 2, sampleEntries(), integrity)

	_, _, err := Decode(packet, 5, integrity)
	require.Error(t, err)
}

func TestDecodeRejectsZeroEntries(t *testing.T) {
	integrity := DigestIntegrity{}
	packet := Encode(1, 2, nil, integrity)

	_, _, err := Decode(packet, 2, integrity)
	require.Error(t, err)
}

func TestDecodeRejectsShortPacket(t *testing.T) {
	_, _, err := Decode([]byte("short"), 1, DigestIntegrity{})
	require.Error(t, err)
}

func TestDecodeRejectsMalformedField(t *testing.T) {
	integrity := DigestIntegrity{}
	packet := Encode(1, 2, sampleEntries(), integrity)
	// Flip a bit-string character in the body into something non-binary,
	// then re-tag so only the field itself is malformed.
	body := packet[TagLength:]
	body[5] = 'x'
	newTag := []byte(integrity.Tag(body))
	corrupted := append(newTag, body...)

	_, _, err := Decode(corrupted, 2, integrity)
	require.Error(t, err)
}

func TestBitsRoundTrip(t *testing.T) {
	for _, v := range []int{0, 1, 16, 255, 65535} {
		s := bitsEncode(v, 32)
		require.Len(t, s, 32)
		got, err := bitsDecode(s)
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}
