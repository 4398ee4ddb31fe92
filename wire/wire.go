// Package wire implements the codec for ripd's update packets.
//
// A packet is a single UDP payload: a 10-byte ASCII-hex content-integrity
// tag, followed by a text body of newline-delimited fields. Every field is
// rendered as the ASCII digits '0'/'1' of its fixed-width binary
// representation rather than as raw bytes — this is the field layout the
// reference implementation speaks. The integrity tag comes from the
// pluggable Integrity below (SHA-256 by default), so a capture from the
// reference implementation only verifies when it is given an Integrity
// that matches the reference digest.
//
//	tag(10 hex)  command(8 bits) version(8 bits) destNeighbor(16 bits) "\n"
//	  { source(16 bits) routeTag(16 bits) "\n"
//	    dest(32 bits) "\n"
//	    mask(32 bits, always zero) "\n"
//	    nextHop(32 bits) "\n"
//	    metric(32 bits) "\n"
//	  } * N
package wire

import (
	"strings"

	"github.com/opencontainers/go-digest"
	"github.com/pkg/errors"
)

const (
	// Command is the only supported message type: a RIP response/advertisement.
	Command = 2
	// Version is the only supported wire version.
	Version = 2
	// Infinity is the metric value denoting "unreachable".
	Infinity = 16
	// TagLength is the width in bytes of the content-integrity prefix.
	TagLength = 10
	// MaxPacketBytes bounds the receive buffer; the control loop never
	// reads more than this many bytes from a single datagram.
	MaxPacketBytes = 4096

	headerBits      = 32 // command(8) + version(8) + destNeighbor(16)
	entryHeaderBits = 32 // source(16) + routeTag(16)
	fieldBits32     = 32
)

// Integrity computes the content-integrity tag carried at the front of
// every packet. The choice of digest is external to the codec: Tag must
// be deterministic and collision-resistant enough to catch corruption, but
// nothing in the codec depends on which algorithm produced it.
type Integrity interface {
	Tag(body []byte) string
}

// DigestIntegrity computes the tag as the first TagLength hex characters
// of a content-addressed digest over the body.
type DigestIntegrity struct{}

// Tag implements Integrity.
func (DigestIntegrity) Tag(body []byte) string {
	sum := digest.FromBytes(body).Encoded()
	if len(sum) < TagLength {
		return sum
	}
	return sum[:TagLength]
}

// Entry is one route advertised in an update packet.
type Entry struct {
	// Source is the router id that originated this entry (the header of
	// the entry block, not the packet header).
	Source int
	// RouteTag is always zero on this wire; carried for frame compatibility.
	RouteTag int
	// Dest is the destination router id this entry describes.
	Dest int
	// Mask is always zero on this wire; destinations are opaque ids, not
	// address prefixes.
	Mask uint32
	// NextHop carries the advertiser's own first_hop for Dest. Decoded for
	// diagnostics only — see the next-hop note in DESIGN.md for why it
	// never gates acceptance.
	NextHop int
	// Metric is the advertised cost; Infinity means unreachable. The codec
	// carries the value as given and does not clamp it.
	Metric int
}

// Header is the fixed prefix of an update packet's body.
type Header struct {
	Command      int
	Version      int
	DestNeighbor int
}

// Encode builds one update packet addressed to destNeighbor, advertising
// entries as given by the caller (the caller is responsible for applying
// poisoned reverse before calling Encode).
func Encode(myID, destNeighbor int, entries []Entry, integrity Integrity) []byte {
	var body strings.Builder
	body.WriteString(bitsEncode(Command, 8))
	body.WriteString(bitsEncode(Version, 8))
	body.WriteString(bitsEncode(destNeighbor, 16))
	body.WriteByte('\n')

	for _, e := range entries {
		body.WriteString(bitsEncode(myID, 16))
		body.WriteString(bitsEncode(e.RouteTag, 16))
		body.WriteByte('\n')
		body.WriteString(bitsEncode(e.Dest, fieldBits32))
		body.WriteByte('\n')
		body.WriteString(bitsEncode(int(e.Mask), fieldBits32))
		body.WriteByte('\n')
		body.WriteString(bitsEncode(e.NextHop, fieldBits32))
		body.WriteByte('\n')
		body.WriteString(bitsEncode(e.Metric, fieldBits32))
		body.WriteByte('\n')
	}

	bodyBytes := []byte(body.String())
	tag := integrity.Tag(bodyBytes)
	out := make([]byte, 0, len(tag)+len(bodyBytes))
	out = append(out, tag...)
	out = append(out, bodyBytes...)
	return out
}

// Decode verifies the integrity tag and parses a packet's header and
// entries. It rejects anything that isn't a well-formed, addressed-to-us
// response packet; the caller is expected to drop the packet and log on
// error, per the transient-packet-error taxonomy.
func Decode(data []byte, myID int, integrity Integrity) (Header, []Entry, error) {
	if len(data) < TagLength {
		return Header{}, nil, errors.New("packet shorter than integrity tag")
	}
	tag := string(data[:TagLength])
	body := data[TagLength:]

	if want := integrity.Tag(body); want != tag {
		return Header{}, nil, errors.New("integrity tag mismatch")
	}

	lines := strings.Split(string(body), "\n")
	if len(lines) < 2 {
		return Header{}, nil, errors.New("packet has no body")
	}

	headerLine := lines[0]
	if len(headerLine) != headerBits {
		return Header{}, nil, errors.Errorf("malformed header: want %d bits, got %d", headerBits, len(headerLine))
	}
	command, err := bitsDecode(headerLine[0:8])
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "malformed command field")
	}
	version, err := bitsDecode(headerLine[8:16])
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "malformed version field")
	}
	destNeighbor, err := bitsDecode(headerLine[16:32])
	if err != nil {
		return Header{}, nil, errors.Wrap(err, "malformed destination field")
	}
	header := Header{Command: command, Version: version, DestNeighbor: destNeighbor}

	if command != Command {
		return Header{}, nil, errors.Errorf("unsupported command %d", command)
	}
	if version != Version {
		return Header{}, nil, errors.Errorf("unsupported version %d", version)
	}
	if destNeighbor != myID {
		return Header{}, nil, errors.Errorf("packet addressed to %d, not %d", destNeighbor, myID)
	}

	entryLines := lines[1:]
	const linesPerEntry = 5
	count := len(entryLines) / linesPerEntry
	if count == 0 {
		return Header{}, nil, errors.New("packet has zero entries")
	}

	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		block := entryLines[i*linesPerEntry : i*linesPerEntry+linesPerEntry]
		if len(block[0]) != entryHeaderBits {
			return Header{}, nil, errors.Errorf("malformed entry %d header", i)
		}
		source, err := bitsDecode(block[0][0:16])
		if err != nil {
			return Header{}, nil, errors.Wrapf(err, "entry %d source field", i)
		}
		routeTag, err := bitsDecode(block[0][16:32])
		if err != nil {
			return Header{}, nil, errors.Wrapf(err, "entry %d route tag field", i)
		}
		dest, err := bitsDecode(block[1])
		if err != nil {
			return Header{}, nil, errors.Wrapf(err, "entry %d destination field", i)
		}
		mask, err := bitsDecode(block[2])
		if err != nil {
			return Header{}, nil, errors.Wrapf(err, "entry %d mask field", i)
		}
		nextHop, err := bitsDecode(block[3])
		if err != nil {
			return Header{}, nil, errors.Wrapf(err, "entry %d next-hop field", i)
		}
		metric, err := bitsDecode(block[4])
		if err != nil {
			return Header{}, nil, errors.Wrapf(err, "entry %d metric field", i)
		}
		entries = append(entries, Entry{
			Source:   source,
			RouteTag: routeTag,
			Dest:     dest,
			Mask:     uint32(mask),
			NextHop:  nextHop,
			Metric:   metric,
		})
	}

	return header, entries, nil
}

// bitsEncode renders v as a width-char string of '0'/'1' characters, most
// significant bit first.
func bitsEncode(v int, width int) string {
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		if v&1 == 1 {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		v >>= 1
	}
	return string(b)
}

// bitsDecode parses a string of '0'/'1' characters into an int.
func bitsDecode(s string) (int, error) {
	if len(s) == 0 {
		return 0, errors.New("empty field")
	}
	var v int
	for i := 0; i < len(s); i++ {
		v <<= 1
		switch s[i] {
		case '0':
		case '1':
			v |= 1
		default:
			return 0, errors.Errorf("non-binary character %q at offset %d", s[i], i)
		}
	}
	return v, nil
}
