package wire

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed 12-octet length of a DNS message header.
const HeaderSize = 12

// Header is the fixed 12-octet DNS message header (RFC 1035 §4.1.1).
type Header struct {
	ID      uint16
	QR      bool
	Opcode  uint8
	AA      bool
	TC      bool
	RD      bool
	RA      bool
	RCode   RCode
	QDCount uint16
	ANCount uint16
	NSCount uint16
	ARCount uint16
}

// ParseHeader decodes the first 12 octets of buf. It is always safe to call
// once len(buf) >= HeaderSize, even when the rest of the message is
// malformed, so callers can use it to build a minimal FORMERR reply.
func ParseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: message shorter than header (%d bytes)", ErrMalformed, len(buf))
	}

	flags := binary.BigEndian.Uint16(buf[2:4])
	return Header{
		ID:      binary.BigEndian.Uint16(buf[0:2]),
		QR:      flags&flagQR != 0,
		Opcode:  uint8((flags & flagOpcode) >> 11),
		AA:      flags&flagAA != 0,
		TC:      flags&flagTC != 0,
		RD:      flags&flagRD != 0,
		RA:      flags&flagRA != 0,
		RCode:   RCode(flags & flagRCode),
		QDCount: binary.BigEndian.Uint16(buf[4:6]),
		ANCount: binary.BigEndian.Uint16(buf[6:8]),
		NSCount: binary.BigEndian.Uint16(buf[8:10]),
		ARCount: binary.BigEndian.Uint16(buf[10:12]),
	}, nil
}

// Marshal encodes h into its 12-octet wire form.
func (h Header) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], h.ID)

	var flags uint16
	if h.QR {
		flags |= flagQR
	}
	flags |= uint16(h.Opcode&0xF) << 11
	if h.AA {
		flags |= flagAA
	}
	if h.TC {
		flags |= flagTC
	}
	if h.RD {
		flags |= flagRD
	}
	if h.RA {
		flags |= flagRA
	}
	flags |= uint16(h.RCode) & flagRCode
	binary.BigEndian.PutUint16(buf[2:4], flags)

	binary.BigEndian.PutUint16(buf[4:6], h.QDCount)
	binary.BigEndian.PutUint16(buf[6:8], h.ANCount)
	binary.BigEndian.PutUint16(buf[8:10], h.NSCount)
	binary.BigEndian.PutUint16(buf[10:12], h.ARCount)
	return buf
}
