package wire

import "fmt"

// ParsedQuery is the result of successfully decoding an incoming query.
type ParsedQuery struct {
	Header Header

	// QName is the lowercased, dotted question name.
	QName string
	// QType and QClass are the raw wire values; QType is not validated
	// against the Type enum here; callers map it to decide NOTIMP.
	QType  uint16
	QClass uint16

	// RawQuestion is the verbatim bytes of the question section (name +
	// QTYPE + QCLASS), suitable for splicing unmodified into a reply per
	// spec.md's round-trip-echo requirement.
	RawQuestion []byte
}

// ParseQuery decodes a complete query message. It enforces the subset of
// RFC 1035 framing zonewarden accepts: exactly one question, no compressed
// question name, and a question section that is fully present in buf. Any
// violation is reported as a wrapped ErrMalformed; the caller is expected to
// fall back to ParseHeader for a header-only FORMERR reply.
func ParseQuery(buf []byte) (ParsedQuery, error) {
	header, err := ParseHeader(buf)
	if err != nil {
		return ParsedQuery{}, err
	}
	if header.QDCount != 1 {
		return ParsedQuery{}, fmt.Errorf("%w: QDCOUNT=%d, want 1", ErrMalformed, header.QDCount)
	}

	name, pos, err := decodeQuestionName(buf, HeaderSize)
	if err != nil {
		return ParsedQuery{}, err
	}
	if pos+4 > len(buf) {
		return ParsedQuery{}, fmt.Errorf("%w: truncated before QTYPE/QCLASS", ErrMalformed)
	}

	qtype := uint16(buf[pos])<<8 | uint16(buf[pos+1])
	qclass := uint16(buf[pos+2])<<8 | uint16(buf[pos+3])
	end := pos + 4

	raw := make([]byte, end-HeaderSize)
	copy(raw, buf[HeaderSize:end])

	return ParsedQuery{
		Header:      header,
		QName:       name,
		QType:       qtype,
		QClass:      qclass,
		RawQuestion: raw,
	}, nil
}
