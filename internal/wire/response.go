package wire

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// nameFieldPointer is the compression pointer zonewarden always emits for
// an answer's NAME field: a pointer to offset 12, the start of the
// (single, already-echoed) question name. Responses never carry any other
// compression pointer.
var nameFieldPointer = []byte{0xC0, HeaderSize}

// maxResponseSize is the UDP payload ceiling beyond which a response must
// be truncated with TC=1 rather than grown further (spec.md §4.1).
const maxResponseSize = 512

// MaxIncomingMessageSize is the query server's receive buffer size: one
// datagram, 512 octets maximum, matching the no-EDNS ceiling this
// responder advertises (spec.md §4.5).
const MaxIncomingMessageSize = 512

// BuildErrorResponse builds a header-only reply (no question, no answers)
// carrying rcode. Used when the query could not be parsed far enough to
// recover a question section to echo: QDCOUNT != 1, a malformed QNAME, or
// a question cut off before QTYPE/QCLASS. Packets under 12 octets get no
// reply at all.
func BuildErrorResponse(reqHeader Header, rcode RCode) []byte {
	resp := reqHeader
	resp.QR = true
	resp.AA = false
	resp.TC = false
	resp.RCode = rcode
	resp.QDCount = 0
	resp.ANCount = 0
	resp.NSCount = 0
	resp.ARCount = 0
	return resp.Marshal()
}

// Answer is one resolved record to render as parallel answer RRs sharing a
// single NAME, TYPE and TTL.
type Answer struct {
	Type   Type
	TTL    uint32
	Values []string
}

// BuildResponse assembles a full reply: the echoed header, the verbatim
// question section, and zero or more answer RRs. When answer is nil the
// reply carries ANCOUNT=0 (NXDOMAIN, REFUSED, NOTIMP). Values that fail to
// encode for their type are dropped from the response and counted in
// skipped rather than aborting the whole reply, mirroring the original
// per-value error tolerance.
//
// If the assembled message would exceed 512 octets, BuildResponse drops
// trailing answer RRs at the last complete RR boundary and sets TC=1,
// reporting truncated=true; the caller never retries over TCP.
func BuildResponse(query ParsedQuery, rcode RCode, answer *Answer) (resp []byte, truncated bool, skipped int, err error) {
	header := query.Header
	header.QR = true
	header.AA = true
	header.TC = false
	header.RA = false
	header.RCode = rcode
	header.QDCount = 1

	var rrs [][]byte
	if answer != nil {
		for _, v := range answer.Values {
			rdata, encErr := encodeRDATA(answer.Type, v)
			if encErr != nil {
				skipped++
				continue
			}
			rrs = append(rrs, buildRR(answer.Type, answer.TTL, rdata))
		}
	}

	header.ANCount = uint16(len(rrs))
	body := append([]byte{}, query.RawQuestion...)

	budget := maxResponseSize - HeaderSize - len(query.RawQuestion)
	kept := 0
	for _, rr := range rrs {
		if len(rr) > budget {
			truncated = true
			break
		}
		body = append(body, rr...)
		budget -= len(rr)
		kept++
	}
	if truncated {
		header.TC = true
		header.ANCount = uint16(kept)
	}

	return append(header.Marshal(), body...), truncated, skipped, nil
}

// buildRR renders one answer resource record: the shared name pointer,
// TYPE, CLASS=IN, TTL, RDLENGTH and RDATA.
func buildRR(t Type, ttl uint32, rdata []byte) []byte {
	rr := make([]byte, 0, len(nameFieldPointer)+10+len(rdata))
	rr = append(rr, nameFieldPointer...)
	rr = binary.BigEndian.AppendUint16(rr, uint16(t))
	rr = binary.BigEndian.AppendUint16(rr, ClassIN)
	rr = binary.BigEndian.AppendUint32(rr, ttl)
	rr = binary.BigEndian.AppendUint16(rr, uint16(len(rdata)))
	return append(rr, rdata...)
}

// encodeRDATA renders one record value as RDATA for the given type.
func encodeRDATA(t Type, value string) ([]byte, error) {
	switch t {
	case TypeA:
		ip := net.ParseIP(value).To4()
		if ip == nil {
			return nil, fmt.Errorf("%w: %q is not a valid IPv4 address", ErrMalformed, value)
		}
		return ip, nil

	case TypeAAAA:
		ip := net.ParseIP(value).To16()
		if ip == nil || net.ParseIP(value).To4() != nil {
			return nil, fmt.Errorf("%w: %q is not a valid IPv6 address", ErrMalformed, value)
		}
		return ip, nil

	case TypeCNAME, TypeNS:
		return EncodeName(value)

	case TypeTXT:
		if len(value) > 255 {
			return nil, fmt.Errorf("%w: TXT value exceeds 255 octets", ErrMalformed)
		}
		out := make([]byte, 0, len(value)+1)
		out = append(out, byte(len(value)))
		return append(out, value...), nil

	case TypeMX:
		fields := strings.Fields(value)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: MX value %q must be \"priority exchange\"", ErrMalformed, value)
		}
		priority, err := strconv.ParseUint(fields[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: MX priority %q: %v", ErrMalformed, fields[0], err)
		}
		exchange, err := EncodeName(fields[1])
		if err != nil {
			return nil, err
		}
		out := binary.BigEndian.AppendUint16(nil, uint16(priority))
		return append(out, exchange...), nil

	case TypeSRV:
		fields := strings.Fields(value)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%w: SRV value %q must be \"priority weight port target\"", ErrMalformed, value)
		}
		priority, err1 := strconv.ParseUint(fields[0], 10, 16)
		weight, err2 := strconv.ParseUint(fields[1], 10, 16)
		port, err3 := strconv.ParseUint(fields[2], 10, 16)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, fmt.Errorf("%w: SRV numeric fields in %q", ErrMalformed, value)
		}
		target, err := EncodeName(fields[3])
		if err != nil {
			return nil, err
		}
		out := binary.BigEndian.AppendUint16(nil, uint16(priority))
		out = binary.BigEndian.AppendUint16(out, uint16(weight))
		out = binary.BigEndian.AppendUint16(out, uint16(port))
		return append(out, target...), nil

	default:
		return nil, fmt.Errorf("%w: unsupported RR type %d", ErrMalformed, t)
	}
}
