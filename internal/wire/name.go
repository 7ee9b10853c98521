package wire

import (
	"fmt"
	"strings"
)

const maxNameLength = 255
const maxLabelLength = 63

// EncodeName renders a dotted domain name (no trailing dot required) as a
// sequence of length-prefixed labels terminated by a zero octet. It never
// emits compression pointers; every RDATA name field zonewarden produces
// (CNAME target, NS host, MX exchange) is fully spelled out, per spec.
func EncodeName(name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return []byte{0}, nil
	}

	var out []byte
	for _, label := range strings.Split(name, ".") {
		if len(label) == 0 || len(label) > maxLabelLength {
			return nil, fmt.Errorf("%w: label %q out of range", ErrMalformed, label)
		}
		out = append(out, byte(len(label)))
		out = append(out, label...)
	}
	out = append(out, 0)
	if len(out) > maxNameLength {
		return nil, fmt.Errorf("%w: encoded name exceeds %d octets", ErrMalformed, maxNameLength)
	}
	return out, nil
}

// decodeQuestionName parses the QNAME at buf[offset:], rejecting compression
// pointers outright: the question section of a query is never compressed,
// so any label whose top two bits are set is malformed input rather than a
// pointer to follow. Returns the dotted, lowercased name and the offset of
// the first byte past the terminating zero octet.
func decodeQuestionName(buf []byte, offset int) (string, int, error) {
	var labels []string
	total := 0
	pos := offset

	for {
		if pos >= len(buf) {
			return "", 0, fmt.Errorf("%w: question name runs past end of message", ErrMalformed)
		}
		length := int(buf[pos])
		if length == 0 {
			pos++
			break
		}
		if length&0xC0 == 0xC0 {
			return "", 0, fmt.Errorf("%w: compression pointer in question section", ErrMalformed)
		}
		if length > maxLabelLength {
			return "", 0, fmt.Errorf("%w: label length %d exceeds %d", ErrMalformed, length, maxLabelLength)
		}
		pos++
		if pos+length > len(buf) {
			return "", 0, fmt.Errorf("%w: label runs past end of message", ErrMalformed)
		}
		label := string(buf[pos : pos+length])
		labels = append(labels, label)
		total += length + 1
		pos += length

		if total > maxNameLength {
			return "", 0, fmt.Errorf("%w: question name exceeds %d octets", ErrMalformed, maxNameLength)
		}
	}

	return strings.ToLower(strings.Join(labels, ".")), pos, nil
}
