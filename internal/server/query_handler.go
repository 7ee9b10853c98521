package server

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ngrigoriev/zonewarden/internal/resolve"
	"github.com/ngrigoriev/zonewarden/internal/store"
	"github.com/ngrigoriev/zonewarden/internal/wire"
)

// QueryHandler turns a raw UDP payload into a raw response payload,
// wiring the Wire Codec to the Resolver. It holds no per-request state and
// is safe for concurrent use.
type QueryHandler struct {
	Logger     *slog.Logger
	Resolver   *resolve.Resolver
	DefaultTTL uint32
}

// Handle decodes payload, resolves the query, and encodes a response. It
// returns nil when no response should be sent at all (a packet too short
// even to recover a header to echo).
func (h *QueryHandler) Handle(payload []byte) []byte {
	query, err := wire.ParseQuery(payload)
	if err != nil {
		header, hdrErr := wire.ParseHeader(payload)
		if hdrErr != nil {
			h.logf(slog.LevelDebug, "dropping undersized datagram", "err", err)
			return nil
		}
		h.logf(slog.LevelDebug, "rejecting malformed query", "err", err)
		return wire.BuildErrorResponse(header, wire.RCodeFormErr)
	}

	if query.QClass != wire.ClassIN {
		return h.respond(query, wire.RCodeRefused, nil)
	}

	mnemonic, ok := wire.Mnemonic(wire.Type(query.QType))
	if !ok {
		return h.respond(query, wire.RCodeNotImp, nil)
	}
	qtype, err := store.ParseRecordType(mnemonic)
	if err != nil {
		return h.respond(query, wire.RCodeNotImp, nil)
	}

	result, err := h.Resolver.Resolve(query.QName, qtype)
	if err != nil {
		if errors.Is(err, resolve.ErrNXDomain) {
			return h.respond(query, wire.RCodeNXDomain, nil)
		}
		h.logf(slog.LevelError, "resolver error", "err", err, "qname", query.QName)
		return h.respond(query, wire.RCodeNXDomain, nil)
	}

	answerType, ok := wire.ParseType(string(result.Type))
	if !ok {
		h.logf(slog.LevelError, "resolved type has no wire encoding", "type", result.Type)
		return h.respond(query, wire.RCodeNXDomain, nil)
	}

	return h.respond(query, wire.RCodeSuccess, &wire.Answer{
		Type:   answerType,
		TTL:    h.DefaultTTL,
		Values: result.Values,
	})
}

func (h *QueryHandler) respond(query wire.ParsedQuery, rcode wire.RCode, answer *wire.Answer) []byte {
	resp, truncated, skipped, err := wire.BuildResponse(query, rcode, answer)
	if err != nil {
		h.logf(slog.LevelError, "failed to build response", "err", err, "qname", query.QName)
		return nil
	}
	if skipped > 0 {
		h.logf(slog.LevelWarn, "dropped invalid record values from response", "qname", query.QName, "skipped", skipped)
	}
	if truncated {
		h.logf(slog.LevelWarn, "response truncated", "qname", query.QName)
	}
	return resp
}

func (h *QueryHandler) logf(level slog.Level, msg string, args ...any) {
	if h.Logger == nil {
		return
	}
	h.Logger.Log(context.Background(), level, msg, args...)
}
