// Package binproto converts typed values to and from byte streams delivered
// in arbitrary chunks, such as reads from a socket or a serial line.
//
// The package only does (de)serialisation. It never dials, reads or writes a
// connection on its own: the caller pushes chunks in and pulls results out.
//
// # Protocols
//
// Every protocol implements the Protocol interface. Input goes in through
// ProcessOutbound (values to serialise) and ProcessInbound (bytes to
// decode); results come out of two bounded queues, NextSerialised and
// NextDeserialised:
//
//	p, err := binproto.NewText(binproto.TextConfig{Encoding: "utf-8"})
//	if err != nil {
//	    return err
//	}
//	p.ProcessInbound([]byte{0xc3})      // first half of 'ß', buffered
//	p.ProcessInbound([]byte{0x9f, 'b'}) // completes it
//	values, _ := p.NextDeserialised()   // Tuple{"ßb"}
//
// Two protocols are provided:
//
//   - Text: character-encoded strings with reassembly of multi-byte
//     sequences split across chunks (see package charset for encodings)
//   - Fixed: fixed-width big-endian records described by (kind, length)
//     fields (see package layout)
//
// # Error Handling
//
// ProcessInbound and ProcessOutbound never return errors and never panic on
// bad input. Failures are passed to the configured Reporter and the
// offending unit is skipped, so a stream keeps going after malformed data:
//
//   - ArityError: wrong number or type of values for the protocol
//   - EncodeError: text not representable in the encoding (strict mode)
//   - DecodeError: bytes confirmed malformed, not merely incomplete
//   - LayoutError: record length or field value out of range
//
// The default reporter logs each error through zerolog at error level.
// The direct helpers (Text.Encode, Text.Decode, Fixed.Pack, Fixed.Unpack)
// return the same error types to the caller instead.
//
// # Queues
//
// Result queues have a fixed capacity (100 by default). When a queue is full
// the oldest entry is dropped silently to keep memory bounded. Callers that
// cannot tolerate loss must drain the queues at least as fast as they feed
// the protocol. Evictions are counted in Stats.
//
// # Concurrency
//
// A protocol instance is not safe for concurrent use: use one producer and
// one consumer, or synchronise externally. Stats may be read from any
// goroutine. Pool hands out instances for exclusive use.
package binproto
