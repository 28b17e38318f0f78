// Package comm provides the synchronous command/response exchange primitive
// shared by the text-protocol instrument drivers.
//
// Bench instruments that speak line-oriented ASCII (motion controllers,
// syringe pumps and similar serial devices) do not signal when a reply is
// ready. The only portable discipline is to write the command, poll the
// input buffer, and decide from the accumulated text whether the reply has
// arrived yet. This package implements that discipline once so each driver
// does not grow its own subtly different retry loop.
//
// # Exchange Loop
//
// A [Transceiver] binds a [Channel] to a retry interval and an overall
// timeout. [Transceiver.Exchange] writes the command, then loops: re-send
// the command once a full retry interval has elapsed since the last write,
// sleep one poll interval, drain any pending input, and test the
// accumulated text against the acceptance [Predicate]. The loop ends when
// the predicate accepts, the timeout elapses, or the context is canceled.
//
// Two behaviors are load-bearing for the drivers built on top:
//
//   - A poll that finds no pending bytes leaves the previously read text
//     untouched, so a reply that arrived just before the timeout is never
//     clobbered by a later empty poll.
//   - The command is re-sent on every due tick. Drivers must only exchange
//     commands their device treats as idempotent, or rely on the device
//     discarding input while busy (the motion controllers do the latter).
//
// # Predicates
//
// Three acceptance disciplines cover the supported devices: [Exact] for
// fixed status strings, [EndsWithAny] for prompt-terminated replies, and
// [None] for commands that produce no reply at all. A [None] exchange
// returns immediately after a single write with the [NoReply] sentinel as
// its response text.
//
// # Multi-Drop Replies
//
// Devices sharing a bus prefix replies with their unit address and a colon
// ("3:OK."). [ParseReply] splits that framing into address and payload and
// tolerates devices configured without addressing (":OK.").
package comm
