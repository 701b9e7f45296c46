// Package render turns notification requests into transport-ready payload
// bodies.
//
// Deployment lifecycle events (started, success, failed) are rendered as a
// terminal-style panel: a fixed masthead, a bordered box of aligned fields,
// echoed pipeline output, and a trailing context line. Everything else goes
// through the generic template path, which substitutes the request context
// into the template registered for the event kind and falls back to plain
// "title\n\nmessage" text on any failure.
//
// Panel alignment is done in display cells, not bytes or runes: CJK and
// emoji runes occupy two cells, zero-width joiners and variation selectors
// none. DisplayWidth, Pad, and TruncateWidth implement that arithmetic so
// the right border lines up no matter what the field values contain.
package render
