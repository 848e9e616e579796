package aprs

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultDestination is the sentinel destination used when a frame does
// not carry one of its own.
const DefaultDestination = "APRS"

// Frame is one APRS packet in TNC2 monitor form:
//
//	SOURCE>DEST,PATH1,PATH2:payload text
//
// The path may be empty, in which case the form is SOURCE>DEST:payload.
type Frame struct {
	Source      Callsign
	Destination Callsign
	Path        []Callsign
	Text        string

	raw []byte // Original line as received, for debug rendering
}

// NewFrame returns an empty frame ready to be filled by an application
// building an outgoing packet. The destination defaults to "APRS".
func NewFrame() Frame {
	return Frame{Destination: Callsign{Base: DefaultDestination, SSID: "0"}}
}

// ParseFrame decodes one line of APRS-IS input. It always returns a
// usable, best-effort Frame; the error only reports that the input was
// not decodable text, in which case the frame is empty apart from the
// default destination. ParseFrame never panics on any input.
func ParseFrame(raw []byte) (Frame, error) {
	f := NewFrame()
	f.raw = append([]byte(nil), raw...)

	if !utf8.Valid(raw) {
		return f, fmt.Errorf("frame is not valid text: %s", hex.EncodeToString(raw))
	}

	// Single left-to-right scan. The first '>' terminates the source and
	// the first ':' resolves the destination and path; every later ':'
	// or '>' is ordinary payload, since APRS payloads routinely contain
	// both (timestamps, messages, third-party headers).
	var pending strings.Builder
	sourceSet := false
	headerResolved := false

	for _, r := range string(raw) {
		switch {
		case r == '>' && !sourceSet && !headerResolved:
			f.Source = ParseCallsign(pending.String())
			pending.Reset()
			sourceSet = true

		case r == ':' && !headerResolved:
			header := pending.String()
			if strings.Contains(header, ",") {
				parts := strings.Split(header, ",")
				f.Destination = ParseCallsign(parts[0])
				f.Path = make([]Callsign, 0, len(parts)-1)
				for _, hop := range parts[1:] {
					f.Path = append(f.Path, ParseCallsign(hop))
				}
			} else {
				f.Destination = ParseCallsign(header)
			}
			pending.Reset()
			headerResolved = true

		default:
			pending.WriteRune(r)
		}
	}

	f.Text = pending.String()
	return f, nil
}

// String reconstructs the canonical wire form of the frame. It is used
// both for display and for building outgoing TCP/UDP/HTTP payloads.
func (f Frame) String() string {
	fullPath := make([]string, 0, len(f.Path)+1)
	fullPath = append(fullPath, f.Destination.String())
	for _, hop := range f.Path {
		fullPath = append(fullPath, hop.String())
	}

	return f.Source.String() + ">" + strings.Join(fullPath, ",") + ":" + f.Text
}

// Hex returns the textual form of the frame encoded as a lowercase hex
// string, two digits per byte with no separators.
func (f Frame) Hex() string {
	return hex.EncodeToString([]byte(f.String()))
}

// Raw returns the original bytes the frame was parsed from, or nil for a
// frame built by the application.
func (f Frame) Raw() []byte {
	return f.raw
}
