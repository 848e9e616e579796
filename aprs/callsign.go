// Package aprs implements the text frame format used on the APRS-IS
// network: station callsigns with optional SSID and digipeater markers,
// and complete TNC2-style monitor frames (SOURCE>DEST,PATH:payload).
package aprs

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Callsign is a single APRS station identifier as it appears in a frame
// address field, e.g. "W2GMD", "WIDE1-1" or "RELAY*".
type Callsign struct {
	Base       string // Station identifier, by convention 1-6 uppercase alphanumerics
	SSID       string // Secondary station ID, kept textual; "0" when absent
	Digipeated bool   // True when this hop has already repeated the packet
}

// ParseCallsign extracts the components of a callsign token. It never
// fails; whatever can be derived from the input is stored, so malformed
// tokens yield a partially populated Callsign.
func ParseCallsign(raw string) Callsign {
	c := Callsign{SSID: "0"}

	token := strings.TrimSpace(raw)

	if strings.HasSuffix(token, "*") {
		token = strings.TrimSuffix(token, "*")
		c.Digipeated = true
	}

	if idx := strings.Index(token, "-"); idx >= 0 {
		c.Base = token[:idx]
		c.SSID = strings.TrimSpace(token[idx+1:])
	} else {
		c.Base = token
	}

	return c
}

// String renders the callsign in its wire form. The SSID suffix is
// omitted when its numeric value is zero; an SSID that does not parse as
// an integer is rendered verbatim.
func (c Callsign) String() string {
	out := c.Base

	if n, err := strconv.Atoi(c.SSID); err == nil {
		if n > 0 {
			out = c.Base + "-" + c.SSID
		}
	} else {
		out = c.Base + "-" + c.SSID
	}

	if c.Digipeated {
		return out + "*"
	}
	return out
}

// Valid reports whether the base looks like a plausible callsign: 1 to 6
// alphanumeric characters. This is advisory; parsing never enforces it.
func (c Callsign) Valid() bool {
	if len(c.Base) < 1 || len(c.Base) > 6 {
		return false
	}
	for _, r := range c.Base {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// Hex returns the textual form encoded as a lowercase hex string, useful
// for logging tokens that render badly as text.
func (c Callsign) Hex() string {
	return hex.EncodeToString([]byte(c.String()))
}
