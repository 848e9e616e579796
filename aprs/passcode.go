package aprs

import (
	"fmt"
	"strings"
)

// CalculatePasscode derives the APRS-IS passcode for a callsign. The
// SSID, if present, is ignored; the base is uppercased before hashing.
func CalculatePasscode(callsign string) (int, error) {
	call := strings.ToUpper(strings.Split(callsign, "-")[0])

	if len(call) < 1 || len(call) > 6 {
		return 0, fmt.Errorf("invalid callsign for passcode: %q", callsign)
	}

	hash := 0x73e2
	high := true // Alternate XOR into the high and low byte

	for _, char := range call {
		if high {
			hash ^= int(char) << 8
		} else {
			hash ^= int(char)
		}
		high = !high
	}

	return hash & 0x7fff, nil
}
