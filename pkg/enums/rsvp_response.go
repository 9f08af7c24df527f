package enums

import "fmt"

// RSVPResponse records a member's stated intent for a flokout.
type RSVPResponse string

const (
	RSVPResponseYes   RSVPResponse = "yes"
	RSVPResponseNo    RSVPResponse = "no"
	RSVPResponseMaybe RSVPResponse = "maybe"
)

var validRSVPResponses = []RSVPResponse{
	RSVPResponseYes,
	RSVPResponseNo,
	RSVPResponseMaybe,
}

// String implements fmt.Stringer.
func (r RSVPResponse) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RSVPResponse.
func (r RSVPResponse) IsValid() bool {
	for _, candidate := range validRSVPResponses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRSVPResponse converts raw input into an RSVPResponse.
func ParseRSVPResponse(value string) (RSVPResponse, error) {
	for _, candidate := range validRSVPResponses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid rsvp response %q", value)
}
