package sample

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// Mixed sample streams are newline-delimited JSON with a "type" discriminator:
//
//	{"type":"location","latitude":46.92,"longitude":-114.08,"speedMps":1.2,"capturedAtMs":1731952467000}
//	{"type":"acceleration","x":0.1,"y":0.2,"z":9.8,"capturedAtMs":1731952467200}
//
// Clients are loose about it, so sniffing falls back on shape: a line with
// latitude is a location, a line with x/y/z is an acceleration.

const (
	TypeLocation     = "location"
	TypeAcceleration = "acceleration"
)

// Decoded is either a Location or an Acceleration from a mixed stream.
type Decoded struct {
	Location     *Location
	Acceleration *Acceleration
}

// DecodeAny decodes one line of a mixed sample stream, sniffing the sample
// type before committing to a full decode.
func DecodeAny(data []byte) (Decoded, error) {
	t := gjson.GetBytes(data, "type").String()
	if t == "" {
		switch {
		case gjson.GetBytes(data, "latitude").Exists():
			t = TypeLocation
		case gjson.GetBytes(data, "x").Exists():
			t = TypeAcceleration
		}
	}
	switch t {
	case TypeLocation:
		l := &Location{}
		if err := json.Unmarshal(data, l); err != nil {
			return Decoded{}, fmt.Errorf("decode location: %w", err)
		}
		return Decoded{Location: l}, nil
	case TypeAcceleration:
		a := &Acceleration{}
		if err := json.Unmarshal(data, a); err != nil {
			return Decoded{}, fmt.Errorf("decode acceleration: %w", err)
		}
		// Not all clients report the derived magnitude.
		if a.Magnitude == 0 && (a.X != 0 || a.Y != 0 || a.Z != 0) {
			a.Magnitude = math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z)
		}
		return Decoded{Acceleration: a}, nil
	}
	return Decoded{}, fmt.Errorf("unrecognized sample: %.60s", data)
}
