package types

import (
	"github.com/dchest/uniuri"
)

// GenerateHandoffCode returns a short random code that identifies a referral over the radio.
// Characters that are easily confused when spoken or handwritten are excluded
func GenerateHandoffCode() string {
	return uniuri.NewLenChars(6, []byte("23456789ABCDEFGHJKLMNPQRSTUVWXYZ"))
}
