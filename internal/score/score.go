// Package score computes the 0-100 confidence score summarizing how much
// corroborating data a search found. Pure and deterministic: the same
// presence counts always produce the same score.
package score

import "math"

// Presence captures which categories a search successfully fetched and how
// many normalized records each produced. Counts for categories that failed
// must be left at zero; absence and emptiness score identically.
type Presence struct {
	PersonData bool
	Addresses  int
	Phones     int
	Social     int
	Criminal   int
	Property   int
	Relatives  int
}

// Weighted point model. Each category earns up to its cap; caps sum to 100 so
// the normalization below is an identity kept for clarity when weights shift.
const (
	personPoints    = 25
	addressCap      = 20
	phoneCap        = 15
	socialCap       = 10
	criminalPoints  = 10
	propertyCap     = 10
	relativeCap     = 10
	maxTotal        = personPoints + addressCap + phoneCap + socialCap + criminalPoints + propertyCap + relativeCap
	pointsPerAddr   = 5
	pointsPerPhone  = 5
	pointsPerSocial = 3
	pointsPerProp   = 5
	pointsPerRel    = 2
)

// Score returns the confidence score for the given category presence,
// always an integer in [0, 100].
func Score(p Presence) int {
	earned := 0
	if p.PersonData {
		earned += personPoints
	}
	earned += capped(p.Addresses, pointsPerAddr, addressCap)
	earned += capped(p.Phones, pointsPerPhone, phoneCap)
	earned += capped(p.Social, pointsPerSocial, socialCap)
	if p.Criminal > 0 {
		earned += criminalPoints
	}
	earned += capped(p.Property, pointsPerProp, propertyCap)
	earned += capped(p.Relatives, pointsPerRel, relativeCap)

	return int(math.Round(float64(earned) * 100 / maxTotal))
}

func capped(count, per, limit int) int {
	if count <= 0 {
		return 0
	}
	if points := count * per; points < limit {
		return points
	}
	return limit
}
