// Package plates reads license plates from images and looks up the plate
// registered for an account.
package plates

import (
	"context"
	"regexp"

	"spotmarket/internal/utils"
)

// Candidate is one plate guess with its confidence in [0, 1].
type Candidate struct {
	Plate string  `json:"plate"`
	Score float64 `json:"score"`
}

// Reading is the result of recognizing one image. LicenseInfo is the best candidate, normalized.
type Reading struct {
	LicenseInfo string      `json:"license_info"`
	Score       float64     `json:"score"`
	Results     []Candidate `json:"results"`
}

// Recognizer extracts a plate reading from raw image bytes.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, filename string) (Reading, error)
}

var plateShape = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// looksLikePlate filters OCR noise: a plate has at least one digit and fits the generic shape.
func looksLikePlate(s string) bool {
	if !plateShape.MatchString(s) {
		return false
	}
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}

// best picks the highest scoring candidate and fills LicenseInfo.
func best(cands []Candidate) (Reading, bool) {
	r := Reading{Results: cands}
	for _, c := range cands {
		p := utils.NormalizePlate(c.Plate)
		if p == "" {
			continue
		}
		if r.LicenseInfo == "" || c.Score > r.Score {
			r.LicenseInfo = p
			r.Score = c.Score
		}
	}
	return r, r.LicenseInfo != ""
}
