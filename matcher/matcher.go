// Package matcher implements the nearest-descriptor decision over a gallery
// view. It is pure computation: no store access and no session state.
package matcher

import (
	"math"
	"time"

	"FACEGATE/gallery"
	"FACEGATE/helper"
)

// Result is the transient outcome of one probe against one gallery view. It is
// returned to the session and optionally drives an attendance write; it is
// never persisted.
type Result struct {
	Verified   bool
	EmployeeId int64
	Name       string
	Distance   float64
	At         time.Time
}

// Match compares the probe descriptor against every identity in the view.
// Each identity scores its minimum distance across its own samples; the
// identity with the globally smallest minimum wins. The result is verified
// only when that distance is strictly below threshold. Equal minima keep the
// earlier identity (views list identities in enrollment order), so the
// outcome is deterministic.
//
// An empty view is a normal unverified outcome, not a fault.
func Match(probe []float64, view *gallery.View, threshold float64) Result {
	res := Result{Distance: math.Inf(1), At: time.Now()}
	if view == nil {
		return res
	}

	for _, identity := range view.Identities {
		best := math.Inf(1)
		for _, sample := range identity.Descriptors {
			if d := helper.EuclideanDistance(probe, sample); d < best {
				best = d
			}
		}
		// Strict less-than: the first-enrolled identity wins ties.
		if best < res.Distance {
			res.Distance = best
			res.EmployeeId = identity.EmployeeId
			res.Name = identity.Name
		}
	}

	if res.Distance < threshold {
		res.Verified = true
		return res
	}

	// Below-threshold miss: no identity is reported back.
	res.EmployeeId = 0
	res.Name = ""
	return res
}
