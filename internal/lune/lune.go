// Package lune computes new and full moon peak instants.
//
// The series follows the classic mean-lunation approach: a mean phase time
// for lunation number k, corrected by periodic terms in the Sun and Moon
// anomalies, the Moon's argument of latitude and node, and the fourteen
// planetary arguments. Results are converted from dynamical time to UTC
// with a polynomial estimate of ΔT and are good to about a minute for
// present-day dates.
package lune

import (
	"math"
	"time"

	"moonday/internal/model"
)

const (
	// synodicMonth is the mean lunation length in days.
	synodicMonth = 29.530588861
	// unixEpochJD is the Julian Day of 1970-01-01T00:00:00Z.
	unixEpochJD = 2440587.5
	// maxLunations bounds a single PhaseRange call.
	maxLunations = 5000
)

// Source implements the moonday phase source contract.
type Source struct{}

// New returns a Source.
func New() Source {
	return Source{}
}

// PhaseRange returns the peaks of kind within [start, end], ascending. It
// returns nil when end is before start.
func (Source) PhaseRange(start, end time.Time, kind model.PhaseKind) []time.Time {
	if end.Before(start) {
		return nil
	}

	offset := 0.0
	if kind == model.PhaseFull {
		offset = 0.5
	}

	// Start one lunation early so a peak right at start is not missed.
	k := math.Floor((decimalYear(start)-2000)*12.3685) - 1

	var out []time.Time
	for i := 0; i < maxLunations; i, k = i+1, k+1 {
		t := phaseTime(k+offset, kind)
		if t.Before(start) {
			continue
		}
		if t.After(end) {
			break
		}
		out = append(out, t)
	}
	return out
}

// Peak returns the peak of kind for lunation number k, where k = 0 is the
// new moon of 2000-01-06.
func Peak(k int, kind model.PhaseKind) time.Time {
	kf := float64(k)
	if kind == model.PhaseFull {
		kf += 0.5
	}
	return phaseTime(kf, kind)
}

func phaseTime(k float64, kind model.PhaseKind) time.Time {
	return julianToTime(phaseJDE(k, kind) - deltaT(2000+k/12.3685)/86400)
}

// phaseJDE returns the Julian Ephemeris Day of the phase at lunation k.
func phaseJDE(k float64, kind model.PhaseKind) float64 {
	T := k / 1236.85
	T2 := T * T
	T3 := T2 * T
	T4 := T3 * T

	jde := 2451550.09766 + synodicMonth*k +
		0.00015437*T2 - 0.000000150*T3 + 0.00000000073*T4

	E := 1 - 0.002516*T - 0.0000074*T2
	E2 := E * E

	M := deg(2.5534 + 29.10535670*k - 0.0000014*T2 - 0.00000011*T3)
	Mp := deg(201.5643 + 385.81693528*k + 0.0107582*T2 + 0.00001238*T3 - 0.000000058*T4)
	F := deg(160.7108 + 390.67050284*k - 0.0016118*T2 - 0.00000227*T3 + 0.000000011*T4)
	Om := deg(124.7746 - 1.56375588*k + 0.0020672*T2 + 0.00000215*T3)

	var c float64
	switch kind {
	case model.PhaseFull:
		c = -0.40614*math.Sin(Mp) +
			0.17302*E*math.Sin(M) +
			0.01614*math.Sin(2*Mp) +
			0.01043*math.Sin(2*F) +
			0.00734*E*math.Sin(Mp-M) -
			0.00515*E*math.Sin(Mp+M) +
			0.00209*E2*math.Sin(2*M)
	default:
		c = -0.40720*math.Sin(Mp) +
			0.17241*E*math.Sin(M) +
			0.01608*math.Sin(2*Mp) +
			0.01039*math.Sin(2*F) +
			0.00739*E*math.Sin(Mp-M) -
			0.00514*E*math.Sin(Mp+M) +
			0.00208*E2*math.Sin(2*M)
	}

	// Terms shared by both phases.
	c += -0.00111*math.Sin(Mp-2*F) -
		0.00057*math.Sin(Mp+2*F) +
		0.00056*E*math.Sin(2*Mp+M) -
		0.00042*math.Sin(3*Mp) +
		0.00042*E*math.Sin(M+2*F) +
		0.00038*E*math.Sin(M-2*F) -
		0.00024*E*math.Sin(2*Mp-M) -
		0.00017*math.Sin(Om) -
		0.00007*math.Sin(Mp+2*M) +
		0.00004*math.Sin(2*Mp-2*F) +
		0.00004*math.Sin(3*M) +
		0.00003*math.Sin(Mp+M-2*F) +
		0.00003*math.Sin(2*Mp+2*F) -
		0.00003*math.Sin(Mp+M+2*F) +
		0.00003*math.Sin(Mp-M+2*F) -
		0.00002*math.Sin(Mp-M-2*F) -
		0.00002*math.Sin(3*Mp+M) +
		0.00002*math.Sin(4*Mp)

	return jde + c + planetary(k, T2)
}

var planetaryTerms = [14]struct{ coeff, base, rate float64 }{
	{0.000325, 299.77, 0.107408},
	{0.000165, 251.88, 0.016321},
	{0.000164, 251.83, 26.651886},
	{0.000126, 349.42, 36.412478},
	{0.000110, 84.66, 18.206239},
	{0.000062, 141.74, 53.303771},
	{0.000060, 207.14, 2.453732},
	{0.000056, 154.84, 7.306860},
	{0.000047, 34.52, 27.261239},
	{0.000042, 207.19, 0.121824},
	{0.000040, 291.34, 1.844379},
	{0.000037, 161.72, 24.198154},
	{0.000035, 239.56, 25.513099},
	{0.000023, 331.55, 3.592518},
}

func planetary(k, T2 float64) float64 {
	var sum float64
	for i, p := range planetaryTerms {
		a := p.base + p.rate*k
		if i == 0 {
			a -= 0.009173 * T2
		}
		sum += p.coeff * math.Sin(deg(a))
	}
	return sum
}

// deltaT estimates TT−UT in seconds (Espenak & Meeus polynomials).
func deltaT(year float64) float64 {
	switch {
	case year < 2005:
		t := year - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t +
			0.000651814*t*t*t*t + 0.00002373599*t*t*t*t*t
	case year < 2050:
		t := year - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	default:
		u := (year - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-year)
	}
}

func deg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d * math.Pi / 180
}

func julianToTime(jd float64) time.Time {
	sec := math.Round((jd - unixEpochJD) * 86400)
	return time.Unix(int64(sec), 0).UTC()
}

func decimalYear(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Year()) + float64(t.YearDay()-1)/365.25
}
