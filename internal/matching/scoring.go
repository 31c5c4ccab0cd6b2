package matching

import (
	"math"
	"sort"
	"strings"
	"time"
)

// ScoreEngine computes a deterministic match score between two profiles.
// Scores are percentages in [0, 100], rounded to one decimal place.
type ScoreEngine interface {
	Score(viewer, candidate *CandidateProfile) *ScoreBreakdown
}

// ScoreBreakdown carries the total plus the factors it was built from.
type ScoreBreakdown struct {
	Total           float64  `json:"total"`
	InterestScore   float64  `json:"interest_score"`
	LocationScore   float64  `json:"location_score"`
	AgeScore        float64  `json:"age_score"`
	CommonInterests []string `json:"common_interests"`
	DistanceKm      *float64 `json:"distance_km,omitempty"`
}

type scoreEngine struct {
	now func() time.Time
}

func NewScoreEngine() ScoreEngine {
	return &scoreEngine{now: time.Now}
}

// Score weights interest overlap at 50%, location proximity at 30% and age
// compatibility at 20%. Missing data degrades gracefully to a neutral 0.5
// for the factor, so sparse profiles still land mid-range.
func (e *scoreEngine) Score(viewer, candidate *CandidateProfile) *ScoreBreakdown {
	b := &ScoreBreakdown{}

	b.InterestScore, b.CommonInterests = interestSimilarity(viewer.Interests, candidate.Interests)

	if viewer.Latitude != nil && viewer.Longitude != nil &&
		candidate.Latitude != nil && candidate.Longitude != nil {
		distance := haversineKm(*viewer.Latitude, *viewer.Longitude, *candidate.Latitude, *candidate.Longitude)
		km := round1(distance)
		b.DistanceKm = &km
		// Exponential decay with a 50km half-scale
		b.LocationScore = clamp01(math.Exp(-distance / 50))
	} else {
		b.LocationScore = 0.5
	}

	now := e.now()
	viewerAge, candidateAge := viewer.Age(now), candidate.Age(now)
	if viewerAge > 0 && candidateAge > 0 {
		gap := math.Abs(float64(viewerAge - candidateAge))
		// Full score inside a 3-year gap, linear falloff to zero at 15 years
		b.AgeScore = clamp01(1 - math.Max(0, gap-3)/12)
	} else {
		b.AgeScore = 0.5
	}

	total := b.InterestScore*0.50 + b.LocationScore*0.30 + b.AgeScore*0.20
	b.Total = round1(total * 100)
	return b
}

// interestSimilarity is the Jaccard coefficient over case-folded interests,
// plus the sorted intersection.
func interestSimilarity(a, b []string) (float64, []string) {
	if len(a) == 0 || len(b) == 0 {
		return 0.5, []string{}
	}

	seen := make(map[string]string, len(a))
	for _, interest := range a {
		seen[strings.ToLower(strings.TrimSpace(interest))] = interest
	}

	common := []string{}
	matched := make(map[string]bool)
	for _, interest := range b {
		key := strings.ToLower(strings.TrimSpace(interest))
		if _, ok := seen[key]; ok && !matched[key] {
			matched[key] = true
			common = append(common, seen[key])
		}
	}
	sort.Strings(common)

	union := len(a) + len(b) - len(common)
	if union == 0 {
		return 0, common
	}
	return float64(len(common)) / float64(union), common
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371 // km

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
