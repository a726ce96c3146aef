package leveling

import (
	"math"

	"kaamgarau/internal/core"
)

const (
	budgetShare   = 0.1
	urgentBonus   = 50.0
	postBonus     = 50.0
	ratingPerStar = 20.0
)

// FreelancerXP sums budget*0.1*difficulty + urgency bonus + rating*20 over
// every completed job. Zero-budget jobs still earn their bonuses.
func FreelancerXP(jobs []core.CompletedJob) float64 {
	var total float64
	for _, job := range jobs {
		xp := nonNegative(job.Budget.Rupees()) * budgetShare * job.Difficulty.Multiplier()
		if job.IsUrgent {
			xp += urgentBonus
		}
		xp += clampRating(job.ClientRating) * ratingPerStar
		total += xp
	}
	return total
}

// ClientXP sums budget*0.1 + 50 + rating*20 over every posted job.
func ClientXP(jobs []core.PostedJob) float64 {
	var total float64
	for _, job := range jobs {
		total += nonNegative(job.Budget.Rupees())*budgetShare + postBonus + clampRating(job.FreelancerRating)*ratingPerStar
	}
	return total
}

// XPFor picks the formula matching the user's role.
func XPFor(role core.Role, history core.JobHistory) float64 {
	if role == core.RoleClient {
		return ClientXP(history.Posted)
	}
	return FreelancerXP(history.Completed)
}

// Summary is the XP total together with the level it reaches.
type Summary struct {
	Role core.Role `json:"role"`
	XP   float64   `json:"xp"`
	Info
}

// Summarize computes the XP for role and resolves it against the table.
func (t *Table) Summarize(role core.Role, history core.JobHistory) Summary {
	xp := XPFor(role, history)
	return Summary{Role: role, XP: xp, Info: t.LevelInfo(xp)}
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clampRating(r float64) float64 {
	switch {
	case math.IsNaN(r) || r < core.MinRating:
		return core.MinRating
	case r > core.MaxRating:
		return core.MaxRating
	default:
		return r
	}
}
