package analytics

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"kaamgarau/internal/core"
)

// FreelancerSummary is the headline figures on a freelancer dashboard.
type FreelancerSummary struct {
	LifetimeEarnings core.Money `json:"-"`
	EarningsRupees   float64    `json:"lifetimeEarnings"`
	JobsCompleted    int        `json:"jobsCompleted"`
	AverageRating    string     `json:"currentRating"`
}

// ClientSummary is the headline figures on a client dashboard.
type ClientSummary struct {
	TotalSpent     core.Money `json:"-"`
	SpentRupees    float64    `json:"totalSpent"`
	ProjectsPosted int        `json:"projectsPosted"`
	// one freelancer per posted project
	FreelancersHired int `json:"freelancersHired"`
}

// FreelancerStats sums earnings and averages client ratings. The rating is
// formatted to one decimal and is "0.0" when there are no jobs.
func FreelancerStats(jobs []core.CompletedJob) FreelancerSummary {
	var earnings core.Money
	var ratings float64
	for _, j := range jobs {
		earnings = earnings.Add(j.Budget)
		ratings += j.ClientRating
	}

	avg := "0.0"
	if len(jobs) > 0 {
		avg = strconv.FormatFloat(ratings/float64(len(jobs)), 'f', 1, 64)
	}

	return FreelancerSummary{
		LifetimeEarnings: earnings,
		EarningsRupees:   earnings.Rupees(),
		JobsCompleted:    len(jobs),
		AverageRating:    avg,
	}
}

func ClientStats(jobs []core.PostedJob) ClientSummary {
	var spent core.Money
	for _, j := range jobs {
		spent = spent.Add(j.Budget)
	}
	return ClientSummary{
		TotalSpent:       spent,
		SpentRupees:      spent.Rupees(),
		ProjectsPosted:   len(jobs),
		FreelancersHired: len(jobs),
	}
}

// FormatRupees renders "Rs. 25,000" with grouping, dropping paisa when zero.
func FormatRupees(m core.Money) string {
	if m.Paisa%100 == 0 {
		return "Rs. " + humanize.Comma(m.Paisa/100)
	}
	return "Rs. " + humanize.CommafWithDigits(m.Rupees(), 2)
}

// Cards returns the dashboard stat cards.
func (s FreelancerSummary) Cards() []core.Stat {
	return []core.Stat{
		{ID: "earnings", Value: FormatRupees(s.LifetimeEarnings), Label: core.Label{EN: "Lifetime Earnings", NP: "कुल आम्दानी"}},
		{ID: "jobs", Value: strconv.Itoa(s.JobsCompleted), Label: core.Label{EN: "Jobs Completed", NP: "सम्पन्न कामहरू"}},
		{ID: "rating", Value: s.AverageRating, Label: core.Label{EN: "Current Rating", NP: "वर्तमान मूल्याङ्कन"}},
	}
}

func (s ClientSummary) Cards() []core.Stat {
	return []core.Stat{
		{ID: "projects", Value: strconv.Itoa(s.ProjectsPosted), Label: core.Label{EN: "Total Projects Posted", NP: "कुल पोस्ट गरिएका परियोजनाहरू"}},
		{ID: "spent", Value: FormatRupees(s.TotalSpent), Label: core.Label{EN: "Total Spent", NP: "कुल खर्च"}},
		{ID: "hired", Value: fmt.Sprint(s.FreelancersHired), Label: core.Label{EN: "Freelancers Hired", NP: "काममा लगाइएका स्वतन्त्रकर्ताहरू"}},
	}
}
