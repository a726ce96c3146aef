package leveling

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kaamgarau/internal/core"
)

func rupees(r int64) core.Money {
	return core.Money{Paisa: r * 100}
}

func TestGenerateThresholds(t *testing.T) {
	rows := GenerateThresholds()
	require.Len(t, rows, MaxLevel)
	assert.Equal(t, int64(0), rows[0].XPRequired)
	assert.Equal(t, int64(150), rows[1].XPRequired)

	for i, row := range rows {
		assert.Equal(t, i+1, row.Level)
		if i > 0 {
			assert.LessOrEqual(t, rows[i-1].XPRequired, row.XPRequired, "level %d", row.Level)
		}
	}
}

func TestGenerateThresholdsIsDeterministic(t *testing.T) {
	assert.Equal(t, GenerateThresholds(), GenerateThresholds())
}

func TestTierBands(t *testing.T) {
	tiers := []string{"Wood", "Stone", "Bronze", "Silver", "Gold", "Platinum", "Emerald", "Sapphire", "Ruby", "Diamond"}
	roman := []string{"I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

	rows := GenerateThresholds()
	for k, tier := range tiers {
		for s := 0; s < LevelsPerTier; s++ {
			row := rows[k*LevelsPerTier+s]
			assert.Equal(t, tier+" "+roman[s], row.Name.EN)
		}
	}

	assert.Equal(t, core.Label{EN: "Wood I", NP: "काठ I"}, TierName(1))
	assert.Equal(t, core.Label{EN: "Stone III", NP: "ढुङ्गा III"}, TierName(13))
	assert.Equal(t, core.Label{EN: "Diamond X", NP: "हीरा X"}, TierName(100))
	assert.Equal(t, Unranked, TierName(0))
	assert.Equal(t, Unranked, TierName(101))
}

func TestLevelInfo(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name     string
		xp       float64
		level    int
		progress int
	}{
		{"zero", 0, 1, 0},
		{"halfway to level two", 75, 1, 50},
		{"exactly level two", 150, 2, 0},
		{"just below level two", 149.99, 1, 99},
		{"max level", float64(XPRequired(100)), 100, 100},
		{"beyond max level", float64(XPRequired(100)) * 10, 100, 100},
		{"negative clamps to zero", -500, 1, 0},
		{"NaN clamps to zero", math.NaN(), 1, 0},
		{"positive infinity", math.Inf(1), 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := table.LevelInfo(tt.xp)
			assert.Equal(t, tt.level, info.Level)
			assert.Equal(t, tt.progress, info.Progress)
			assert.Equal(t, TierName(tt.level), info.Name)
		})
	}
}

func TestLevelInfoAtEveryThreshold(t *testing.T) {
	table := Default()
	for _, row := range table.Thresholds() {
		info := table.LevelInfo(float64(row.XPRequired))
		assert.Equal(t, row.Level, info.Level)
		if row.Level < MaxLevel {
			assert.Equal(t, 0, info.Progress, "level %d", row.Level)
		}
		assert.GreaterOrEqual(t, info.Progress, 0)
		assert.LessOrEqual(t, info.Progress, 100)
	}
}

func TestLevelInfoEqualThresholdsResolveHigher(t *testing.T) {
	table := &Table{thresholds: []Threshold{
		{Level: 1, XPRequired: 0, Name: TierName(1)},
		{Level: 2, XPRequired: 0, Name: TierName(2)},
		{Level: 3, XPRequired: 100, Name: TierName(3)},
	}}

	info := table.LevelInfo(0)
	assert.Equal(t, 2, info.Level)
	assert.Equal(t, 0, info.Progress)
}

func TestLevelInfoUnranked(t *testing.T) {
	table := &Table{thresholds: []Threshold{
		{Level: 1, XPRequired: 10, Name: TierName(1)},
		{Level: 2, XPRequired: 20, Name: TierName(2)},
	}}

	info := table.LevelInfo(5)
	assert.True(t, info.IsUnranked())
	assert.Equal(t, Unranked, info.Name)
	assert.Equal(t, 0, info.Progress)
}

func TestThresholdsReturnsCopy(t *testing.T) {
	table := NewTable()
	rows := table.Thresholds()
	rows[0].XPRequired = 999

	again, ok := table.Threshold(1)
	require.True(t, ok)
	assert.Equal(t, int64(0), again.XPRequired)

	_, ok = table.Threshold(101)
	assert.False(t, ok)
}

func TestDefaultTableConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	tables := make([]*Table, 16)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i] = Default()
			_ = tables[i].LevelInfo(float64(i * 1000))
		}(i)
	}
	wg.Wait()

	for _, tbl := range tables {
		assert.Same(t, tables[0], tbl)
	}
}

func TestFreelancerXP(t *testing.T) {
	assert.Equal(t, 0.0, FreelancerXP(nil))
	assert.Equal(t, 0.0, FreelancerXP([]core.CompletedJob{}))

	hard := []core.CompletedJob{{
		ProjectID:    "p1",
		Budget:       rupees(1000),
		Difficulty:   core.DifficultyHard,
		IsUrgent:     true,
		ClientRating: 5,
	}}
	assert.InDelta(t, 300.0, FreelancerXP(hard), 1e-9)

	tests := []struct {
		name string
		job  core.CompletedJob
		want float64
	}{
		{"easy", core.CompletedJob{Budget: rupees(1000), Difficulty: core.DifficultyEasy}, 100},
		{"medium urgent", core.CompletedJob{Budget: rupees(25000), Difficulty: core.DifficultyMedium, IsUrgent: true, ClientRating: 5}, 3275},
		{"unknown difficulty", core.CompletedJob{Budget: rupees(1000), Difficulty: core.DifficultyUnknown}, 100},
		{"zero budget keeps bonuses", core.CompletedJob{IsUrgent: true, ClientRating: 4}, 130},
		{"negative budget clamps", core.CompletedJob{Budget: rupees(-1000), ClientRating: 1}, 20},
		{"rating above five clamps", core.CompletedJob{ClientRating: 9}, 100},
		{"NaN rating counts as zero", core.CompletedJob{ClientRating: math.NaN()}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, FreelancerXP([]core.CompletedJob{tt.job}), 1e-9)
		})
	}
}

func TestFreelancerXPSumsJobs(t *testing.T) {
	jobs := []core.CompletedJob{
		{Budget: rupees(1000), Difficulty: core.DifficultyHard, IsUrgent: true, ClientRating: 5},
		{Budget: rupees(2000), Difficulty: core.DifficultyEasy, ClientRating: 3},
	}
	before := append([]core.CompletedJob(nil), jobs...)

	assert.InDelta(t, 300.0+260.0, FreelancerXP(jobs), 1e-9)
	assert.Equal(t, before, jobs)
}

func TestClientXP(t *testing.T) {
	assert.Equal(t, 0.0, ClientXP(nil))
	assert.InDelta(t, 330.0, ClientXP([]core.PostedJob{{Budget: rupees(2000), FreelancerRating: 4}}), 1e-9)
	assert.InDelta(t, 2650.0, ClientXP([]core.PostedJob{{ProjectID: "1", Budget: rupees(25000), FreelancerRating: 5}}), 1e-9)
	assert.InDelta(t, 50.0, ClientXP([]core.PostedJob{{}}), 1e-9)
}

func TestSummarize(t *testing.T) {
	history := core.JobHistory{
		Completed: []core.CompletedJob{{ProjectID: "1", Budget: rupees(25000), Difficulty: core.DifficultyMedium, IsUrgent: true, ClientRating: 5}},
		Posted:    []core.PostedJob{{ProjectID: "1", Budget: rupees(2000), FreelancerRating: 4}},
	}

	freelancer := Default().Summarize(core.RoleFreelancer, history)
	assert.InDelta(t, 3275.0, freelancer.XP, 1e-9)
	assert.Equal(t, 4, freelancer.Level)
	assert.Equal(t, "Wood IV", freelancer.Name.EN)

	client := Default().Summarize(core.RoleClient, history)
	assert.InDelta(t, 330.0, client.XP, 1e-9)
	assert.Equal(t, 2, client.Level)
	assert.Equal(t, core.RoleClient, client.Role)
}
