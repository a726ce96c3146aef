package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"kaamgarau/internal/core"
)

// historyFile is the on-disk shape read by the xp command:
//
//	[[completed]]
//	project = "p-1"
//	budget = "1500.50"
//	difficulty = "hard"
//	urgent = true
//	rating = 4.5
//
//	[[posted]]
//	project = "p-2"
//	budget = "2000"
//	rating = 5
type historyFile struct {
	Completed []completedEntry `toml:"completed"`
	Posted    []postedEntry    `toml:"posted"`
}

type completedEntry struct {
	Project     string  `toml:"project"`
	Budget      string  `toml:"budget"`
	Difficulty  string  `toml:"difficulty"`
	Urgent      bool    `toml:"urgent"`
	Rating      float64 `toml:"rating"`
	CompletedOn string  `toml:"completed_on"`
}

type postedEntry struct {
	Project  string  `toml:"project"`
	Budget   string  `toml:"budget"`
	Rating   float64 `toml:"rating"`
	PostedOn string  `toml:"posted_on"`
}

func loadHistoryFile(path string) (core.JobHistory, error) {
	var f historyFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return core.JobHistory{}, fmt.Errorf("read history %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return core.JobHistory{}, fmt.Errorf("read history %s: unknown key %s", path, undecoded[0])
	}
	return f.toHistory()
}

func (f historyFile) toHistory() (core.JobHistory, error) {
	var h core.JobHistory
	for i, e := range f.Completed {
		job, err := e.toDomain()
		if err != nil {
			return core.JobHistory{}, fmt.Errorf("completed[%d]: %w", i, err)
		}
		h.Completed = append(h.Completed, job)
	}
	for i, e := range f.Posted {
		job, err := e.toDomain()
		if err != nil {
			return core.JobHistory{}, fmt.Errorf("posted[%d]: %w", i, err)
		}
		h.Posted = append(h.Posted, job)
	}
	return h, nil
}

func (e completedEntry) toDomain() (core.CompletedJob, error) {
	paisa, err := core.ParseDecimalToPaisa(e.Budget)
	if err != nil {
		return core.CompletedJob{}, err
	}
	date, err := optionalDate(e.CompletedOn)
	if err != nil {
		return core.CompletedJob{}, err
	}
	job := core.CompletedJob{
		ProjectID:    e.Project,
		Budget:       core.Money{Paisa: paisa},
		Difficulty:   core.ParseDifficulty(e.Difficulty),
		IsUrgent:     e.Urgent,
		ClientRating: e.Rating,
		CompletedOn:  date,
	}
	return job, job.Validate()
}

func (e postedEntry) toDomain() (core.PostedJob, error) {
	paisa, err := core.ParseDecimalToPaisa(e.Budget)
	if err != nil {
		return core.PostedJob{}, err
	}
	date, err := optionalDate(e.PostedOn)
	if err != nil {
		return core.PostedJob{}, err
	}
	job := core.PostedJob{
		ProjectID:        e.Project,
		Budget:           core.Money{Paisa: paisa},
		FreelancerRating: e.Rating,
		PostedOn:         date,
	}
	return job, job.Validate()
}

func optionalDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
