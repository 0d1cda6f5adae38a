package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidRecord is wrapped by PortfolioRecord.Validate failures.
var ErrInvalidRecord = errors.New("invalid portfolio record")

// FileRecord is one managed file.
// JSON field names follow the persisted browser format so older blobs stay readable.
type FileRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MediaType  string    `json:"type"`
	SizeBytes  int64     `json:"size"`
	Content    string    `json:"url"`
	Category   Category  `json:"category"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// PortfolioRecord is the aggregate persisted unit.
type PortfolioRecord struct {
	Profile  *FileRecord  `json:"profile,omitempty"`
	Resume   *FileRecord  `json:"resume,omitempty"`
	Projects []FileRecord `json:"projects"`
}

// NewPortfolioRecord returns an empty record.
func NewPortfolioRecord() *PortfolioRecord {
	return &PortfolioRecord{Projects: []FileRecord{}}
}

// Clone returns a deep copy of the record.
func (p *PortfolioRecord) Clone() *PortfolioRecord {
	out := NewPortfolioRecord()
	if p == nil {
		return out
	}
	if p.Profile != nil {
		f := *p.Profile
		out.Profile = &f
	}
	if p.Resume != nil {
		f := *p.Resume
		out.Resume = &f
	}
	out.Projects = append(out.Projects, p.Projects...)
	return out
}

// Singleton returns the profile or resume record, or nil for any other category.
func (p *PortfolioRecord) Singleton(c Category) *FileRecord {
	switch c {
	case Profile:
		return p.Profile
	case Resume:
		return p.Resume
	}
	return nil
}

// SetSingleton replaces (or clears, when f is nil) the profile or resume slot.
func (p *PortfolioRecord) SetSingleton(c Category, f *FileRecord) {
	switch c {
	case Profile:
		p.Profile = f
	case Resume:
		p.Resume = f
	}
}

// ProjectIndex returns the position of the project with the given id, or -1.
func (p *PortfolioRecord) ProjectIndex(id string) int {
	for i := range p.Projects {
		if p.Projects[i].ID == id {
			return i
		}
	}
	return -1
}

// Find looks a file up by id across every category.
func (p *PortfolioRecord) Find(id string) (*FileRecord, bool) {
	if p.Profile != nil && p.Profile.ID == id {
		return p.Profile, true
	}
	if p.Resume != nil && p.Resume.ID == id {
		return p.Resume, true
	}
	if i := p.ProjectIndex(id); i >= 0 {
		return &p.Projects[i], true
	}
	return nil, false
}

// Validate checks the structural invariants of the record.
func (p *PortfolioRecord) Validate() error {
	for _, c := range []Category{Profile, Resume} {
		f := p.Singleton(c)
		if f == nil {
			continue
		}
		if f.Category != c {
			return fmt.Errorf("%w: %s slot holds a %s file", ErrInvalidRecord, c, f.Category)
		}
		if err := f.validate(); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(p.Projects))
	for i := range p.Projects {
		f := &p.Projects[i]
		if f.Category != Project {
			return fmt.Errorf("%w: projects[%d] is a %s file", ErrInvalidRecord, i, f.Category)
		}
		if err := f.validate(); err != nil {
			return err
		}
		if _, dup := seen[f.ID]; dup {
			return fmt.Errorf("%w: duplicate project id %q", ErrInvalidRecord, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return nil
}

// Repair drops the entries that break Validate and returns why each one was dropped.
// The first project with a given id wins.
func (p *PortfolioRecord) Repair() []string {
	var dropped []string
	for _, c := range []Category{Profile, Resume} {
		f := p.Singleton(c)
		if f == nil {
			continue
		}
		err := f.validate()
		if f.Category != c {
			err = fmt.Errorf("%w: %s slot holds a %s file", ErrInvalidRecord, c, f.Category)
		}
		if err == nil {
			continue
		}
		dropped = append(dropped, err.Error())
		p.SetSingleton(c, nil)
	}

	kept := p.Projects[:0]
	seen := make(map[string]struct{}, len(p.Projects))
	for i, f := range p.Projects {
		err := f.validate()
		switch {
		case f.Category != Project:
			err = fmt.Errorf("%w: projects[%d] is a %s file", ErrInvalidRecord, i, f.Category)
		case err == nil:
			if _, dup := seen[f.ID]; dup {
				err = fmt.Errorf("%w: duplicate project id %q", ErrInvalidRecord, f.ID)
			}
		}
		if err != nil {
			dropped = append(dropped, err.Error())
			continue
		}
		seen[f.ID] = struct{}{}
		kept = append(kept, f)
	}
	if p.Projects != nil {
		p.Projects = kept
	}
	return dropped
}

func (f *FileRecord) validate() error {
	if f.ID == "" {
		return fmt.Errorf("%w: %s file without id", ErrInvalidRecord, f.Category)
	}
	if f.SizeBytes < 0 {
		return fmt.Errorf("%w: file %q has negative size", ErrInvalidRecord, f.ID)
	}
	return nil
}

// Stats summarizes how complete a portfolio is.
type Stats struct {
	TotalFiles        int  `json:"total_files"`
	HasProfile        bool `json:"has_profile"`
	HasResume         bool `json:"has_resume"`
	ProjectCount      int  `json:"project_count"`
	CompletionPercent int  `json:"completion_percent"`
}

// Stats counts the files and computes completion over profile, resume and at least one project.
func (p *PortfolioRecord) Stats() Stats {
	s := Stats{
		HasProfile:   p.Profile != nil,
		HasResume:    p.Resume != nil,
		ProjectCount: len(p.Projects),
	}
	completed := 0
	if s.HasProfile {
		s.TotalFiles++
		completed++
	}
	if s.HasResume {
		s.TotalFiles++
		completed++
	}
	if s.ProjectCount > 0 {
		completed++
	}
	s.TotalFiles += s.ProjectCount
	s.CompletionPercent = int(math.Round(float64(completed) / 3 * 100))
	return s
}
