package cv

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Section keys of a document. The key set is fixed: a section may be empty
// but is never absent from a document.
const (
	SectionSummary        = "summary"
	SectionWorkExperience = "work_experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionProjects       = "projects"
	SectionCertifications = "certifications"
	SectionMemberships    = "memberships"
	SectionInterests      = "interests"
)

// AllSections lists every section key in canonical order.
func AllSections() []string {
	return []string{
		SectionSummary,
		SectionWorkExperience,
		SectionEducation,
		SectionSkills,
		SectionProjects,
		SectionCertifications,
		SectionMemberships,
		SectionInterests,
	}
}

// ValidSection reports whether name is a known section key.
func ValidSection(name string) bool {
	for _, s := range AllSections() {
		if s == name {
			return true
		}
	}
	return false
}

// SectionSet is the merge scope of an AI task.
type SectionSet map[string]struct{}

func NewSectionSet(names ...string) SectionSet {
	set := make(SectionSet, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

func (s SectionSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s SectionSet) Names() []string {
	out := make([]string, 0, len(s))
	for _, name := range AllSections() {
		if s.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

// Document is the canonical CV aggregate. Every entry in a list-valued
// section carries a stable id assigned at creation and never reused.
type Document struct {
	Summary        string          `json:"summary"`
	WorkExperience []Experience    `json:"work_experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
	Memberships    []Membership    `json:"memberships"`
	Interests      []Interest      `json:"interests"`
}

type Experience struct {
	ID                       string                   `json:"id"`
	Company                  string                   `json:"company"`
	Role                     string                   `json:"role"`
	Start                    string                   `json:"start"` // YYYY-MM or free text
	End                      string                   `json:"end"`   // YYYY-MM or "present"
	Description              string                   `json:"description"`
	ResponsibilityCategories []ResponsibilityCategory `json:"responsibility_categories,omitempty"`
}

// ResponsibilityCategory groups bullet points of one role by theme.
type ResponsibilityCategory struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Description string `json:"description"`
}

type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	Description string `json:"description"`
}

type Certification struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Year        string `json:"year"`
	Description string `json:"description"`
}

type Membership struct {
	ID           string `json:"id"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Description  string `json:"description"`
}

type Interest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Normalize replaces nil list sections with empty slices so that documents
// serialize with [] instead of null.
func (d *Document) Normalize() {
	if d.WorkExperience == nil {
		d.WorkExperience = []Experience{}
	}
	if d.Education == nil {
		d.Education = []Education{}
	}
	if d.Skills == nil {
		d.Skills = []Skill{}
	}
	if d.Projects == nil {
		d.Projects = []Project{}
	}
	if d.Certifications == nil {
		d.Certifications = []Certification{}
	}
	if d.Memberships == nil {
		d.Memberships = []Membership{}
	}
	if d.Interests == nil {
		d.Interests = []Interest{}
	}
}

// AssignIDs fills in a fresh id for every list entry that has none.
// Used for documents produced from scratch (template generation), where
// the model cannot be trusted to mint stable identifiers.
func (d *Document) AssignIDs() {
	for i := range d.WorkExperience {
		if d.WorkExperience[i].ID == "" {
			d.WorkExperience[i].ID = uuid.NewString()
		}
	}
	for i := range d.Education {
		if d.Education[i].ID == "" {
			d.Education[i].ID = uuid.NewString()
		}
	}
	for i := range d.Projects {
		if d.Projects[i].ID == "" {
			d.Projects[i].ID = uuid.NewString()
		}
	}
	for i := range d.Certifications {
		if d.Certifications[i].ID == "" {
			d.Certifications[i].ID = uuid.NewString()
		}
	}
	for i := range d.Memberships {
		if d.Memberships[i].ID == "" {
			d.Memberships[i].ID = uuid.NewString()
		}
	}
	for i := range d.Interests {
		if d.Interests[i].ID == "" {
			d.Interests[i].ID = uuid.NewString()
		}
	}
}

// Stored is a persisted document together with its ownership and lineage.
// A record with SourceID set is a variant; a variant may additionally be
// linked to at most one job-application record.
type Stored struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"ownerId"`
	SourceID      *uuid.UUID `json:"sourceId,omitempty"`
	ApplicationID *uuid.UUID `json:"applicationId,omitempty"`
	Document      Document   `json:"document"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Repository is the port to the document store.
type Repository interface {
	Create(ctx context.Context, rec Stored) error
	GetForOwner(ctx context.Context, ownerID, id uuid.UUID) (Stored, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]Stored, error)
	UpdateContent(ctx context.Context, ownerID, id uuid.UUID, doc Document) error
	// LinkApplication must fail if another document already holds the link.
	LinkApplication(ctx context.Context, ownerID, id uuid.UUID, applicationID *uuid.UUID) error
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) error
}
