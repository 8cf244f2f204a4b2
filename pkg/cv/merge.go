package cv

import "strings"

// RewriteResult is the validated, partial output of a rewrite task.
// Only sections present here (non-nil) were produced by the model; list
// entries are patches addressed by stable id.
type RewriteResult struct {
	Summary        *string           `json:"summary,omitempty"`
	WorkExperience []ExperiencePatch `json:"work_experience,omitempty"`
	Education      []EntryPatch      `json:"education,omitempty"`
	Skills         []Skill           `json:"skills,omitempty"`
	Projects       []EntryPatch      `json:"projects,omitempty"`
	Certifications []EntryPatch      `json:"certifications,omitempty"`
	Memberships    []EntryPatch      `json:"memberships,omitempty"`
	Interests      []EntryPatch      `json:"interests,omitempty"`
}

// EntryPatch updates a single list entry. Nil fields were not supplied by
// the model and must leave the target field untouched.
type EntryPatch struct {
	ID          string  `json:"id"`
	Description *string `json:"description,omitempty"`
}

// ExperiencePatch extends EntryPatch with the nested responsibility list a
// rewrite may restructure.
type ExperiencePatch struct {
	ID                       string                   `json:"id"`
	Description              *string                  `json:"description,omitempty"`
	ResponsibilityCategories []ResponsibilityCategory `json:"responsibility_categories,omitempty"`
}

// Sections returns the section keys the result actually carries.
func (r RewriteResult) Sections() []string {
	var out []string
	if r.Summary != nil {
		out = append(out, SectionSummary)
	}
	if r.WorkExperience != nil {
		out = append(out, SectionWorkExperience)
	}
	if r.Education != nil {
		out = append(out, SectionEducation)
	}
	if r.Skills != nil {
		out = append(out, SectionSkills)
	}
	if r.Projects != nil {
		out = append(out, SectionProjects)
	}
	if r.Certifications != nil {
		out = append(out, SectionCertifications)
	}
	if r.Memberships != nil {
		out = append(out, SectionMemberships)
	}
	if r.Interests != nil {
		out = append(out, SectionInterests)
	}
	return out
}

// Merge applies a validated rewrite result onto doc, restricted to the
// requested scope. Sections absent from the result, sections outside the
// scope, and list entries whose id the result does not mention are passed
// through unchanged. Entries the result mentions but the document does not
// contain are dropped, never inserted. The second return value lists the
// result sections that were ignored because they fell outside the scope;
// the caller decides whether that is worth logging.
//
// Merge never mutates doc: it returns a new document, so a failed task can
// leave the persisted state untouched.
func Merge(doc Document, res RewriteResult, scope SectionSet) (Document, []string) {
	merged := doc
	var outOfScope []string

	ignore := func(section string) bool {
		if scope.Has(section) {
			return false
		}
		outOfScope = append(outOfScope, section)
		return true
	}

	if res.Summary != nil && !ignore(SectionSummary) {
		merged.Summary = *res.Summary
	}
	if res.WorkExperience != nil && !ignore(SectionWorkExperience) {
		merged.WorkExperience = mergeByID(doc.WorkExperience, res.WorkExperience,
			func(e Experience) string { return e.ID },
			func(p ExperiencePatch) string { return p.ID },
			func(dst *Experience, p ExperiencePatch) {
				if p.Description != nil {
					dst.Description = *p.Description
				}
				if p.ResponsibilityCategories != nil {
					dst.ResponsibilityCategories = p.ResponsibilityCategories
				}
			})
	}
	if res.Education != nil && !ignore(SectionEducation) {
		merged.Education = mergeByID(doc.Education, res.Education,
			func(e Education) string { return e.ID }, patchID, applyEntryPatch[Education])
	}
	if res.Skills != nil && !ignore(SectionSkills) {
		merged.Skills = mergeSkills(doc.Skills, res.Skills)
	}
	if res.Projects != nil && !ignore(SectionProjects) {
		merged.Projects = mergeByID(doc.Projects, res.Projects,
			func(e Project) string { return e.ID }, patchID, applyEntryPatch[Project])
	}
	if res.Certifications != nil && !ignore(SectionCertifications) {
		merged.Certifications = mergeByID(doc.Certifications, res.Certifications,
			func(e Certification) string { return e.ID }, patchID, applyEntryPatch[Certification])
	}
	if res.Memberships != nil && !ignore(SectionMemberships) {
		merged.Memberships = mergeByID(doc.Memberships, res.Memberships,
			func(e Membership) string { return e.ID }, patchID, applyEntryPatch[Membership])
	}
	if res.Interests != nil && !ignore(SectionInterests) {
		merged.Interests = mergeByID(doc.Interests, res.Interests,
			func(e Interest) string { return e.ID }, patchID, applyEntryPatch[Interest])
	}

	return merged, outOfScope
}

// described is satisfied by every id-keyed entry whose patch only touches
// the description.
type described interface {
	Education | Project | Certification | Membership | Interest
}

func patchID(p EntryPatch) string { return p.ID }

func applyEntryPatch[E described](dst *E, p EntryPatch) {
	if p.Description == nil {
		return
	}
	// All described entries expose Description as a plain string field.
	switch d := any(dst).(type) {
	case *Education:
		d.Description = *p.Description
	case *Project:
		d.Description = *p.Description
	case *Certification:
		d.Description = *p.Description
	case *Membership:
		d.Description = *p.Description
	case *Interest:
		d.Description = *p.Description
	}
}

// mergeByID is the one merge primitive for id-keyed list sections: existing
// entries stay in order, an entry is updated in place when a patch carries
// its id, and patches addressing unknown ids are discarded.
func mergeByID[E, P any](existing []E, patches []P, entryID func(E) string, patchID func(P) string, apply func(*E, P)) []E {
	if len(existing) == 0 {
		return existing
	}
	byID := make(map[string]P, len(patches))
	for _, p := range patches {
		if id := patchID(p); id != "" {
			byID[id] = p
		}
	}
	out := make([]E, len(existing))
	copy(out, existing)
	for i := range out {
		if p, ok := byID[entryID(out[i])]; ok {
			apply(&out[i], p)
		}
	}
	return out
}

// mergeSkills is the one name-keyed section: names already present are kept
// as-is (case-insensitive match), new names are appended in result order.
func mergeSkills(existing, incoming []Skill) []Skill {
	out := make([]Skill, len(existing))
	copy(out, existing)
	seen := make(map[string]struct{}, len(existing))
	for _, s := range existing {
		seen[strings.ToLower(strings.TrimSpace(s.Name))] = struct{}{}
	}
	for _, s := range incoming {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		s.Name = name
		out = append(out, s)
	}
	return out
}
