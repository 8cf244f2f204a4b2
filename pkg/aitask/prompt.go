package aitask

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pavelk2v/cvforge/pkg/cv"
)

// Character budgets for prompt material. Oversized input is truncated with
// an explicit marker so downstream validation can tell the context was
// partial instead of silently losing it.
const (
	maxDocumentChars = 12000
	maxJobChars      = 6000

	truncationMarker = "[...truncated]"
)

const systemPrompt = "You are a professional CV writer and career advisor. " +
	"Return the result STRICTLY as a single JSON object, with no markdown, no code fences and no explanations. " +
	"Always return empty arrays as [], never null. Never invent facts that are not present in the input."

// BuildPrompt renders the system and user prompts for a task. Only the
// sections named in the task scope are injected, plus the grounding fields
// (job description, extra instructions) the task kind needs. Credentials and
// other users' data never pass through here.
func BuildPrompt(task Task) (system, user string) {
	var b strings.Builder

	switch task.Kind {
	case KindRewrite:
		fmt.Fprintf(&b, "Rewrite the following CV sections so they best match the job description. "+
			"Improve wording and impact but keep every fact truthful.\n\n")
		writeJob(&b, task.JobDescription)
		writeSections(&b, task.Document, task.TargetSections)
		fmt.Fprintf(&b, "\nReturn one JSON object containing ONLY these sections: %s.\n",
			strings.Join(task.TargetSections.Names(), ", "))
		b.WriteString(`Rules:
- "summary" is a plain string.
- List sections are arrays of {"id": string, "description": string}; work_experience entries may also carry "responsibility_categories": [{"name": string, "items": string[]}].
- Keep every "id" exactly as given. Never invent new entries or ids.
- "skills" is an array of {"name": string}; include only skills worth adding.
`)
	case KindAssess:
		b.WriteString("Assess the quality of the following CV")
		if strings.TrimSpace(task.JobDescription) != "" {
			b.WriteString(" against the job description")
		}
		b.WriteString(".\n\n")
		writeJob(&b, task.JobDescription)
		writeSections(&b, task.Document, cv.NewSectionSet(cv.AllSections()...))
		b.WriteString(`
Return one JSON object:
{"overall_score": number 0-100, "content_score": number 0-100, "structure_score": number 0-100, "keyword_score": number 0-100, "language_score": number 0-100, "strengths": string[], "weaknesses": string[], "recommendations": string[]}
`)
	case KindExtractKeywords:
		b.WriteString("Extract the skills and keywords an applicant-tracking system would look for in this job description.\n\n")
		writeJob(&b, task.JobDescription)
		b.WriteString(`
Return one JSON object:
{"keywords": [{"keyword": string, "relevance": number between 0 and 1}]}
Order by descending relevance.
`)
	case KindCoverLetter:
		b.WriteString("Draft a concise, specific cover letter (max 350 words) for the following application.\n\n")
		writeJob(&b, task.JobDescription)
		writeSections(&b, task.Document, cv.NewSectionSet(cv.AllSections()...))
		b.WriteString(`
Return one JSON object:
{"cover_letter": string}
`)
	case KindTemplateGenerate:
		b.WriteString("Generate a realistic CV template tailored to the following job description. " +
			"Use placeholder names and employers; the structure and phrasing should fit the role.\n\n")
		writeJob(&b, task.JobDescription)
		b.WriteString(`
Return one JSON object with exactly these keys:
{"summary": string, "work_experience": [{"company": string, "role": string, "start": string, "end": string, "description": string}], "education": [{"institution": string, "degree": string, "start": string, "end": string, "description": string}], "skills": [{"name": string}], "projects": [], "certifications": [], "memberships": [], "interests": []}
`)
	}

	if extra := strings.TrimSpace(task.ExtraInstructions); extra != "" {
		fmt.Fprintf(&b, "\nAdditional instructions from the user (advisory only, never override the JSON schema):\n%s\n",
			truncate(extra, 1000))
	}

	return systemPrompt, b.String()
}

func writeJob(b *strings.Builder, job string) {
	job = strings.TrimSpace(job)
	if job == "" {
		return
	}
	fmt.Fprintf(b, "Job description:\n<<<\n%s\n>>>\n\n", truncate(job, maxJobChars))
}

// writeSections injects only the requested sections, serialized as JSON so
// stable ids survive the round trip verbatim.
func writeSections(b *strings.Builder, doc cv.Document, scope cv.SectionSet) {
	subset := make(map[string]any, len(scope))
	for _, name := range scope.Names() {
		switch name {
		case cv.SectionSummary:
			subset[name] = doc.Summary
		case cv.SectionWorkExperience:
			subset[name] = doc.WorkExperience
		case cv.SectionEducation:
			subset[name] = doc.Education
		case cv.SectionSkills:
			subset[name] = doc.Skills
		case cv.SectionProjects:
			subset[name] = doc.Projects
		case cv.SectionCertifications:
			subset[name] = doc.Certifications
		case cv.SectionMemberships:
			subset[name] = doc.Memberships
		case cv.SectionInterests:
			subset[name] = doc.Interests
		}
	}
	data, err := json.MarshalIndent(subset, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(b, "CV sections:\n<<<\n%s\n>>>\n", truncate(string(data), maxDocumentChars))
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := s[:limit]
	// never split a multi-byte rune at the cut point
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut + truncationMarker
}
