package aitask

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pavelk2v/cvforge/pkg/cv"
)

// Normalize parses and repairs raw model output into the fixed schema for
// the task kind. Repairable defects (fenced JSON, out-of-range scores, nil
// arrays) are fixed; structurally incompatible payloads are rejected with
// ErrInvalidShape and nothing downstream runs.
func Normalize(kind Kind, raw string) (ValidatedResult, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return ValidatedResult{}, fmt.Errorf("%w: no JSON object in output", ErrInvalidShape)
	}

	switch kind {
	case KindRewrite:
		return normalizeRewrite(payload)
	case KindAssess:
		return normalizeAssessment(payload)
	case KindExtractKeywords:
		return normalizeKeywords(payload)
	case KindCoverLetter:
		return normalizeCoverLetter(payload)
	case KindTemplateGenerate:
		return normalizeTemplate(payload)
	}
	return ValidatedResult{}, fmt.Errorf("unknown task kind %q", kind)
}

// extractJSON finds the JSON object inside model output that may be wrapped
// in prose or markdown fences.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
		return raw
	}
	i := strings.Index(raw, "{")
	j := strings.LastIndex(raw, "}")
	if i < 0 || j <= i {
		return ""
	}
	return raw[i : j+1]
}

func normalizeRewrite(payload string) (ValidatedResult, error) {
	var res cv.RewriteResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return ValidatedResult{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	// Entries without an id cannot be merged; reject rather than guess.
	for _, p := range res.WorkExperience {
		if strings.TrimSpace(p.ID) == "" {
			return ValidatedResult{}, fmt.Errorf("%w: work_experience entry missing id", ErrInvalidShape)
		}
	}
	for section, patches := range map[string][]cv.EntryPatch{
		cv.SectionEducation:      res.Education,
		cv.SectionProjects:       res.Projects,
		cv.SectionCertifications: res.Certifications,
		cv.SectionMemberships:    res.Memberships,
		cv.SectionInterests:      res.Interests,
	} {
		for _, p := range patches {
			if strings.TrimSpace(p.ID) == "" {
				return ValidatedResult{}, fmt.Errorf("%w: %s entry missing id", ErrInvalidShape, section)
			}
		}
	}
	if len(res.Sections()) == 0 {
		return ValidatedResult{}, fmt.Errorf("%w: rewrite result carries no sections", ErrInvalidShape)
	}
	return ValidatedResult{Rewrite: &res}, nil
}

// assessmentPayload mirrors AssessmentReport with optional numbers so that
// missing required scores are detectable, not defaulted to zero.
type assessmentPayload struct {
	OverallScore    *float64 `json:"overall_score"`
	ContentScore    *float64 `json:"content_score"`
	StructureScore  *float64 `json:"structure_score"`
	KeywordScore    *float64 `json:"keyword_score"`
	LanguageScore   *float64 `json:"language_score"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

func normalizeAssessment(payload string) (ValidatedResult, error) {
	var p assessmentPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return ValidatedResult{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	required := map[string]*float64{
		"overall_score":   p.OverallScore,
		"content_score":   p.ContentScore,
		"structure_score": p.StructureScore,
		"keyword_score":   p.KeywordScore,
		"language_score":  p.LanguageScore,
	}
	for name, v := range required {
		if v == nil {
			return ValidatedResult{}, fmt.Errorf("%w: missing %s", ErrInvalidShape, name)
		}
	}
	rep := AssessmentReport{
		OverallScore:    clampScore(*p.OverallScore),
		ContentScore:    clampScore(*p.ContentScore),
		StructureScore:  clampScore(*p.StructureScore),
		KeywordScore:    clampScore(*p.KeywordScore),
		LanguageScore:   clampScore(*p.LanguageScore),
		Strengths:       emptyIfNil(p.Strengths),
		Weaknesses:      emptyIfNil(p.Weaknesses),
		Recommendations: emptyIfNil(p.Recommendations),
	}
	return ValidatedResult{Assessment: &rep}, nil
}

func normalizeKeywords(payload string) (ValidatedResult, error) {
	var p struct {
		Keywords []Keyword `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return ValidatedResult{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if p.Keywords == nil {
		return ValidatedResult{}, fmt.Errorf("%w: missing keywords", ErrInvalidShape)
	}
	out := make([]Keyword, 0, len(p.Keywords))
	for _, kw := range p.Keywords {
		kw.Keyword = strings.TrimSpace(kw.Keyword)
		if kw.Keyword == "" {
			continue
		}
		kw.Relevance = clampUnit(kw.Relevance)
		out = append(out, kw)
	}
	return ValidatedResult{Keywords: out}, nil
}

func normalizeCoverLetter(payload string) (ValidatedResult, error) {
	var p struct {
		CoverLetter string `json:"cover_letter"`
	}
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return ValidatedResult{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	letter := strings.TrimSpace(p.CoverLetter)
	if letter == "" {
		return ValidatedResult{}, fmt.Errorf("%w: missing cover_letter", ErrInvalidShape)
	}
	return ValidatedResult{CoverLetter: letter}, nil
}

func normalizeTemplate(payload string) (ValidatedResult, error) {
	var doc cv.Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return ValidatedResult{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
	}
	if strings.TrimSpace(doc.Summary) == "" && len(doc.WorkExperience) == 0 {
		return ValidatedResult{}, fmt.Errorf("%w: template result is empty", ErrInvalidShape)
	}
	doc.Normalize()
	// ids are minted server-side; anything the model put there is discarded
	for i := range doc.WorkExperience {
		doc.WorkExperience[i].ID = ""
	}
	for i := range doc.Education {
		doc.Education[i].ID = ""
	}
	for i := range doc.Projects {
		doc.Projects[i].ID = ""
	}
	for i := range doc.Certifications {
		doc.Certifications[i].ID = ""
	}
	for i := range doc.Memberships {
		doc.Memberships[i].ID = ""
	}
	for i := range doc.Interests {
		doc.Interests[i].ID = ""
	}
	doc.AssignIDs()
	return ValidatedResult{Template: &doc}, nil
}

func clampScore(v float64) int {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v + 0.5)
	}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
