package aitask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAssessmentClampsScores(t *testing.T) {
	raw := `{"overall_score":150,"content_score":-5,"structure_score":88.6,"keyword_score":70,"language_score":90}`

	res, err := Normalize(KindAssess, raw)

	require.NoError(t, err)
	require.NotNil(t, res.Assessment)
	assert.Equal(t, 100, res.Assessment.OverallScore)
	assert.Equal(t, 0, res.Assessment.ContentScore)
	assert.Equal(t, 89, res.Assessment.StructureScore)
	// optional arrays coerce to empty, not null
	assert.NotNil(t, res.Assessment.Strengths)
	assert.Empty(t, res.Assessment.Strengths)
	assert.NotNil(t, res.Assessment.Recommendations)
}

func TestNormalizeAssessmentMissingScoreRejected(t *testing.T) {
	raw := `{"content_score":80,"structure_score":80,"keyword_score":80,"language_score":80}`

	_, err := Normalize(KindAssess, raw)

	assert.ErrorIs(t, err, ErrInvalidShape)
	assert.Contains(t, err.Error(), "overall_score")
}

func TestNormalizeExtractsFencedJSON(t *testing.T) {
	raw := "Here is the assessment you asked for:\n```json\n" +
		`{"overall_score":75,"content_score":70,"structure_score":80,"keyword_score":60,"language_score":85,"strengths":["clear"]}` +
		"\n```\nLet me know if you need anything else."

	res, err := Normalize(KindAssess, raw)

	require.NoError(t, err)
	assert.Equal(t, 75, res.Assessment.OverallScore)
	assert.Equal(t, []string{"clear"}, res.Assessment.Strengths)
}

func TestNormalizeUnparseableRejected(t *testing.T) {
	_, err := Normalize(KindAssess, "I am sorry, I cannot do that.")
	assert.ErrorIs(t, err, ErrInvalidShape)

	_, err = Normalize(KindRewrite, `{"summary": }`)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestNormalizeRewrite(t *testing.T) {
	raw := `{"summary":"B","work_experience":[{"id":"w1","description":"new"}],"skills":[{"name":"Go"}]}`

	res, err := Normalize(KindRewrite, raw)

	require.NoError(t, err)
	require.NotNil(t, res.Rewrite)
	require.NotNil(t, res.Rewrite.Summary)
	assert.Equal(t, "B", *res.Rewrite.Summary)
	require.Len(t, res.Rewrite.WorkExperience, 1)
	assert.Equal(t, "w1", res.Rewrite.WorkExperience[0].ID)
}

func TestNormalizeRewriteEntryWithoutIDRejected(t *testing.T) {
	raw := `{"work_experience":[{"description":"new"}]}`
	_, err := Normalize(KindRewrite, raw)
	assert.ErrorIs(t, err, ErrInvalidShape)

	raw = `{"education":[{"id":"","description":"new"}]}`
	_, err = Normalize(KindRewrite, raw)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestNormalizeRewriteEmptyResultRejected(t *testing.T) {
	_, err := Normalize(KindRewrite, `{}`)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestNormalizeKeywords(t *testing.T) {
	raw := `{"keywords":[{"keyword":"kubernetes","relevance":1.4},{"keyword":"go","relevance":0.8},{"keyword":"  ","relevance":0.5},{"keyword":"sql","relevance":-1}]}`

	res, err := Normalize(KindExtractKeywords, raw)

	require.NoError(t, err)
	require.Len(t, res.Keywords, 3)
	assert.Equal(t, 1.0, res.Keywords[0].Relevance)
	assert.Equal(t, 0.8, res.Keywords[1].Relevance)
	assert.Equal(t, 0.0, res.Keywords[2].Relevance)
}

func TestNormalizeKeywordsMissingKeyRejected(t *testing.T) {
	_, err := Normalize(KindExtractKeywords, `{"skills":["go"]}`)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestNormalizeCoverLetter(t *testing.T) {
	res, err := Normalize(KindCoverLetter, `{"cover_letter":"Dear hiring team, ..."}`)
	require.NoError(t, err)
	assert.Equal(t, "Dear hiring team, ...", res.CoverLetter)

	_, err = Normalize(KindCoverLetter, `{"cover_letter":"  "}`)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestNormalizeTemplateAssignsFreshIDs(t *testing.T) {
	raw := `{"summary":"Experienced engineer","work_experience":[{"id":"made-up","company":"Placeholder Inc","role":"Engineer","description":"built things"}]}`

	res, err := Normalize(KindTemplateGenerate, raw)

	require.NoError(t, err)
	require.NotNil(t, res.Template)
	require.Len(t, res.Template.WorkExperience, 1)
	// model-supplied ids are discarded and re-minted server-side
	assert.NotEqual(t, "made-up", res.Template.WorkExperience[0].ID)
	assert.NotEmpty(t, res.Template.WorkExperience[0].ID)
	assert.NotNil(t, res.Template.Skills)
}

func TestNormalizeTemplateEmptyRejected(t *testing.T) {
	_, err := Normalize(KindTemplateGenerate, `{"projects":[]}`)
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON(` {"a":1} `))
	assert.Equal(t, `{"a":1}`, extractJSON("prefix {\"a\":1} suffix"))
	assert.Equal(t, "", extractJSON("no json here"))
}
