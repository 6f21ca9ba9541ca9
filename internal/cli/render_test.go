package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/insight"
	"github.com/Veraticus/social-capital/internal/model"
	"github.com/Veraticus/social-capital/internal/storage"
	"github.com/Veraticus/social-capital/internal/tags"
	"github.com/stretchr/testify/assert"
)

func sampleContacts() []model.Contact {
	return []model.Contact{
		{ID: "contact-1", Name: "Avery", Score: model.ScoreVector{X: 8, Y: 8, Z: 8}, Category: model.CategoryCorePower, Note: "met at the conference"},
		{ID: "contact-2", Name: "Emery", Score: model.ScoreVector{X: 2, Y: 2, Z: 2}, Category: model.CategoryOthers},
	}
}

func TestRenderContactTable(t *testing.T) {
	out := RenderContactTable(sampleContacts())

	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Avery")
	assert.Contains(t, out, "Emery")
	assert.Contains(t, out, "8.0/8.0/8.0")
	assert.Contains(t, out, "Core Power")
	assert.Contains(t, out, model.CategoryOthers.Info().Label)
}

func TestRenderContactTable_Empty(t *testing.T) {
	assert.Contains(t, RenderContactTable(nil), "No contacts yet")
}

func TestRenderContact(t *testing.T) {
	c := sampleContacts()[0]
	c.ValueProvide = "introductions"
	c.Tags = []string{tags.WisdomAlly, "mystery"}

	out := RenderContact(c, tags.Default())

	assert.Contains(t, out, "Avery")
	assert.Contains(t, out, "introductions")
	wisdom, ok := tags.Default().Lookup(tags.WisdomAlly)
	assert.True(t, ok)
	assert.Contains(t, out, wisdom.Label)
	assert.Contains(t, out, "mystery")
	assert.Contains(t, out, "met at the conference")
}

func TestRenderThresholds(t *testing.T) {
	th := model.DefaultThresholds()
	th.Rules[model.CategoryStrategicGoal] = model.RuleSet{}
	delete(th.Rules, model.CategoryPrestigeLeverage)

	out := RenderThresholds(th)

	assert.Contains(t, out, "version 1")
	assert.Contains(t, out, "xMin=7")
	assert.Contains(t, out, "matches every contact")
	assert.Contains(t, out, "not configured")
	assert.Contains(t, out, "fallback")

	warnings := EmptyRuleSetWarnings(th)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Strategic Goal")
}

func TestRenderHistory(t *testing.T) {
	assert.Contains(t, RenderHistory(nil), "No threshold history")

	th := model.DefaultThresholds()
	th.UpdatedAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := RenderHistory([]model.Thresholds{*th})
	assert.Contains(t, out, "VERSION")
	assert.Contains(t, out, "core:")
}

func TestRenderSummaryAndFindings(t *testing.T) {
	report := insight.Analyze(sampleContacts(), tags.Default())

	summary := RenderSummary(report.Summary)
	assert.Contains(t, summary, "Contacts: 2")
	assert.Contains(t, summary, "50%")

	findings := RenderFindings(report.Findings)
	for _, f := range report.Findings {
		assert.Contains(t, findings, f.Title)
	}
}

func TestRenderExplanation(t *testing.T) {
	c := sampleContacts()[1]
	th := model.DefaultThresholds()

	out := RenderExplanation(c, classification.Explain(c.Score, th))

	assert.Contains(t, out, "Emery")
	assert.Contains(t, out, "fails")
	assert.Contains(t, out, "fallback")
}

func TestRenderTagCatalog(t *testing.T) {
	out := RenderTagCatalog(tags.Default(), map[string]int{tags.GrowthEngine: 3})
	for _, tag := range tags.Default().All() {
		assert.Contains(t, out, tag.ID)
	}
	assert.Contains(t, out, "[3]")
}

func TestRenderCheckpoints(t *testing.T) {
	assert.Contains(t, RenderCheckpoints(nil), "No checkpoints")

	out := RenderCheckpoints([]storage.CheckpointInfo{{
		ID:               "auto-reset-20240101-120000",
		CreatedAt:        time.Now(),
		IsAuto:           true,
		Contacts:         4,
		ThresholdVersion: 3,
		FileSize:         2048,
	}})
	assert.Contains(t, out, "auto-reset")
	assert.Contains(t, out, "v3")
	assert.Contains(t, out, "2.0 KB")
}

func TestTagCountsSorted(t *testing.T) {
	got := TagCountsSorted(map[string]int{"b": 2, "a": 2, "c": 5})
	assert.Equal(t, []string{"c", "a", "b"}, got)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	got := truncate(strings.Repeat("x", 40), 10)
	assert.Equal(t, 10, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}
