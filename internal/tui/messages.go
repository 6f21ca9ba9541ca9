package tui

import (
	"github.com/Veraticus/social-capital/internal/classification"
	"github.com/Veraticus/social-capital/internal/insight"
	"github.com/Veraticus/social-capital/internal/model"
)

// Data loading messages.
type dataLoadedMsg struct {
	thresholds *model.Thresholds
	contacts   []model.Contact
	report     insight.Report
}

type explanationMsg struct {
	contact     *model.Contact
	evaluations []classification.Evaluation
}

type reclassifiedMsg struct {
	count int
}

type errorMsg struct {
	err error
}

// Status messages.
type statusMsg struct {
	message string
}
