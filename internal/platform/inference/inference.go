// Package inference talks to the external medical-inference collaborator
// that turns a set of symptom tokens into ranked urgency suggestions. The
// collaborator is network-fallible; callers decide what a failure means
// (the triage workflow treats it as non-fatal).
package inference

import "context"

// Suggestion is one ranked triage suggestion.
type Suggestion struct {
	UrgencyLevel string `json:"urgency_level"`
	Reasoning    string `json:"reasoning"`
}

// Suggester produces up to limit ranked suggestions for the given symptoms.
type Suggester interface {
	Suggest(ctx context.Context, symptoms []string, limit int) ([]Suggestion, error)
}

// Disabled is a Suggester used when no inference backend is configured.
// It always reports no suggestions.
type Disabled struct{}

func (Disabled) Suggest(context.Context, []string, int) ([]Suggestion, error) {
	return nil, nil
}
