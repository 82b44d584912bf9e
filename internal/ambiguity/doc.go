// Package ambiguity decides what must be confirmed by a human before a
// workflow request is formalized into IR.
//
// Five detection layers (confidence, patterns, conflicts, vague, risk) each
// triage findings into must_confirm, should_review and looks_good buckets.
// The Detector runs them in a fixed order and Merge folds their results
// into one Report with an overall confidence score.
//
// Item ids are qualified by the layer that produced them ("risk:pii",
// "confidence:a1") so one layer can never suppress another's findings by
// accident.
package ambiguity
