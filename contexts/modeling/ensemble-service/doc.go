// Package ensembleservice combines the risk scores produced by the individual
// modeling methods into a single prediction per patient.
//
// Three combination strategies are supported: a weighted average driven by the
// analysis plan's route weights, a majority vote over high/low calls, and a
// confidence-weighted average. Every prediction carries an agreement score so
// clinicians can see how much the underlying methods disagreed.
package ensembleservice
