// Package analysisrouterservice decides which modeling methods run for a given
// analysis request inside the modeling context.
//
// Routing is deterministic over the dataset profile (sample count, time
// series availability, noise, prior knowledge); the resulting plan carries
// normalized method weights that the ensemble service later uses to combine
// outputs.
package analysisrouterservice
