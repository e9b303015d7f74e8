// Package patientservice owns patient demographics, consent state, and large
// clinical record artifacts inside the clinical-data context.
//
// Medical record numbers are encrypted before they reach any repository, and
// artifact blobs go to the platform object store with only metadata rows kept
// in Postgres.
package patientservice
