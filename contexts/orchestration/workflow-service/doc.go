// Package workflowservice orchestrates long-running analysis jobs: GRN
// inference, ensemble prediction, and explanation generation.
//
// Submission is idempotent. A scheduler in the worker process claims due
// pending workflows under a lease, dispatches them to executors registered
// per workflow type, and retries transient failures with exponential backoff
// until the attempt budget is exhausted. Expired leases are reaped back to
// pending so a crashed worker never strands a workflow.
package workflowservice
