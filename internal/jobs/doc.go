// Package jobs runs fire-and-forget background work, such as account
// notification emails, outside the HTTP request path. Jobs are held in a
// bounded in-memory queue and executed by a fixed pool of workers; on
// shutdown the runner drains whatever is already queued.
package jobs
