// Package pipeline provides a framework for executing crawl job steps in
// sequence.
//
// A crawl job moves through multiple stages: crawling the site, persisting
// the result to the database, exporting a per-job markdown file, and handing
// the collected pages to an analyzer. Each stage is implemented as a Step
// that receives the current job and can modify it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running crawls
//
// The pipeline supports both individual jobs and batch processing with
// concurrency control using errgroup.
package pipeline
