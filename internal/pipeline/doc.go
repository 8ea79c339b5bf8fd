// Package pipeline runs accessibility audits as a sequence of steps.
//
// One audit moves through five steps: the browser precondition check, URL
// validation, page scanning, aggregation and formatting, optionally
// followed by saving to the audit history. Each step is implemented as a
// Step that receives the audit state and adds to it.
//
// Design decision: We use a pipeline pattern instead of direct function calls
// because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context between steps
//
// Auditor wires the steps together and produces the caller-facing Output.
package pipeline
