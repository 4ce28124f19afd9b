// Package generation builds and installs cosmetic item packages.
//
// A Job names selections (downloadable asset sets whose manifest blocks
// replace entries in items_game.txt) and auxiliary options (loose files
// installed under a category). The Pipeline runs a job through fixed stages:
//
//	Preparing → Processing → Patching → FetchingAuxiliary → Building → Installing → Done
//
// with Failed and Cancelled reachable from any stage before Installing.
//
// # Partial Success
//
// A selection that cannot be downloaded, extracted or patched is reported in
// Result.FailedItems and the run continues. The job fails only when no
// selection succeeds.
//
// # Components
//
//   - Pipeline: the stage machine and its collaborators (Extractor, Rebuilder, Installer, Publisher).
//   - ExtractionLog: what the previous run installed, used to remove stale files.
//   - Service: background job runner with cancellation and optional history recording.
//   - Handler: HTTP endpoints under /jobs and /flags.
//
// # HTTP Endpoints
//
//   - POST /jobs : submit a job
//   - GET /jobs : list jobs
//   - GET /jobs/:id : job status and result
//   - DELETE /jobs/:id : cancel a job
//   - POST /jobs/validate : dry-run a manifest against a target text
package generation
