// Package domain contains the core entities and value objects of the MoNet
// batch engine.
//
// This package is the innermost layer. It has no dependencies on
// infrastructure concerns (file system, HTTP, logging) and holds only the data
// model and its invariants.
//
// # Entities
//
//   - [RawFile]: a tabular input file kept as verbatim record bytes
//   - [ColumnMapping]: resolved column indices for the track, frame, x and y roles
//   - [Track]: one particle's ordered points within a file
//   - [Signature]: the fixed-length coordinate sequence fed to the classifier
//   - [MotionType] and [FilterConfig]: the enumerations exposed at the boundary
//   - [BatchRun], [ProgressEvent], [RunSummary]: run bookkeeping
package domain
