// Package output persists simulation results: the step-by-step data file,
// optional lattice snapshots selected by the plot flag, an optional YAML run
// summary, and upload of artifacts to a pre-signed URL.
package output
