// Package sweep loads batch run definitions from HCL files. A file may hold a
// single defaults block plus any number of run and sweep blocks:
//
//	defaults {
//	  iterations = 200
//	  size       = 30
//	}
//
//	run "cold" {
//	  temperature = 0.2
//	  seed        = 42
//	}
//
//	sweep "scan" {
//	  temperatures = [0.5, 1.0, 1.5]
//	  plot         = 1
//	}
//
// A sweep expands into one run per temperature named "<sweep>-<index>".
// Expressions may read environment variables through env.NAME.
package sweep
