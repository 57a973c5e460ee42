// Package progress streams run progress to external listeners. The socket.io
// publisher emits an "mc_step" event after every Monte Carlo step and a
// "run_finished" event when a run completes.
package progress
