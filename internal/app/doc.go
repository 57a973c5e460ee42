// Package app contains the core application logic. It defines the App
// struct, its configuration, the simulation entry point the launcher hands
// control to, and the batch lifecycle used by sweeps, decoupled from any
// specific entrypoint like a CLI.
package app
