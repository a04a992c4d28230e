// Package app contains the main Bubble Tea application model for azb.
//
// It owns the session state machine: the branch snapshot and its visible
// subsequence, the selection, the detail scroll offset, the pending delete
// confirmation, and the wiring between navigation and work item fetches.
// The main type is Model, which implements the Bubble Tea interface
// (Init, Update, View).
package app
