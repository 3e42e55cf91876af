// Package command exposes go-command compatible handlers for the activity
// feed (refresh, live append, marker acknowledgement). Commands are wired by
// the service layer and can be invoked by any transport.
package command
