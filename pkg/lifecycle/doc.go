// Package lifecycle defines the public engine states of monet.
//
// An engine moves through the states:
//
//	Idle -> Starting -> Running -> Idle
//	                       |
//	                       v
//	                  Cancelling -> Idle
//
// Starting covers request validation and file discovery. A rejected request
// returns the engine from Starting to Idle. Cancelling lasts until the file
// in flight has finished.
package lifecycle
