// Package logging provides leveled logging on top of the standard log
// package. The level is read from the LOG_LEVEL environment variable
// (debug, info, warn, error); DEBUG=true forces debug output.
package logging
