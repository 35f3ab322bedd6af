// Package editor implements the lossless segment-removal pipeline: given
// a set of delete ranges it extracts the surviving intervals with an
// ordered list of codec profiles, concatenates them without re-encoding
// the joined stream, and writes the result beside the source file.
//
// Tasks move pending -> processing -> completed|error; terminal states
// absorb no further transitions. Task state lives in an in-memory
// registry queried by id.
package editor
