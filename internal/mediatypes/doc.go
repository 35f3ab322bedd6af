// Package mediatypes defines the video file extensions the library
// recognizes and their MIME type mapping.
package mediatypes
