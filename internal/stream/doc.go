// Package stream models the streams a run processes.
//
// A Request is what the user asked for: a window length, an input
// identifier and an output identifier. A Descriptor is a Request whose
// input has been confirmed available and whose handles are open.
//
// Identifiers:
//   - "-" maps to standard input (as an input) or standard output (as an output)
//   - anything else is a filesystem path (regular file or named pipe)
//
// Example Usage:
//
//	req, err := stream.ParseRequest("3,data/in,data/out")
//	desc, err := stream.NewFileOpener(stream.OSStdio()).Open(req)
//	defer desc.Close()
package stream
