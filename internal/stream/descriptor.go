package stream

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
)

// Stdio supplies the handles the sentinel identifier maps to.
type Stdio struct {
	In  io.Reader
	Out io.Writer
}

// OSStdio returns the process's standard input and output.
func OSStdio() Stdio {
	return Stdio{In: os.Stdin, Out: os.Stdout}
}

// Descriptor is an activated Request: its input is open for reading and
// its output open for writing. Both handles are owned by the descriptor
// until Close.
type Descriptor struct {
	Request

	in  io.ReadCloser
	out io.WriteCloser
}

// NewDescriptor binds already-open handles to req.
func NewDescriptor(req Request, in io.ReadCloser, out io.WriteCloser) *Descriptor {
	return &Descriptor{Request: req, in: in, out: out}
}

// Reader returns the input handle.
func (d *Descriptor) Reader() io.Reader { return d.in }

// Writer returns the output handle.
func (d *Descriptor) Writer() io.Writer { return d.out }

// Close releases both handles. Standard input and output are left open.
func (d *Descriptor) Close() error {
	return multierr.Append(d.in.Close(), d.out.Close())
}

// Opener turns Requests into Descriptors.
type Opener interface {
	Open(req Request) (*Descriptor, error)
}

// FileOpener opens filesystem paths and maps the sentinel to Stdio.
//
// Streams that name the same output path share one handle. Each path is
// cleared once, on its first open, and every write appends.
type FileOpener struct {
	Stdio Stdio

	outputs map[string]*sharedOutput
	cleared map[string]bool
}

// NewFileOpener creates a FileOpener bound to stdio.
func NewFileOpener(stdio Stdio) *FileOpener {
	return &FileOpener{Stdio: stdio}
}

// Open opens the input for reading and the output for writing.
func (o *FileOpener) Open(req Request) (*Descriptor, error) {
	in, err := o.openInput(req.Input)
	if err != nil {
		return nil, err
	}

	out, err := o.openOutput(req.Output)
	if err != nil {
		in.Close()
		return nil, err
	}

	return NewDescriptor(req, in, out), nil
}

func (o *FileOpener) openInput(id string) (io.ReadCloser, error) {
	if id == Sentinel {
		return io.NopCloser(o.Stdio.In), nil
	}
	f, err := os.Open(id)
	if err != nil {
		return nil, fmt.Errorf("open input %q: %w", id, err)
	}
	return f, nil
}

func (o *FileOpener) openOutput(id string) (io.WriteCloser, error) {
	if id == Sentinel {
		return nopWriteCloser{o.Stdio.Out}, nil
	}
	if o.outputs == nil {
		o.outputs = make(map[string]*sharedOutput)
		o.cleared = make(map[string]bool)
	}

	key := filepath.Clean(id)
	if shared, ok := o.outputs[key]; ok {
		shared.refs++
		return outputRef{shared: shared}, nil
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if !o.cleared[key] {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(id, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", id, err)
	}
	o.cleared[key] = true

	shared := &sharedOutput{file: f, refs: 1, release: func() { delete(o.outputs, key) }}
	o.outputs[key] = shared
	return outputRef{shared: shared}, nil
}

// sharedOutput is one output file referenced by every stream writing to it.
type sharedOutput struct {
	file    *os.File
	refs    int
	release func()
}

// outputRef is one stream's reference to a sharedOutput. The file closes
// when the last reference does.
type outputRef struct {
	shared *sharedOutput
}

func (r outputRef) Write(p []byte) (int, error) {
	return r.shared.file.Write(p)
}

func (r outputRef) Close() error {
	r.shared.refs--
	if r.shared.refs > 0 {
		return nil
	}
	r.shared.release()
	return r.shared.file.Close()
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
