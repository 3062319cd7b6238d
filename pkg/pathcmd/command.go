// Package pathcmd executes the corrective file operations a diff
// produces. Commands are small value objects queued into a Pipeline: an
// unbounded FIFO with any number of producers and exactly one consumer,
// so no two filesystem operations ever run concurrently.
package pathcmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/paulschiretz/pgl-mirror/pkg/fsmodel"
)

// Operation error classes. Per-command failures are recovered at the
// command level: they land in the command's Result and the pipeline
// moves on. Cancellation is the one condition that always propagates.
var (
	// ErrSourceMissing marks a copy whose source file disappeared
	// between scan and execution.
	ErrSourceMissing = errors.New("source file missing")
	// ErrDestinationExists classifies a copy skipped because the
	// destination exists and overwriting is disabled.
	ErrDestinationExists = errors.New("destination exists")
	// ErrOutsideRoot marks a delete whose resolved path escapes the
	// target root. No I/O happens for such a command.
	ErrOutsideRoot = errors.New("path outside target root")
	// ErrPipelineClosed is returned by Enqueue after Close.
	ErrPipelineClosed = errors.New("pipeline closed")
)

// Op selects what a Command does.
type Op int

const (
	// OpCopy writes a source file into the target tree with an atomic
	// temp-file commit.
	OpCopy Op = iota
	// OpDelete removes a target file, optionally pruning ancestor
	// directories the deletion left empty.
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCopy:
		return "copy"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Result is the terminal outcome of one command: a success flag, a
// human-readable message, and the underlying error when one exists. A
// benign skip is a success whose Err still classifies why.
type Result struct {
	OK      bool
	Message string
	Err     error
}

// Command is one unit of work against the target tree. It is created by
// the orchestrator from diff output and consumed exactly once by the
// pipeline, which assigns Result after execution.
type Command struct {
	Op Op

	// File is the subject: a source file for OpCopy, a target file for
	// OpDelete. Its RelPath locates it under TargetRoot.
	File fsmodel.File
	// TargetRoot is the root of the mirrored tree.
	TargetRoot fsmodel.Folder

	// Overwrite permits OpCopy to replace an existing destination.
	Overwrite bool
	// PreserveAttrs makes OpCopy propagate attributes and creation time
	// after a successful commit (best effort).
	PreserveAttrs bool
	// PruneEmptyDirs makes OpDelete remove ancestor directories the
	// deletion left empty, up to but never including TargetRoot.
	PruneEmptyDirs bool

	// Result is set once, by the pipeline consumer, after execution.
	Result *Result
}

// Copy builds a copy command.
func Copy(file fsmodel.File, targetRoot fsmodel.Folder, overwrite, preserveAttrs bool) *Command {
	return &Command{Op: OpCopy, File: file, TargetRoot: targetRoot, Overwrite: overwrite, PreserveAttrs: preserveAttrs}
}

// Delete builds a delete command.
func Delete(file fsmodel.File, targetRoot fsmodel.Folder, pruneEmptyDirs bool) *Command {
	return &Command{Op: OpDelete, File: file, TargetRoot: targetRoot, PruneEmptyDirs: pruneEmptyDirs}
}

// execute dispatches a command to its operation. It is a pure function
// of the command and environment; all state lives in env.
func execute(ctx context.Context, cmd *Command, env *Env) Result {
	switch cmd.Op {
	case OpCopy:
		return executeCopy(ctx, cmd, env)
	case OpDelete:
		return executeDelete(ctx, cmd, env)
	default:
		return Result{OK: false, Message: "unknown operation", Err: fmt.Errorf("unknown op %d", int(cmd.Op))}
	}
}

// failure builds a failed Result wrapping err.
func failure(msg string, err error) Result {
	return Result{OK: false, Message: msg, Err: err}
}

// success builds a successful Result. err may classify a benign skip.
func success(msg string, err error) Result {
	return Result{OK: true, Message: msg, Err: err}
}
