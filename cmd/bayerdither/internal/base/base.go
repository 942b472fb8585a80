// Package base holds the process exit status and the functions to run at
// exit.
package base

import (
	"fmt"
	"os"
	"sync"
)

// Status is the process exit status.
type Status uint8

const (
	SNoError Status = iota
	SGenericError
	SInvalidParameters
	SHelpRequested
	SDecodeError
	SShapeError
	SSizeError
	SEncodeError
	SCancelled
)

var statusNames = [...]string{
	SNoError:           "NoError",
	SGenericError:      "GenericError",
	SInvalidParameters: "InvalidParameters",
	SHelpRequested:     "HelpRequested",
	SDecodeError:       "DecodeError",
	SShapeError:        "ShapeError",
	SSizeError:         "SizeError",
	SEncodeError:       "EncodeError",
	SCancelled:         "Cancelled",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

var (
	mu          sync.Mutex
	exitStatus  = SNoError
	atExitFuncs []func()
)

// SetExitStatus sets the exit status.  A status can only be raised, so that
// the first failure is not masked by a later, less severe one.
func SetExitStatus(s Status) {
	mu.Lock()
	defer mu.Unlock()
	if exitStatus < s {
		exitStatus = s
	}
}

// ExitStatus returns the current exit status.
func ExitStatus() Status {
	mu.Lock()
	defer mu.Unlock()
	return exitStatus
}

// AtExit registers fn to be called by Exit.  Functions are called in the
// reverse order of registration.
func AtExit(fn func()) {
	mu.Lock()
	defer mu.Unlock()
	atExitFuncs = append(atExitFuncs, fn)
}

// Exit runs the registered functions and exits with the current status.
func Exit() {
	runAtExit()
	os.Exit(int(ExitStatus()))
}

func runAtExit() {
	mu.Lock()
	fns := atExitFuncs
	atExitFuncs = nil
	mu.Unlock()
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
