package cfg

import (
	"io"
	"sync"
)

// InfoReportFunc writes a status line to w.
type InfoReportFunc func(w io.Writer)

var (
	sigMu        sync.Mutex
	sigReporters []InfoReportFunc
)

// RegisterSigInfoReporter adds fn to the reporters called on SIGINFO.
func RegisterSigInfoReporter(fn InfoReportFunc) {
	if fn == nil {
		return
	}
	sigMu.Lock()
	sigReporters = append(sigReporters, fn)
	sigMu.Unlock()
}

// SigInfo calls all registered reporters.
func SigInfo(w io.Writer) {
	if w == nil {
		return
	}
	sigMu.Lock()
	reporters := sigReporters
	sigMu.Unlock()
	for _, fn := range reporters {
		fn(w)
	}
}
