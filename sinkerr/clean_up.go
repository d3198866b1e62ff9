package sinkerr

import (
	"fmt"
)

// CleanUp is defer-able syntactic sugar that calls f and reports an
// error, if any, to *err. Pass the caller's named return error.
// Example usage:
//
//	func closeRun(r *diskrun.Reader) (err error) {
//	  defer sinkerr.CleanUp(r.Close, &err)
//	  ...
//	}
//
// If the caller returns with its own error, any error from f is
// chained onto it rather than replacing it.
func CleanUp(f func() error, dst *error) {
	addErr(f(), dst)
}

func addErr(err2 error, dst *error) {
	if err2 == nil {
		return
	}
	if *dst == nil {
		*dst = err2
		return
	}
	*dst = E(*dst, fmt.Sprintf("second error on cleanup: %v", err2))
}
