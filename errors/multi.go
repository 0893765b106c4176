package errors

import (
	"fmt"
	"strings"
)

// Append clubs together all provided errors. Nil values are ignored.
//
// The returned error reports the code of the first error it contains, and
// any root error Is matches if at least one of the collected errors does.
// Append returns nil if no non-nil error was given.
func Append(errs ...error) error {
	var res multiErr
	for _, e := range errs {
		if errIsNil(e) {
			continue
		}
		if m, ok := e.(multiErr); ok {
			res = append(res, m...)
		} else {
			res = append(res, e)
		}
	}
	if len(res) == 0 {
		return nil
	}
	return res
}

type multiErr []error

func (m multiErr) Error() string {
	if len(m) == 1 {
		return m[0].Error()
	}
	points := make([]string, len(m))
	for i, err := range m {
		points[i] = fmt.Sprintf("* %s", err)
	}
	return fmt.Sprintf("%d errors occurred:\n\t%s", len(m), strings.Join(points, "\n\t"))
}

// Code returns the code of the first error.
func (m multiErr) Code() uint32 {
	return Code(m[0])
}

// Unpack returns all collected errors.
func (m multiErr) Unpack() []error {
	return m
}

var (
	_ coder    = multiErr(nil)
	_ unpacker = multiErr(nil)
)
