package errors

import (
	"fmt"
	"io"
	"testing"
)

func TestInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"nil error": {
			err:      nil,
			wantCode: SuccessCode,
			wantLog:  "",
		},
		"registered error": {
			err:      ErrNotFound,
			wantCode: ErrNotFound.code,
			wantLog:  "not found",
		},
		"wrapped registered error": {
			err:      Wrap(ErrState, "released"),
			wantCode: ErrState.code,
			wantLog:  "released: invalid state",
		},
		"stdlib is generic message": {
			err:      io.EOF,
			wantCode: internalCode,
			wantLog:  internalLog,
		},
		"wrapped stdlib is only a generic message": {
			err:      Wrap(io.EOF, "cannot read file"),
			wantCode: internalCode,
			wantLog:  internalLog,
		},
		"stdlib in debug mode is exposed": {
			err:      io.EOF,
			debug:    true,
			wantCode: internalCode,
			wantLog:  "EOF",
		},
		"multi error reports the first code": {
			err:      Append(nil, ErrAmount, ErrInput),
			wantCode: ErrAmount.code,
			wantLog:  "2 errors occurred:\n\t* invalid amount\n\t* invalid input",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := Info(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestRedact(t *testing.T) {
	if err := Redact(ErrPanic, false); ErrPanic.Is(err) {
		t.Error("reduct must not pass through panic error")
	}
	if err := Redact(ErrPanic, true); !ErrPanic.Is(err) {
		t.Error("reduct should pass through panic error in debug mode")
	}
	if err := Redact(ErrUnauthorized, false); !ErrUnauthorized.Is(err) {
		t.Error("reduct should pass through registered error")
	}
	serr := fmt.Errorf("stdlib error")
	if err := Redact(serr, false); err == serr {
		t.Error("reduct must not pass through a stdlib error")
	}
}

func TestAppend(t *testing.T) {
	if err := Append(nil, nil); err != nil {
		t.Fatalf("want nil, got %v", err)
	}
	err := Append(ErrEmpty, nil)
	if err.Error() != "value is empty" {
		t.Fatalf("single error message expected, got %q", err)
	}
	nested := Append(Append(ErrEmpty, ErrInput), ErrState)
	if n := len(nested.(multiErr)); n != 3 {
		t.Fatalf("want flattened 3 errors, got %d", n)
	}
}
