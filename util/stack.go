package util

import (
	"fmt"
	"runtime"
	"strings"
)

type Stack *[]uintptr

// CurrentStack creates a new stack without the last three frames, because they are from the internal calls (e.g. to
// this function and the error constructor) and therefore irrelevant to the function creating the error.
func CurrentStack() Stack {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	var st = pcs[0:n]
	return &st
}

func PrintableStackTrace(stack Stack) string {
	if stack == nil {
		return ""
	}

	var sb strings.Builder

	for _, pc := range *stack {
		f := runtime.FuncForPC(pc)
		file, line := f.FileLine(pc)
		sb.WriteString(fmt.Sprintf("%s\n\t%s:%d\n", f.Name(), file, line))
	}

	return sb.String()
}

// FormatError implements the fmt.Formatter behavior of all error types: "%v" prints the message and the stack trace,
// "%s" only the message.
func FormatError(s fmt.State, verb rune, err error, stack Stack) {
	switch verb {
	case 'v':
		fmt.Fprintf(s, "%s\n%s", err.Error(), PrintableStackTrace(stack))
	case 's':
		fmt.Fprintf(s, "%s", err.Error())
	case 'q':
		fmt.Fprintf(s, "%q", err.Error())
	}
}
