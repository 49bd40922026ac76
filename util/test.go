package util

import (
	"fmt"
	"github.com/hauke96/sigolo/v2"
	"reflect"
	"strings"
	"testing"
)

func AssertEqual(t *testing.T, expected any, actual any) {
	if reflect.DeepEqual(expected, actual) {
		return
	}

	expectedString, expectedIsString := expected.(string)
	actualString, actualIsString := actual.(string)
	if expectedIsString && actualIsString {
		printStringDiff(expectedString, actualString)
	} else {
		sigolo.Errorb(1, "Expect to be equal.\nExpected: %#v\n----------\nActual  : %#v\n", expected, actual)
	}
	t.Fail()
}

// printStringDiff prints both strings line by line next to each other and marks differing lines.
func printStringDiff(expected string, actual string) {
	expectedLines := strings.Split(strings.ReplaceAll(expected, "\n", "\\n\n"), "\n")
	actualLines := strings.Split(strings.ReplaceAll(actual, "\n", "\\n\n"), "\n")

	sigolo.Errorb(2, "Expect to be equal.\n|   | %-50s | %-50s |", "Expected", "Actual")
	fmt.Printf("|%s|\n", strings.Repeat("-", 109))

	lineCount := max(len(expectedLines), len(actualLines))
	for i := 0; i < lineCount; i++ {
		expectedLine := ""
		if i < len(expectedLines) {
			expectedLine = `"` + expectedLines[i] + `"`
		}
		actualLine := ""
		if i < len(actualLines) {
			actualLine = `"` + actualLines[i] + `"`
		}

		changeMark := " "
		if actualLine != expectedLine {
			changeMark = "*"
		}

		fmt.Printf("| %s | %-50s | %-50s |\n", changeMark, expectedLine, actualLine)
	}
}

// isNil returns true for nil and for typed nil values like (*T)(nil) or []string(nil).
func isNil(value any) bool {
	if value == nil {
		return true
	}

	reflectValue := reflect.ValueOf(value)
	switch reflectValue.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return reflectValue.IsNil()
	}
	return false
}

func AssertNil(t *testing.T, value any) {
	if !isNil(value) {
		sigolo.Errorb(1, "Expect to be 'nil' but was: %#v", value)
		t.Fail()
	}
}

func AssertNotNil(t *testing.T, value any) {
	if isNil(value) {
		sigolo.Errorb(1, "Expect NOT to be 'nil' but was: %#v", value)
		t.Fail()
	}
}

func AssertError(t *testing.T, expectedMessage string, err error) {
	if err == nil {
		sigolo.Errorb(1, "Expected error with message: %s\nActual error: nil", expectedMessage)
		t.Fail()
		return
	}
	if expectedMessage != err.Error() {
		sigolo.Errorb(1, "Expected message: %s\nActual error message: %s", expectedMessage, err.Error())
		t.Fail()
	}
}

func AssertContains(t *testing.T, expectedSubstring string, s string) {
	if !strings.Contains(s, expectedSubstring) {
		sigolo.Errorb(1, "Expected to contain: %s\nActual: %s", expectedSubstring, s)
		t.Fail()
	}
}

func AssertTrue(t *testing.T, b bool) {
	if !b {
		sigolo.Errorb(1, "Expected true but got false")
		t.Fail()
	}
}

func AssertFalse(t *testing.T, b bool) {
	if b {
		sigolo.Errorb(1, "Expected false but got true")
		t.Fail()
	}
}
