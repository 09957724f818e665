// Package validate holds the pure form validators used by the signup and
// upload flows. Validators never panic and never return Go errors; they
// return a Result carrying a failure code and a human-readable message.
package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// AllowedEmailDomain is the institutional suffix required for accounts.
const AllowedEmailDomain = "eastdelta.edu.bd"

// Code classifies a validation failure.
type Code string

const (
	CodeOK               Code = ""
	CodeRequired         Code = "required"
	CodeInvalidFormat    Code = "invalid_format"
	CodeDomainNotAllowed Code = "domain_not_allowed"
	CodeTooShort         Code = "too_short"
	CodeMismatch         Code = "mismatch"
	CodeOutOfRange       Code = "out_of_range"
)

// Result is the outcome of a validation check.
type Result struct {
	OK      bool
	Code    Code
	Message string
}

func valid() Result {
	return Result{OK: true}
}

func invalid(code Code, message string) Result {
	return Result{Code: code, Message: message}
}

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	studentIDPattern = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{4,8}$`)
	whitespace       = regexp.MustCompile(`\s`)
)

// Email checks shape and the institutional domain, case-insensitively.
func Email(email string) Result {
	if email == "" {
		return invalid(CodeRequired, "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return invalid(CodeInvalidFormat, "Please enter a valid email address")
	}
	if !strings.HasSuffix(strings.ToLower(email), "@"+AllowedEmailDomain) {
		return invalid(CodeDomainNotAllowed,
			fmt.Sprintf("Please use your East Delta University email (@%s)", AllowedEmailDomain))
	}
	return valid()
}

// Password requires at least 6 characters.
func Password(password string) Result {
	if password == "" {
		return invalid(CodeRequired, "Password is required")
	}
	if len(password) < 6 {
		return invalid(CodeTooShort, "Password must be at least 6 characters long")
	}
	return valid()
}

// PasswordConfirmation requires confirm to equal password.
func PasswordConfirmation(password, confirm string) Result {
	if confirm == "" {
		return invalid(CodeRequired, "Password confirmation is required")
	}
	if password != confirm {
		return invalid(CodeMismatch, "Passwords do not match")
	}
	return valid()
}

// NormalizeStudentID strips whitespace and upper-cases the id.
func NormalizeStudentID(id string) string {
	return strings.ToUpper(whitespace.ReplaceAllString(id, ""))
}

// StudentID normalizes and then checks the {2-4 letters}{4-8 digits} form.
func StudentID(id string) Result {
	if id == "" {
		return invalid(CodeRequired, "Student ID is required")
	}
	if !studentIDPattern.MatchString(NormalizeStudentID(id)) {
		return invalid(CodeInvalidFormat, "Please enter a valid Student ID (e.g., EDU123456)")
	}
	return valid()
}

// Semester accepts an integer string in [1,12].
func Semester(semester string) Result {
	if semester == "" {
		return invalid(CodeRequired, "Semester is required")
	}
	n, err := strconv.Atoi(strings.TrimSpace(semester))
	if err != nil || n < 1 || n > 12 {
		return invalid(CodeOutOfRange, "Please select a semester between 1 and 12")
	}
	return valid()
}
