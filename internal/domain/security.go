package domain

import "fmt"

// SecurityLevel controls how permissive the policy engine is.
// It is set once at startup and never changes for the process lifetime.
type SecurityLevel string

const (
	SecurityLow    SecurityLevel = "low"
	SecurityMedium SecurityLevel = "medium"
	SecurityHigh   SecurityLevel = "high"
)

// ParseSecurityLevel validates a configured level string. An empty
// string maps to the medium default.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	switch SecurityLevel(s) {
	case SecurityLow, SecurityMedium, SecurityHigh:
		return SecurityLevel(s), nil
	case "":
		return SecurityMedium, nil
	default:
		return "", fmt.Errorf("invalid security level %q (want low, medium, or high)", s)
	}
}

// Decision is the result of a single policy check. It is produced per
// request and never persisted.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// AuditEntry records a gated operation for the audit log.
type AuditEntry struct {
	Action    string // command_exec | command_blocked | path_blocked | file_read | file_write
	Operation string // cli | read_file | write_file
	Target    string // the command string or file path
	Result    string // allowed | blocked | error
	Details   string
}
