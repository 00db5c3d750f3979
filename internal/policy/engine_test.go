package policy

import (
	"log/slog"
	"os"
	"testing"

	"llmgate/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func mustEngine(t *testing.T, level string, paths ...string) *Engine {
	t.Helper()
	if len(paths) == 0 {
		paths = []string{"/home/user/project"}
	}
	e, err := NewEngine(config.SecurityConfig{Level: level, AllowedPaths: paths}, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestNewEngine_InvalidLevel(t *testing.T) {
	_, err := NewEngine(config.SecurityConfig{Level: "paranoid"}, testLogger())
	if err == nil {
		t.Fatal("expected error for invalid level")
	}
}

// --- CheckCommand: low ---

func TestCheckCommand_LowAllowsEverything(t *testing.T) {
	e := mustEngine(t, "low")
	for _, cmd := range []string{"rm -rf /", "sudo reboot", "", "mkfs /dev/sda"} {
		if d := e.CheckCommand(cmd); !d.Allowed {
			t.Errorf("low should allow %q, denied: %s", cmd, d.Reason)
		}
	}
}

// --- CheckCommand: medium ---

func TestCheckCommand_MediumBlocklist(t *testing.T) {
	e := mustEngine(t, "medium")
	for _, cmd := range []string{
		"rm file.txt", "rmdir empty", "mv a b", "dd if=/dev/zero",
		"mkfs /dev/sda1", "sudo apt update", "su root", "> out.txt",
	} {
		if d := e.CheckCommand(cmd); d.Allowed {
			t.Errorf("medium should block %q", cmd)
		}
	}
}

func TestCheckCommand_MediumAllowsUnknownCommands(t *testing.T) {
	// The medium check is a blocklist: anything not named is permitted,
	// including commands never seen before. This is intentional and
	// pinned here rather than assumed safe.
	e := mustEngine(t, "medium")
	for _, cmd := range []string{"ls -la", "curl https://example.com", "frobnicate --all", "python3 x.py"} {
		if d := e.CheckCommand(cmd); !d.Allowed {
			t.Errorf("medium should allow %q, denied: %s", cmd, d.Reason)
		}
	}
}

func TestCheckCommand_CompoundPassesMedium(t *testing.T) {
	// Only the first token is classified; shell constructs after it are
	// never inspected. "ls; rm -rf /" therefore passes medium.
	e := mustEngine(t, "medium")
	for _, cmd := range []string{
		"ls; rm -rf /",
		"echo hi && sudo reboot",
		"cat /etc/passwd | grep root",
		"echo `rm -rf /tmp/x`",
	} {
		if d := e.CheckCommand(cmd); !d.Allowed {
			t.Errorf("compound %q should pass the first-token check, denied: %s", cmd, d.Reason)
		}
	}
}

func TestCheckCommand_MediumEmptyDenied(t *testing.T) {
	e := mustEngine(t, "medium")
	if d := e.CheckCommand(""); d.Allowed {
		t.Error("empty command should be denied at medium")
	}
	if d := e.CheckCommand("   "); d.Allowed {
		t.Error("whitespace-only command should be denied at medium")
	}
}

// --- CheckCommand: high ---

func TestCheckCommand_HighAllowlist(t *testing.T) {
	e := mustEngine(t, "high")
	allowed := []string{"ls", "dir", "pwd", "echo", "cat", "head", "tail", "grep", "find", "wc", "date", "ps", "df"}
	for _, base := range allowed {
		if d := e.CheckCommand(base + " some args"); !d.Allowed {
			t.Errorf("high should allow %q, denied: %s", base, d.Reason)
		}
	}
}

func TestCheckCommand_HighDeniesEverythingElse(t *testing.T) {
	e := mustEngine(t, "high")
	for _, cmd := range []string{"rm -rf /", "curl example.com", "git status", "python3", ""} {
		if d := e.CheckCommand(cmd); d.Allowed {
			t.Errorf("high should deny %q", cmd)
		}
	}
}

func TestCheckCommand_HighBlocksRmRf(t *testing.T) {
	e := mustEngine(t, "high")
	d := e.CheckCommand("rm -rf /")
	if d.Allowed {
		t.Fatal("rm -rf / must be denied at high")
	}
	if d.Reason == "" {
		t.Error("denial should carry a reason")
	}
}

// --- CheckPath ---

func TestCheckPath_LowAllowsAnything(t *testing.T) {
	e := mustEngine(t, "low")
	if d := e.CheckPath("/etc/shadow"); !d.Allowed {
		t.Errorf("low should allow any path, denied: %s", d.Reason)
	}
}

func TestCheckPath_PrefixMatch(t *testing.T) {
	for _, level := range []string{"medium", "high"} {
		e := mustEngine(t, level, "/home/user/project")

		if d := e.CheckPath("/home/user/project/notes.txt"); !d.Allowed {
			t.Errorf("%s: path inside prefix denied: %s", level, d.Reason)
		}
		if d := e.CheckPath("/etc/shadow"); d.Allowed {
			t.Errorf("%s: /etc/shadow should be denied", level)
		}
	}
}

func TestCheckPath_MultiplePrefixes(t *testing.T) {
	e := mustEngine(t, "medium", "/srv/data", "/var/app")
	if d := e.CheckPath("/var/app/log.txt"); !d.Allowed {
		t.Errorf("second prefix should match, denied: %s", d.Reason)
	}
	if d := e.CheckPath("/var/other"); d.Allowed {
		t.Error("/var/other should be denied")
	}
}

func TestCheckPath_PrefixNotCanonical(t *testing.T) {
	// The containment check is a raw string prefix, not a
	// path-component match: /home/user2 starts with /home/user and is
	// therefore allowed. Known weakness of the contract, pinned here.
	e := mustEngine(t, "medium", "/home/user")
	if d := e.CheckPath("/home/user2/secret.txt"); !d.Allowed {
		t.Errorf("string-prefix semantics should allow /home/user2, denied: %s", d.Reason)
	}
}

func TestCheckPath_RelativeTraversalNotResolved(t *testing.T) {
	// No canonicalization happens, so a literal ".." simply fails the
	// prefix test instead of being resolved.
	e := mustEngine(t, "medium", "/home/user/project")
	// The raw string does start with the prefix, so it is allowed.
	d := e.CheckPath("/home/user/project/../../etc/shadow")
	if !d.Allowed {
		t.Errorf("raw prefix match should allow the un-resolved string, denied: %s", d.Reason)
	}
}
