//go:build windows

package checks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sys/windows/registry"
)

// system32Path resolves an executable under %WINDIR%\System32 by absolute
// path to reduce binary-hijack risk; PATH resolution is the fallback.
func system32Path(parts ...string) string {
	windir := os.Getenv("WINDIR")
	if windir == "" {
		windir = `C:\Windows`
	}
	candidate := filepath.Join(append([]string{windir, "System32"}, parts...)...)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return parts[len(parts)-1]
}

// runCommand executes an external utility without a console window and
// with no stdin, bounded by the context deadline.
func runCommand(ctx context.Context, exe string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, exe, args...)
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", filepath.Base(exe), err)
	}
	return out, nil
}

// runPowerShellJSON runs a PowerShell snippet expected to print JSON and
// returns its trimmed stdout, or an error when nothing usable came back.
func runPowerShellJSON(ctx context.Context, script string) ([]byte, error) {
	wrapped := "$ErrorActionPreference = 'Stop'; " +
		"[Console]::OutputEncoding = [System.Text.Encoding]::UTF8; " +
		script

	exe := system32Path("WindowsPowerShell", "v1.0", "powershell.exe")
	out, err := runCommand(ctx, exe, "-NoLogo", "-NoProfile", "-NonInteractive", "-Command", wrapped)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, fmt.Errorf("powershell returned no output: %w", ErrProbeAmbiguous)
	}
	return []byte(trimmed), nil
}

// readRegistryDword reads a REG_DWORD value, returning nil when the key or
// value is missing, unreadable, or not a DWORD.
func readRegistryDword(root registry.Key, path, name string) *uint64 {
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return nil
	}
	defer key.Close()

	value, valType, err := key.GetIntegerValue(name)
	if err != nil || valType != registry.DWORD {
		return nil
	}
	return &value
}

// readRegistryString reads a REG_SZ or REG_EXPAND_SZ value, returning nil
// when missing or unreadable.
func readRegistryString(root registry.Key, path, name string) *string {
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return nil
	}
	defer key.Close()

	value, valType, err := key.GetStringValue(name)
	if err != nil || (valType != registry.SZ && valType != registry.EXPAND_SZ) {
		return nil
	}
	trimmed := strings.TrimSpace(value)
	return &trimmed
}
