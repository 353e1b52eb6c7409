package chat

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// clipboardTools are the commands used to read and write the system
// clipboard, per GOOS.
var clipboardTools = map[string]struct {
	read  []string
	write []string
}{
	"darwin":  {read: []string{"pbpaste"}, write: []string{"pbcopy"}},
	"linux":   {read: []string{"xclip", "-selection", "clipboard", "-o"}, write: []string{"xclip", "-selection", "clipboard"}},
	"windows": {read: []string{"powershell", "-NoProfile", "-Command", "Get-Clipboard"}, write: []string{"clip"}},
}

func readClipboard() (string, error) {
	tool, ok := clipboardTools[runtime.GOOS]
	if !ok {
		return "", errors.Errorf("read clipboard: unsupported platform: %s", runtime.GOOS)
	}

	out, err := exec.Command(tool.read[0], tool.read[1:]...).Output()
	if err != nil {
		return "", errors.Wrap(err, "read clipboard")
	}
	return string(out), nil
}

func writeClipboard(s string) error {
	tool, ok := clipboardTools[runtime.GOOS]
	if !ok {
		return errors.Errorf("write clipboard: unsupported platform: %s", runtime.GOOS)
	}

	cmd := exec.Command(tool.write[0], tool.write[1:]...)
	cmd.Stdin = strings.NewReader(s)
	return errors.Wrap(cmd.Run(), "write clipboard")
}
