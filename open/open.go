// Package open hands URLs to the desktop's default handler.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/jellytok/jellytok/constant"
)

// Start opens url with the default handler and returns without waiting.
func Start(url string) error {
	cmd, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return cmd.Start()
}

// Run is Start followed by a wait for the handler to exit.
func Run(url string) error {
	cmd, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return cmd.Run()
}

func command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case constant.Windows:
		rundll := filepath.Join(os.Getenv("SYSTEMROOT"), "System32", "rundll32.exe")
		return exec.Command(rundll, "url.dll,FileProtocolHandler", url), nil
	case constant.Darwin:
		return exec.Command("open", url), nil
	case constant.Linux:
		return exec.Command("xdg-open", url), nil
	case constant.Android:
		return exec.Command("termux-open", url), nil
	default:
		return nil, fmt.Errorf("opening links is not supported on %s", goos)
	}
}
