//go:build windows

package ui

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"
)

// OpenTTY returns the console input handle, for when stdin is a pipe.
func OpenTTY() (*os.File, error) {
	handle, err := windows.GetStdHandle(windows.STD_INPUT_HANDLE)
	if err != nil {
		return nil, errors.Wrap(err, "could not get console input handle")
	}

	fd := os.NewFile(uintptr(handle), "conin$")
	if fd == nil {
		return nil, errors.New("failed to create file from console handle")
	}

	return fd, nil
}
