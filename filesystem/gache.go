package filesystem

import (
	"io"
	"os"
)

// GacheFs lets gache caches read and write through API, so a cache follows
// the backend in use when it is accessed, not when it was created.
type GacheFs struct{}

func (GacheFs) OpenFile(name string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	return API().OpenFile(name, flag, perm)
}

func (GacheFs) MkdirAll(path string, perm os.FileMode) error {
	return API().MkdirAll(path, perm)
}
