// Package schema contains thin wrappers around host operating system
// functions, so that they can be passed as interfaces and replaced in tests.
package schema

import (
	"os"

	"golang.org/x/sys/unix"
)

// OS is an implementation wrapping operating system functions.
type OS struct{}

// Remove wraps around [os.Remove].
func (*OS) Remove(name string) error {
	return os.Remove(name)
}

// ReadDir wraps around [os.ReadDir].
func (*OS) ReadDir(name string) ([]os.DirEntry, error) {
	return os.ReadDir(name)
}

// Open wraps around [os.Open].
func (*OS) Open(name string) (*os.File, error) {
	return os.Open(name)
}

// OpenFile wraps around [os.OpenFile].
func (*OS) OpenFile(name string, flag int, perm os.FileMode) (*os.File, error) {
	return os.OpenFile(name, flag, perm)
}

// Stat wraps around [os.Stat].
func (*OS) Stat(name string) (os.FileInfo, error) {
	return os.Stat(name)
}

// Rename wraps around [os.Rename].
func (*OS) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Unix is an implementation wrapping Unix operating system functions.
type Unix struct{}

// Statfs wraps around [unix.Statfs].
func (*Unix) Statfs(path string, buf *unix.Statfs_t) error {
	return unix.Statfs(path, buf)
}

// Mkdir wraps around [unix.Mkdir].
func (*Unix) Mkdir(path string, mode uint32) error {
	return unix.Mkdir(path, mode)
}
