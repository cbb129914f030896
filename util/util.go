package util

import (
	"os"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// FileMode is the default FileMode used when creating files.
const FileMode = 0664

// DirMode is the default FileMode used when creating directories.
const DirMode = 0775

// FileExists checks whether some file exists.
func FileExists(file string) bool {
	stat, err := os.Stat(file)
	return err == nil && !stat.IsDir()
}

// DirExists checks whether some directory exists.
func DirExists(dir string) bool {
	stat, err := os.Stat(dir)
	return err == nil && stat.IsDir()
}

// Stem returns the base name of a path with the file extension removed.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ReadFile returns the content of a file.
func ReadFile(file string) ([]byte, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file '%s'", file)
	}
	return data, nil
}

// CreateDirectory creates a directory and all missing parents.
// If empty is set, any previous content of the directory is removed.
func CreateDirectory(dir string, empty bool) error {
	if empty {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "failed to empty directory '%s'", dir)
		}
	}
	if err := os.MkdirAll(dir, DirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory '%s'", dir)
	}
	return nil
}

// CreateFile writes content to a file, creating parent directories as needed.
func CreateFile(file string, content []byte) error {
	if err := os.MkdirAll(path.Dir(file), DirMode); err != nil {
		return errors.Wrapf(err, "failed to create directory for file '%s'", file)
	}
	if err := os.WriteFile(file, content, FileMode); err != nil {
		return errors.Wrapf(err, "failed to write file '%s'", file)
	}
	return nil
}

// CreateFileIfChanged writes content to a file only if the file does not
// already hold exactly that content. It reports whether a write happened.
func CreateFileIfChanged(file string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(file); err == nil && string(existing) == string(content) {
		return false, nil
	}
	if err := CreateFile(file, content); err != nil {
		return false, err
	}
	return true, nil
}
