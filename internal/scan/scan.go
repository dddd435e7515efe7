// Package scan lists the candidate image files under a scan root.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	errs "pixdedup/pkg/errors"
)

// imageExtensions are matched case-insensitively against the end of the name.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".gif", ".svg"}

// Entry is one listed file
type Entry struct {
	Path string
	Size int64
}

// Options controls a listing
type Options struct {
	// Recursive descends into subdirectories. The default lists the top
	// level of the root only.
	Recursive bool

	// StrictExtensions accepts names by suffix only. When false, any name
	// containing ".jpg" is also accepted, wherever it occurs.
	StrictExtensions bool
}

// IsImage reports whether name looks like an image file
func IsImage(name string, strict bool) bool {
	lower := strings.ToLower(name)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return !strict && strings.Contains(lower, ".jpg")
}

// List returns the image files under root in lexicographic path order
func List(fsys afero.Fs, root string, opts Options) ([]Entry, error) {
	var entries []Entry
	var err error
	if opts.Recursive {
		entries, err = walk(fsys, root, opts.StrictExtensions)
	} else {
		entries, err = readDir(fsys, root, opts.StrictExtensions)
	}
	if err != nil {
		return nil, errs.New(errs.ErrorTypeScan, root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries, nil
}

func readDir(fsys afero.Fs, root string, strict bool) ([]Entry, error) {
	infos, err := afero.ReadDir(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	var entries []Entry
	for _, info := range infos {
		if !IsImage(info.Name(), strict) {
			continue
		}
		path := filepath.Join(root, info.Name())
		file, ok := regular(fsys, path, info)
		if !ok {
			continue
		}
		entries = append(entries, Entry{Path: path, Size: file.Size()})
	}
	return entries, nil
}

func walk(fsys afero.Fs, root string, strict bool) ([]Entry, error) {
	var entries []Entry
	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walking `%s`: %w", path, err)
		}
		if !IsImage(info.Name(), strict) {
			return nil
		}
		file, ok := regular(fsys, path, info)
		if !ok {
			return nil
		}
		entries = append(entries, Entry{Path: path, Size: file.Size()})
		return nil
	})
	return entries, err
}

// regular resolves a symlink to its target and reports whether the result is
// a regular file. Broken links and links to directories are not listed, and
// a walk never descends through a link.
func regular(fsys afero.Fs, path string, info fs.FileInfo) (fs.FileInfo, bool) {
	if info.Mode()&fs.ModeSymlink != 0 {
		target, err := fsys.Stat(path)
		if err != nil {
			return nil, false
		}
		info = target
	}
	return info, info.Mode().IsRegular()
}
