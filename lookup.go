package fatimg

import (
	"fmt"
	"path"
	"strings"

	"github.com/aligator/fatimg/checkpoint"
)

// splitPath cleans p and returns its components.
// Only '/' separates components, a backslash is part of the name.
// The root ("", ".", "/") has no components.
func splitPath(p string) []string {
	p = path.Clean("/" + p)
	if p == "/" {
		return nil
	}
	return strings.Split(p[1:], "/")
}

// Lookup resolves a slash separated path starting at the root directory.
// The root itself has no directory entry, so nil, nil is returned for it.
func (v *Volume) Lookup(p string) (*ResolvedFile, error) {
	parts := splitPath(p)
	if len(parts) == 0 {
		return nil, nil
	}

	dir := v.RootCluster()
	var file *ResolvedFile
	for i, part := range parts {
		var err error
		file, err = v.FindByName(dir, part)
		if err != nil {
			return nil, checkpoint.Wrap(err, fmt.Errorf("could not resolve %s", p))
		}

		if i == len(parts)-1 {
			break
		}

		next, err := v.ChangeDirectory(file)
		if err != nil {
			return nil, checkpoint.Wrap(err, fmt.Errorf("could not resolve %s", p))
		}
		dir = v.DirectoryCluster(next)
	}

	return file, nil
}

// LookupDir resolves p to the start cluster of a directory.
func (v *Volume) LookupDir(p string) (ClusterAddress, error) {
	file, err := v.Lookup(p)
	if err != nil {
		return 0, err
	}

	if file == nil {
		return v.RootCluster(), nil
	}

	c, err := v.ChangeDirectory(file)
	if err != nil {
		return 0, checkpoint.Wrap(err, fmt.Errorf("could not resolve %s", p))
	}

	return v.DirectoryCluster(c), nil
}
