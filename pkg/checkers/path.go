package checkers

import (
	"os"
	"path/filepath"
	"strings"
)

// tempDirName is the directory an empty, undefaulted directory item resolves to.
const tempDirName = "temp"

// pathCaster resolves relative paths against the configuration's directory.
// User supplied paths must exist; declared defaults need not.
type pathCaster struct {
	root      string
	directory bool
	critical  bool
}

func newPathCaster(root string, directory, critical bool) pathCaster {
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		}
	}
	return pathCaster{root: root, directory: directory, critical: critical}
}

func (p pathCaster) kind() string {
	if p.directory {
		return "directory"
	}
	return "file"
}

func (p pathCaster) resolve(raw any) (string, *Issue) {
	s, ok := raw.(string)
	if !ok {
		return "", issuef(KindParse, "%v is not a valid path", raw)
	}
	s = strings.TrimSpace(s)
	if strings.ContainsFunc(s, illegalPathRune) {
		return "", issuef(KindParse, "%s contains characters not allowed in a path", show(s))
	}
	if !filepath.IsAbs(s) {
		s = filepath.Join(p.root, s)
	}
	return filepath.Clean(s), nil
}

func (p pathCaster) cast(raw any) (any, *Issue) {
	path, iss := p.resolve(raw)
	if iss != nil {
		return nil, iss
	}

	info, err := os.Stat(path)
	switch {
	case err != nil:
		return nil, issuef(KindParse, "%s %s does not exist", p.kind(), show(path))
	case p.directory && !info.IsDir():
		return nil, issuef(KindParse, "%s is not a directory", show(path))
	case !p.directory && info.IsDir():
		return nil, issuef(KindParse, "%s is a directory, expected a file", show(path))
	}
	return path, nil
}

func (p pathCaster) castDefault(def any) (any, *Issue) {
	path, iss := p.resolve(def)
	if iss != nil {
		return nil, iss
	}
	return path, nil
}

func (p pathCaster) empty() (any, *Issue) {
	switch {
	case p.critical:
		return nil, issuef(KindMissing, "a %s path is required", p.kind())
	case p.directory:
		return filepath.Join(p.root, tempDirName), nil
	}
	return nil, nil
}

func illegalPathRune(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return true
	}
	return strings.ContainsRune(`<>"|?*`, r)
}
