package vfs

import (
	"os"
	"path"
	"strings"

	"github.com/jingkaihe/savemirror/internal/errx"
)

// SchemeRouter exposes several providers under "scheme:/path" names, the
// way the host addresses its save area ("save:/game01.sav") and the
// external card ("sd:/xc3-saves/game01.sav").
type SchemeRouter struct {
	schemes map[string]Provider
}

func NewSchemeRouter(schemes map[string]Provider) *SchemeRouter {
	r := &SchemeRouter{schemes: make(map[string]Provider, len(schemes))}
	for scheme, provider := range schemes {
		r.schemes[strings.ToLower(scheme)] = provider
	}
	return r
}

func (r *SchemeRouter) resolve(name string) (Provider, string, error) {
	scheme, rel, ok := SplitScheme(name)
	if !ok {
		return nil, "", errx.With(ErrMissingScheme, ": %q", name)
	}
	p, ok := r.schemes[scheme]
	if !ok {
		return nil, "", errx.With(ErrUnknownScheme, ": %q", scheme)
	}
	return p, rel, nil
}

func (r *SchemeRouter) Stat(name string) (FileInfo, error) {
	p, rel, err := r.resolve(name)
	if err != nil {
		return FileInfo{}, err
	}
	return p.Stat(rel)
}

func (r *SchemeRouter) Open(name string, flags int, mode os.FileMode) (Handle, error) {
	p, rel, err := r.resolve(name)
	if err != nil {
		return nil, err
	}
	return p.Open(rel, flags, mode)
}

func (r *SchemeRouter) Mkdir(name string, mode os.FileMode) error {
	p, rel, err := r.resolve(name)
	if err != nil {
		return err
	}
	return p.Mkdir(rel, mode)
}

// SplitScheme splits "save:/a/b.sav" into ("save", "/a/b.sav"). The
// remainder is cleaned and always rooted.
func SplitScheme(name string) (scheme, rel string, ok bool) {
	idx := strings.IndexByte(name, ':')
	if idx <= 0 || strings.ContainsRune(name[:idx], '/') {
		return "", "", false
	}
	return strings.ToLower(name[:idx]), cleanPath(name[idx+1:]), true
}

// JoinScheme builds "scheme:/elem/elem".
func JoinScheme(scheme string, elems ...string) string {
	return scheme + ":" + path.Join(append([]string{"/"}, elems...)...)
}

func cleanPath(name string) string {
	return path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))
}
