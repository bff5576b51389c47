// Package nameresolve implements the five-step translation from a
// CP-encoded "share\x00relative\x00path" buffer to an absolute host path
// guaranteed to live inside the share's root.
package nameresolve

import (
	"os"
	"path"
	"strings"

	"github.com/hgfsd/hgfsd/internal/cpname"
	"github.com/hgfsd/hgfsd/internal/hostfs"
	"github.com/hgfsd/hgfsd/internal/shareregistry"
)

// NameStatus is the rejection code returned when resolution fails.
type NameStatus int

const (
	Success NameStatus = iota
	NotFound
	AccessDenied
	NameTooLong
	InvalidName
)

// MaxPathLen bounds the resolved host path length.
const MaxPathLen = 4096

// maxSymlinkDepth bounds the recursion used to re-validate a symlink's
// target through any further symlinks it itself contains, guarding against
// a cycle (e.g. a -> b, b -> a) rather than looping forever.
const maxSymlinkDepth = 40

// Request bundles the resolution inputs named in spec §4.4.
type Request struct {
	Buffer    []byte // CP-encoded "share\x00relative\x00path"
	WantRead  bool
	WantWrite bool
}

// Resolver resolves CP-name buffers against a share registry and host
// filesystem.
type Resolver struct {
	shares *shareregistry.Registry
	fs     hostfs.FS
}

// New builds a Resolver.
func New(shares *shareregistry.Registry, fs hostfs.FS) *Resolver {
	return &Resolver{shares: shares, fs: fs}
}

// Resolve runs the five-step algorithm of spec §4.4 and returns the
// resolved absolute host path, or a non-Success NameStatus.
func (r *Resolver) Resolve(req Request) (string, NameStatus) {
	// Step 1: split at first NUL, look up the share name.
	shareNameRaw, rest, _ := cpname.SplitFirstComponent(req.Buffer)
	shareName := string(shareNameRaw)
	share, ok := r.shares.GetShare(shareName)
	if !ok {
		return "", NotFound
	}

	// Step 2: verify requested access against the share's flags.
	if r.shares.CheckAccess(share, req.WantRead, req.WantWrite) == shareregistry.Denied {
		return "", AccessDenied
	}

	// Step 3: join share-root with the remaining CP components, decoding
	// each component into the host character set.
	components := cpname.Components(rest)
	decoded := make([]string, 0, len(components))
	for _, c := range components {
		if len(c) == 0 {
			continue
		}
		decoded = append(decoded, string(cpname.Decode(c, cpname.DefaultEscape)))
	}

	if len(share.RootPath)+len(strings.Join(decoded, "/"))+1 > MaxPathLen {
		return "", NameTooLong
	}
	for _, comp := range decoded {
		if comp == "." || comp == ".." || strings.ContainsRune(comp, 0) {
			return "", InvalidName
		}
	}

	resolvedPrefix := share.RootPath

	// Step 4 + 5: walk components left-to-right. For a case-insensitive
	// share, substitute canonical casing at each step; for every component,
	// resolve symlinks and verify the canonicalised prefix stays inside
	// root(share) — the escape check is security-critical (spec invariant
	// N1) and runs regardless of whether the final component exists.
	for i, comp := range decoded {
		isFinal := i == len(decoded)-1

		actualName := comp
		if !share.CaseSensitive {
			matched, status := caseInsensitiveMatch(r.fs, resolvedPrefix, comp)
			if status != Success {
				if isFinal && status == NotFound {
					// The final component may not exist yet (create case);
					// fall through using the requested casing.
					actualName = comp
				} else if status != NotFound {
					return "", status
				}
			} else {
				actualName = matched
			}
		}

		candidate := path.Join(resolvedPrefix, actualName)

		info, err := r.fs.Lstat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				if isFinal {
					resolvedPrefix = candidate
					break
				}
				return "", NotFound
			}
			return "", NotFound
		}

		if info.IsLink {
			if !share.FollowSymlinks {
				return "", AccessDenied
			}
			target, err := r.fs.Readlink(candidate)
			if err != nil {
				return "", NotFound
			}
			resolved, status := resolveSymlinkTarget(r.fs, share, resolvedPrefix, target)
			if status != Success {
				return "", status
			}
			// The target itself may traverse further symlinks (a -> b,
			// b -> /etc): resolveSymlinkTarget only string-checked that the
			// joined target is lexically inside root, which the host's own
			// Lstat/Readlink would silently see through on the next join.
			// Re-walk the target's own components from the share root so a
			// multi-hop chain can't smuggle the path outside root merely
			// because each individual hop looked safe as a bare string
			// (spec §4.4 step 5, invariant N1).
			resolved, status = r.canonicalizeWithinRoot(share, resolved, 0)
			if status != Success {
				return "", status
			}
			resolvedPrefix = resolved
			continue
		}

		resolvedPrefix = candidate
	}

	if !withinRoot(resolvedPrefix, share.RootPath) {
		return "", AccessDenied
	}

	return resolvedPrefix, Success
}

// caseInsensitiveMatch finds the real directory entry under dir matching
// name case-insensitively, returning its canonical casing.
func caseInsensitiveMatch(fs hostfs.FS, dir, name string) (string, NameStatus) {
	names, err := fs.ReadDirNames(dir)
	if err != nil {
		return "", NotFound
	}
	lower := strings.ToLower(name)
	for _, n := range names {
		if strings.ToLower(n) == lower {
			return n, Success
		}
	}
	return "", NotFound
}

// resolveSymlinkTarget joins a symlink target against the directory it was
// found in (if relative) and verifies the result stays inside the share
// root, per the invariant N1 escape check.
func resolveSymlinkTarget(fs hostfs.FS, share shareregistry.ShareInfo, dir, target string) (string, NameStatus) {
	var resolved string
	if path.IsAbs(target) {
		resolved = path.Clean(target)
	} else {
		resolved = path.Join(dir, target)
	}
	if !withinRoot(resolved, share.RootPath) {
		return "", AccessDenied
	}
	return resolved, Success
}

// canonicalizeWithinRoot re-walks p's own path components, one hop at a
// time from the share root, Lstat'ing each and recursively following any
// symlink found there — including a symlink discovered only because an
// earlier hop's resolved target happened to be one. A bare lexical
// withinRoot check on p is not enough: p can be a perfectly in-root string
// (e.g. "/srv/s/b") whose final component is itself a symlink escaping the
// root, which a plain path.Join of the next component would then dereference
// transparently on the host. depth guards against a symlink cycle.
func (r *Resolver) canonicalizeWithinRoot(share shareregistry.ShareInfo, p string, depth int) (string, NameStatus) {
	if depth > maxSymlinkDepth {
		return "", AccessDenied
	}
	if !withinRoot(p, share.RootPath) {
		return "", AccessDenied
	}

	root := path.Clean(share.RootPath)
	rel := strings.TrimPrefix(path.Clean(p), root)
	rel = strings.TrimPrefix(rel, "/")

	current := root
	if rel == "" {
		return current, Success
	}

	for _, comp := range strings.Split(rel, "/") {
		candidate := path.Join(current, comp)
		if !withinRoot(candidate, share.RootPath) {
			return "", AccessDenied
		}

		info, err := r.fs.Lstat(candidate)
		if err != nil {
			if os.IsNotExist(err) {
				// A not-yet-existing trailing component (e.g. the target
				// of a create) is accepted lexically; there is nothing
				// further to dereference.
				current = candidate
				continue
			}
			return "", NotFound
		}

		if !info.IsLink {
			current = candidate
			continue
		}

		if !share.FollowSymlinks {
			return "", AccessDenied
		}
		target, err := r.fs.Readlink(candidate)
		if err != nil {
			return "", NotFound
		}
		resolved, status := resolveSymlinkTarget(r.fs, share, current, target)
		if status != Success {
			return "", status
		}
		current, status = r.canonicalizeWithinRoot(share, resolved, depth+1)
		if status != Success {
			return "", status
		}
	}
	return current, Success
}

// withinRoot reports whether canonicalise(p) has root as a prefix
// (invariant N1).
func withinRoot(p, root string) bool {
	p = path.Clean(p)
	root = path.Clean(root)
	if p == root {
		return true
	}
	return strings.HasPrefix(p, root+"/")
}
