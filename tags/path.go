// Package tags defines the BFD domain model and the boundary contracts
// between the parser, permission resolver, evaluator and the versioned tag
// store. Implementations live in the subpackages; consumers should depend
// on the interfaces here.
package tags

import (
	"strings"

	"github.com/openbfd/bfd/errors"
)

// Path identifies a tag by its full namespace/tag form.
type Path struct {
	Namespace string
	Tag       string
}

// ParsePath splits a "namespace/tag" string into a Path.
func ParsePath(s string) (Path, error) {
	ns, tag, ok := strings.Cut(s, "/")
	if !ok || ns == "" || tag == "" || strings.Contains(tag, "/") {
		return Path{}, errors.Newf("invalid tagpath %q (want namespace/tag)", s)
	}
	return Path{Namespace: ns, Tag: tag}, nil
}

func (p Path) String() string {
	return p.Namespace + "/" + p.Tag
}

// Actor is an identity making a request. System admin status is explicit
// state carried with the actor, never ambient process state, so permission
// resolution stays deterministic and testable.
type Actor struct {
	ID          string
	SystemAdmin bool
}
