package media

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Resolver turns a link to an image hosting page into the direct urls of the
// image files behind it. Most resolver implementations only know about a
// particular web site (e.g., imgur).
type Resolver interface {
	// Resolve returns the direct image urls behind u. It returns nil, nil if
	// it does not know how to handle u.
	Resolve(ctx context.Context, u string) ([]string, error)
}

// Resolve passes u to each resolver in turn and returns the result of the
// first one that handles it. If none does, u is returned unchanged.
func Resolve(ctx context.Context, rs []Resolver, u string) ([]string, error) {
	for _, r := range rs {
		urls, err := r.Resolve(ctx, u)
		if err != nil {
			return nil, err
		}
		if urls != nil {
			log.Debugf("resolved %s --> %v", u, urls)
			return urls, nil
		}
	}

	return []string{u}, nil
}
