// Package provider implements the storage backends the browser reads from
// and writes to: AWS Secrets Manager, Kubernetes cluster secrets, flat JSON
// files and dotenv files. Screens never touch a backend directly; they hold
// fetched records plus enough identity to request a write-back.
package provider

import (
	"context"
	"fmt"
	"time"

	"secretpeek/internal/secret"
)

// Kind names a storage type.
type Kind string

const (
	KindAWS     Kind = "aws"
	KindCluster Kind = "cluster"
	KindJSON    Kind = "json"
	KindEnv     Kind = "env"
)

// Kinds lists every storage type in display order.
func Kinds() []Kind {
	return []Kind{KindAWS, KindCluster, KindJSON, KindEnv}
}

// Options selects where a provider operates. Which field is required
// depends on the kind; a missing required selector is a configuration
// error raised before any network or file call.
type Options struct {
	// Region selects the AWS region (aws).
	Region string
	// Namespace selects the cluster namespace (cluster).
	Namespace string
	// Path is the directory holding secret files (json, env).
	Path string
}

// Item is one listed secret name with optional last-modified metadata.
type Item struct {
	Name       string
	ModifiedAt time.Time
}

// Provider is the contract every storage backend implements.
type Provider interface {
	// Kind names the storage type.
	Kind() Kind

	// List returns the ordered names available under opts.
	List(ctx context.Context, opts Options) ([]Item, error)

	// Fetch retrieves one secret as a flat record.
	Fetch(ctx context.Context, name string, opts Options) (*secret.Record, error)

	// Store writes a record back and returns a confirmation message.
	Store(ctx context.Context, name string, rec *secret.Record, opts Options) (string, error)

	// Writable reports whether edits persist immediately on store (file
	// backed types) as opposed to requiring an explicit upload step.
	Writable() bool

	// Syntax is the temp-file format used when editing this kind.
	Syntax() secret.Syntax
}

// Registry maps storage kinds to their providers.
type Registry struct {
	providers map[Kind]Provider
}

// NewRegistry builds a registry from the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[Kind]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Kind()] = p
	}
	return r
}

// Get returns the provider for kind.
func (r *Registry) Get(kind Kind) (Provider, error) {
	p, ok := r.providers[kind]
	if !ok {
		return nil, &Error{Kind: ErrConfig, Err: fmt.Errorf("unknown storage type %q", kind)}
	}
	return p, nil
}

// Kinds returns the registered kinds in display order.
func (r *Registry) Kinds() []Kind {
	out := make([]Kind, 0, len(r.providers))
	for _, k := range Kinds() {
		if _, ok := r.providers[k]; ok {
			out = append(out, k)
		}
	}
	return out
}
