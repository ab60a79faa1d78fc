package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"

	"secretpeek/internal/secret"
)

// Cluster serves Kubernetes secrets from the current kubeconfig context.
// Data keys map one-to-one onto record keys; the API types handle base64.
type Cluster struct {
	mu     sync.Mutex
	client kubernetes.Interface

	// newClient builds the clientset from the ambient kubeconfig. Swapped
	// out in tests (fake.NewSimpleClientset).
	newClient func() (kubernetes.Interface, error)
}

// NewCluster returns the cluster secret provider.
func NewCluster() *Cluster {
	return &Cluster{
		newClient: func() (kubernetes.Interface, error) {
			loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
			cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
				loadingRules, &clientcmd.ConfigOverrides{},
			).ClientConfig()
			if err != nil {
				return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
			}
			return kubernetes.NewForConfig(cfg)
		},
	}
}

func (p *Cluster) Kind() Kind            { return KindCluster }
func (p *Cluster) Writable() bool        { return false }
func (p *Cluster) Syntax() secret.Syntax { return secret.SyntaxJSON }

func (p *Cluster) clientset(opts Options) (kubernetes.Interface, string, error) {
	if opts.Namespace == "" {
		return nil, "", &Error{Kind: ErrConfig, Err: fmt.Errorf("no namespace configured (set namespace in config.yaml or pass --namespace)")}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client == nil {
		c, err := p.newClient()
		if err != nil {
			return nil, "", &Error{Kind: ErrTransport, Err: err}
		}
		p.client = c
	}
	return p.client, opts.Namespace, nil
}

func (p *Cluster) List(ctx context.Context, opts Options) ([]Item, error) {
	client, ns, err := p.clientset(opts)
	if err != nil {
		return nil, err
	}

	list, err := client.CoreV1().Secrets(ns).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, mapKubeError("", err)
	}

	items := make([]Item, 0, len(list.Items))
	for _, s := range list.Items {
		items = append(items, Item{
			Name:       s.Name,
			ModifiedAt: s.CreationTimestamp.Time,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (p *Cluster) Fetch(ctx context.Context, name string, opts Options) (*secret.Record, error) {
	client, ns, err := p.clientset(opts)
	if err != nil {
		return nil, err
	}

	s, err := client.CoreV1().Secrets(ns).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, mapKubeError(name, err)
	}

	rec := secret.NewRecord()
	for k, v := range s.Data {
		rec.Set(k, string(v))
	}
	// Secret data is an unordered map; sort for a stable display order.
	rec.SortKeys()
	return rec, nil
}

func (p *Cluster) Store(ctx context.Context, name string, rec *secret.Record, opts Options) (string, error) {
	for _, k := range rec.Keys() {
		if err := secret.ValidateClusterKey(k); err != nil {
			return "", &Error{Kind: ErrValidation, Name: name, Err: err}
		}
	}

	client, ns, err := p.clientset(opts)
	if err != nil {
		return "", err
	}

	data := make(map[string][]byte, rec.Len())
	for _, k := range rec.Keys() {
		v, _ := rec.Get(k)
		data[k] = []byte(v)
	}

	secrets := client.CoreV1().Secrets(ns)
	existing, err := secrets.Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		_, cerr := secrets.Create(ctx, &corev1.Secret{
			ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: ns},
			Type:       corev1.SecretTypeOpaque,
			Data:       data,
		}, metav1.CreateOptions{})
		if cerr != nil {
			return "", mapKubeError(name, cerr)
		}
		return fmt.Sprintf("created secret %s/%s with %d keys", ns, name, rec.Len()), nil
	}
	if err != nil {
		return "", mapKubeError(name, err)
	}

	existing.Data = data
	if _, err := secrets.Update(ctx, existing, metav1.UpdateOptions{}); err != nil {
		return "", mapKubeError(name, err)
	}
	return fmt.Sprintf("updated secret %s/%s with %d keys", ns, name, rec.Len()), nil
}

// mapKubeError classifies API errors into the provider taxonomy.
func mapKubeError(name string, err error) error {
	switch {
	case apierrors.IsNotFound(err):
		return &Error{Kind: ErrNotFound, Name: name, Err: err}
	case apierrors.IsForbidden(err) || apierrors.IsUnauthorized(err):
		return &Error{Kind: ErrAccessDenied, Name: name, Err: err}
	case apierrors.IsInvalid(err) || apierrors.IsBadRequest(err):
		return &Error{Kind: ErrValidation, Name: name, Err: err}
	default:
		return &Error{Kind: ErrTransport, Name: name, Err: err}
	}
}
