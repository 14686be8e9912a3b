package panelapi

import "context"

// Adapter fetches the raw service catalog for one provider family.
// Providers configured with a known family skip the brute-force candidate
// walk; everything else falls back to the generic adapter.
type Adapter interface {
	Name() string
	FetchServices(ctx context.Context, baseURL, apiKey string) ([]map[string]any, error)
}

const (
	AdapterGeneric      = "generic"
	AdapterPerfectPanel = "perfectpanel"
)

type tableAdapter struct {
	name   string
	client *Client
}

func (a *tableAdapter) Name() string { return a.name }

func (a *tableAdapter) FetchServices(ctx context.Context, baseURL, apiKey string) ([]map[string]any, error) {
	return a.client.FetchCatalog(ctx, baseURL, apiKey)
}

// Registry resolves a provider's configured adapter name to an Adapter,
// handing out the generic fallback for unknown or empty names.
type Registry struct {
	adapters map[string]Adapter
	fallback Adapter
}

// NewRegistry builds the default registry: the generic adapter walking the
// full candidate table, plus the perfectpanel family adapter that only
// speaks the key+action convention shared by panels built on that stack.
func NewRegistry(httpClient *Client) *Registry {
	if httpClient == nil {
		httpClient = NewClient()
	}

	generic := &tableAdapter{name: AdapterGeneric, client: httpClient}
	perfectPanel := &tableAdapter{
		name: AdapterPerfectPanel,
		client: &Client{
			HTTPClient: httpClient.HTTPClient,
			Candidates: keyActionCandidates(),
			Retry:      httpClient.Retry,
		},
	}

	r := &Registry{
		adapters: map[string]Adapter{},
		fallback: generic,
	}
	r.Register(generic)
	r.Register(perfectPanel)
	return r
}

// Register adds or replaces an adapter by name.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Name()] = a
}

// Resolve returns the adapter for the given name, or the generic fallback.
func (r *Registry) Resolve(name string) Adapter {
	if a, ok := r.adapters[name]; ok {
		return a
	}
	return r.fallback
}

// Names lists the registered adapter names for admin form dropdowns.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
