package listing

import "context"

// Strategy is one independent technique for obtaining listings for a keyword.
// A returned error means the whole strategy failed; callers treat it as zero records.
type Strategy interface {
	Name() string
	Execute(ctx context.Context, keyword string, maxResults int) ([]Record, error)
}

// Fetcher fetches a URL and returns the body plus metadata.
type Fetcher interface {
	Fetch(ctx context.Context, request FetchRequest) (FetchResponse, error)
}

// Renderer loads a URL in a browser and returns the rendered DOM.
type Renderer interface {
	Render(ctx context.Context, request RenderRequest) (RenderResponse, error)
}
