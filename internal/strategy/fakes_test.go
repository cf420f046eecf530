package strategy

import (
	"context"
	"errors"
	"sync"

	"github.com/JakeFAU/jobscraper/internal/listing"
)

type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]listing.FetchResponse
	errs      map[string]error
	requests  []listing.FetchRequest
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: map[string]listing.FetchResponse{},
		errs:      map[string]error{},
	}
}

func (f *fakeFetcher) respond(url string, status int, body string) {
	f.responses[url] = listing.FetchResponse{URL: url, StatusCode: status, Body: []byte(body)}
}

func (f *fakeFetcher) Fetch(_ context.Context, req listing.FetchRequest) (listing.FetchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if err, ok := f.errs[req.URL]; ok {
		return listing.FetchResponse{}, err
	}
	resp, ok := f.responses[req.URL]
	if !ok {
		return listing.FetchResponse{}, errors.New("no route")
	}
	return resp, nil
}

func (f *fakeFetcher) urls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.URL)
	}
	return out
}

type fakeRenderer struct {
	resp listing.RenderResponse
	err  error
	got  listing.RenderRequest
}

func (f *fakeRenderer) Render(_ context.Context, req listing.RenderRequest) (listing.RenderResponse, error) {
	f.got = req
	if f.err != nil {
		return listing.RenderResponse{}, f.err
	}
	resp := f.resp
	resp.RequestURL = req.URL
	if resp.FinalURL == "" {
		resp.FinalURL = req.URL
	}
	return resp, nil
}

const guestCards = `<li>
  <div class="base-card">
    <a class="base-card__full-link" href="https://www.linkedin.com/jobs/view/101?trk=guest"></a>
    <h3 class="base-search-card__title">Python Developer</h3>
    <h4 class="base-search-card__subtitle">Acme</h4>
    <span class="job-search-card__location">Berlin</span>
  </div>
</li>
<li>
  <div class="base-card">
    <a class="base-card__full-link" href="/jobs/view/102"></a>
    <h3 class="base-search-card__title">Data Engineer</h3>
  </div>
</li>
<li>
  <div class="base-card">
    <h4 class="base-search-card__subtitle">Untitled</h4>
  </div>
</li>`
