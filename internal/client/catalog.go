package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/faycal55/respira/internal/domain"
)

func (cl *Client) Techniques(ctx context.Context) ([]domain.BreathingTechnique, error) {
	var out []domain.BreathingTechnique
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/api/v1/catalog/techniques"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cl *Client) Books(ctx context.Context, category, search string) ([]domain.Book, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	if search != "" {
		q.Set("search", search)
	}
	var out []domain.Book
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/api/v1/catalog/books", query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cl *Client) Tracks(ctx context.Context, category string) ([]domain.Track, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	var out []domain.Track
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/api/v1/catalog/tracks", query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (cl *Client) Plans(ctx context.Context) ([]domain.Plan, error) {
	var out []domain.Plan
	if err := cl.do(ctx, call{method: http.MethodGet, path: "/api/v1/catalog/plans"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
