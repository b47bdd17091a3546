// Package job runs one scheduled post: resolve the post type, fetch
// credentials, compose the message and publish it.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/sepsisx/internal/poster"
	"github.com/abdulachik/sepsisx/internal/secrets"
)

const msgMissingCredentials = "Failed to retrieve credentials"

// CredentialSource returns the credential bundle for one invocation.
type CredentialSource interface {
	Fetch(ctx context.Context) (*secrets.Credentials, error)
}

// PosterFactory builds a poster from freshly fetched credentials.
type PosterFactory func(creds *secrets.Credentials) poster.Poster

// Handler orchestrates a single invocation. It is safe to reuse across
// invocations; it keeps no per-invocation state.
type Handler struct {
	secrets   CredentialSource
	newPoster PosterFactory
	now       func() time.Time
}

// Config holds handler dependencies.
type Config struct {
	Secrets   CredentialSource
	NewPoster PosterFactory
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewHandler creates a new handler.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		secrets:   cfg.Secrets,
		newPoster: cfg.NewPoster,
		now:       cfg.Now,
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Handle runs the pipeline and converts every outcome into a Response.
// The returned error is always nil so the runtime records no function error.
func (h *Handler) Handle(ctx context.Context, event Event) (resp Response, _ error) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("handler panicked", "panic", r)
			resp = newResponse(KindInternalFailure, Body{
				Message: fmt.Sprintf("Error in handler: %v", r),
			})
		}
	}()

	pt, err := event.Resolve()
	if err != nil {
		return h.finish(event.Requested(), start, KindInvalidInput, Body{
			Message: fmt.Sprintf("Invalid post_type: %s", event.Requested()),
		}, err), nil
	}

	creds, err := h.secrets.Fetch(ctx)
	if err != nil {
		return h.finish(pt.String(), start, KindInternalFailure, Body{
			Message: fmt.Sprintf("Error in handler: %v", err),
		}, err), nil
	}
	if err := creds.Validate(); err != nil {
		return h.finish(pt.String(), start, KindInternalFailure, Body{
			Message: msgMissingCredentials,
		}, err), nil
	}

	text, err := poster.Compose(pt, h.now())
	if err != nil {
		return h.finish(pt.String(), start, Classify(err), Body{
			Message: fmt.Sprintf("Invalid post_type: %q", pt.String()),
		}, err), nil
	}

	result, err := h.newPoster(creds).Post(ctx, poster.PostContent{
		Text:     text,
		PostType: pt,
	})
	if err == nil && result == nil {
		err = errors.New("poster returned no result")
	}
	if err != nil {
		err = upstreamError{err: err}
		return h.finish(pt.String(), start, Classify(err), Body{
			Message: fmt.Sprintf("Error posting %s tweet: %v", pt, err),
		}, err), nil
	}

	return h.finish(pt.String(), start, KindSuccess, Body{
		Message: fmt.Sprintf("%s tweet posted successfully!", pt.Label()),
		TweetID: result.PostID,
	}, nil), nil
}

func (h *Handler) finish(postType string, start time.Time, kind Kind, body Body, err error) Response {
	resp := newResponse(kind, body)

	attrs := []any{
		"post_type", postType,
		"status", resp.StatusCode,
		"kind", kind.String(),
		"duration", time.Since(start),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
		slog.Error("post job failed", attrs...)
	} else {
		attrs = append(attrs, "tweet_id", body.TweetID)
		slog.Info("post job complete", attrs...)
	}

	return resp
}
