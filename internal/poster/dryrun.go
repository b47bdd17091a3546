package poster

import (
	"context"
	"fmt"
	"io"
)

// DryRunPoster prints posts instead of publishing them.
type DryRunPoster struct {
	out io.Writer
}

// NewDryRunPoster creates a poster that writes to out.
func NewDryRunPoster(out io.Writer) *DryRunPoster {
	return &DryRunPoster{out: out}
}

// Platform returns the platform name.
func (d *DryRunPoster) Platform() string {
	return "dry-run"
}

// ValidateCredentials always succeeds.
func (d *DryRunPoster) ValidateCredentials(ctx context.Context) error {
	return nil
}

// Post writes the content and returns a placeholder id.
func (d *DryRunPoster) Post(ctx context.Context, content PostContent) (*PostResult, error) {
	fmt.Fprintln(d.out)
	fmt.Fprintf(d.out, "=== DRY RUN (%s) - Not posting ===\n", content.PostType)
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, content.Text)
	fmt.Fprintln(d.out)

	return &PostResult{PostID: "dry-run"}, nil
}
