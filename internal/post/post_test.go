package post

import (
	"testing"

	"github.com/ptasker/gutenberg/internal/block"
)

func TestStatusPublished(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{StatusAutoDraft, false},
		{StatusDraft, false},
		{StatusPending, false},
		{StatusFuture, false},
		{StatusPrivate, true},
		{StatusPublish, true},
	}

	for _, tc := range cases {
		if got := tc.status.Published(); got != tc.want {
			t.Errorf("Published(%q) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestReusableWrapper(t *testing.T) {
	r := ReusableBlock{ID: "reusable-1", Title: "Callout", Type: "core/paragraph"}

	w := r.Wrapper("block-9")

	if w.ID != "block-9" {
		t.Errorf("wrapper id = %q, want block-9", w.ID)
	}
	if w.Type != block.ReusableType {
		t.Errorf("wrapper type = %q, want %q", w.Type, block.ReusableType)
	}
	if ref := w.Attributes[block.RefAttribute]; ref != "reusable-1" {
		t.Errorf("wrapper ref = %v, want reusable-1", ref)
	}
}
