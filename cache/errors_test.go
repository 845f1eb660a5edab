package cache

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	sentinels := []error{ErrNotFound, ErrAlreadyCached, ErrUncacheable, ErrMissingRoot}

	for i, err := range sentinels {
		if !strings.HasPrefix(err.Error(), "cache: ") {
			t.Errorf("%v should carry the package prefix", err)
		}
		for j, other := range sentinels {
			if i != j && errors.Is(err, other) {
				t.Errorf("%v should not match %v", err, other)
			}
		}
	}
}

func TestSentinelErrors_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("put step %q: %w", "train-001-aaaa", ErrAlreadyCached)
	if !errors.Is(wrapped, ErrAlreadyCached) {
		t.Error("wrapped sentinel should still match with errors.Is")
	}
}
