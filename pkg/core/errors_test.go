package core_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/ghostpub/pkg/core"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want core.Kind
	}{
		{"configuration", core.ConfigurationError(core.ErrBlogURLMissing, "blog URL is not set"), core.KindConfiguration},
		{"resolution", core.ResolutionError(core.ErrImageNotFound, "image not found: a.png"), core.KindResolution},
		{"remote", core.RemoteError(core.ErrUnexpectedResponse, "create post failed"), core.KindRemote},
		{"unknown", core.Classify(errors.New("boom")), core.KindUnknown},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, core.KindOf(tt.err))
		})
	}
}

func TestClassify_KeepsCategory(t *testing.T) {
	err := core.ResolutionError(core.ErrLinkUnresolved, "cannot resolve [[x]]")
	classified := core.Classify(err)

	assert.Equal(t, core.KindResolution, core.KindOf(classified))
	assert.ErrorIs(t, classified, core.ErrLinkUnresolved)
	assert.Nil(t, core.Classify(nil))
}

func TestSummary_Truncates(t *testing.T) {
	long := errors.New(strings.Repeat("x", 500))

	got := core.Summary(long)
	assert.Equal(t, core.SummaryLimit, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))

	assert.Equal(t, "short", core.Summary(errors.New("short")))
	assert.Equal(t, "", core.Summary(nil))
}
