package core

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

// Kind classifies a publish failure for reporting.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindResolution    Kind = "resolution"
	KindRemote        Kind = "remote"
	KindUnknown       Kind = "unknown"
)

// Text codes attached to classified errors.
const (
	CodeConfiguration = "PUBLISH_CONFIGURATION"
	CodeResolution    = "PUBLISH_RESOLUTION"
	CodeRemote        = "PUBLISH_REMOTE"
	CodeUnknown       = "PUBLISH_UNKNOWN"
)

// SummaryLimit is the number of runes Summary keeps.
const SummaryLimit = 200

// Common errors.
var (
	ErrNoActiveDocument   = errors.New("no active document")
	ErrNotMarkdown        = errors.New("document is not a markdown file")
	ErrBlogURLMissing     = errors.New("blog URL is not configured")
	ErrAPIKeyNameMissing  = errors.New("API key secret name is not configured")
	ErrCredentialMissing  = errors.New("credential not found")
	ErrLinkUnresolved     = errors.New("link target not found")
	ErrLinkNotPublished   = errors.New("linked post is not published")
	ErrImageNotFound      = errors.New("image not found")
	ErrUnexpectedResponse = errors.New("unexpected response from remote")
)

// ConfigurationError marks err as a configuration problem.
func ConfigurationError(err error, format string, args ...any) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, fmt.Sprintf(format, args...)).
		WithTextCode(CodeConfiguration)
}

// ResolutionError marks err as a failure to resolve a document, link or asset.
func ResolutionError(err error, format string, args ...any) error {
	return goerrors.Wrap(err, goerrors.CategoryNotFound, fmt.Sprintf(format, args...)).
		WithTextCode(CodeResolution)
}

// RemoteError marks err as a failed exchange with the remote platform.
func RemoteError(err error, format string, args ...any) error {
	return goerrors.Wrap(err, goerrors.CategoryExternal, fmt.Sprintf(format, args...)).
		WithTextCode(CodeRemote)
}

// Classify returns err unchanged when it already carries a category and
// wraps it as an unknown failure otherwise.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
		WithTextCode(CodeUnknown)
}

// KindOf reports the taxonomy kind of a classified error.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case goerrors.IsCategory(err, goerrors.CategoryValidation):
		return KindConfiguration
	case goerrors.IsCategory(err, goerrors.CategoryNotFound):
		return KindResolution
	case goerrors.IsCategory(err, goerrors.CategoryExternal):
		return KindRemote
	default:
		return KindUnknown
	}
}

// Summary renders err as a single line suitable for a user notice.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	msg := []rune(err.Error())
	if len(msg) <= SummaryLimit {
		return string(msg)
	}
	return string(msg[:SummaryLimit-1]) + "…"
}
