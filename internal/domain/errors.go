package domain

import "errors"

// Sentinel errors for bundle operations
var (
	// ErrDocumentFetch indicates an index, detail page, feed or asset could not be read
	ErrDocumentFetch = errors.New("document unavailable")

	// ErrPatternMismatch indicates markup did not have the expected shape
	ErrPatternMismatch = errors.New("unexpected document shape")

	// ErrAssetLoad indicates a frame and its thumbnail both failed to load
	ErrAssetLoad = errors.New("image could not be loaded")

	// ErrNoSeries indicates a study has no displayable series
	ErrNoSeries = errors.New("no image data available for this study")
)
