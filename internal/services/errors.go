package services

import "errors"

// Service-level sentinel errors. The HTTP error handler maps these onto
// problem responses by message, so the wording here is part of the API
// contract.
var (
	// Dataset errors
	ErrSourceUnavailable = errors.New("dataset source unavailable")
	ErrEmptyDataset      = errors.New("dataset contains no usable rows")
	ErrSummaryNotFound   = errors.New("summary table not found")

	// Feedback errors
	ErrInvalidFeedback = errors.New("invalid feedback submission")
)
