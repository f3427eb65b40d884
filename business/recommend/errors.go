package recommend

import "errors"

var (
	// ErrProductNotFound means a referenced product id is absent from the
	// catalog. Single-product updates abort with it; batch updates skip the
	// missing product.
	ErrProductNotFound = errors.New("product not found")

	// ErrNoValidProducts means every product id in a batch failed to resolve.
	ErrNoValidProducts = errors.New("no valid products found for purchase update")

	// ErrTrainingInProgress is returned when a training run is requested
	// while another is in-flight. Requests are rejected, never queued.
	ErrTrainingInProgress = errors.New("training already in progress")

	// ErrInsufficientTrainingData means fewer records were available than
	// the configured minimum and synthetic top-up is disabled.
	ErrInsufficientTrainingData = errors.New("insufficient training data")

	// ErrModelIncompatible means a persisted artifact was built against a
	// different feature space. Fatal: loading it would corrupt vectors.
	ErrModelIncompatible = errors.New("model feature space incompatible")

	// ErrUserNotFound means no preference state or purchase history exists
	// for the requested user.
	ErrUserNotFound = errors.New("user not found")
)
