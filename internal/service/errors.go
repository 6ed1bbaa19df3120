package service

import (
	"errors"

	"taxipro/internal/repository"
	"taxipro/internal/triperr"
)

// translateRepoErr converts storage-layer sentinel errors into the
// service error taxonomy.
func translateRepoErr(err error, notFoundMsg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return triperr.New(triperr.NotFound, notFoundMsg)
	}
	return triperr.Wrap(triperr.Internal, "storage failure", err)
}
