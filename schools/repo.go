package schools

import (
	"context"

	apperrors "github.com/jrsteele09/go-school-gateway/internal/errors"
)

// ErrNotFound is returned when no school matches a lookup.
var ErrNotFound = apperrors.Wrapf(apperrors.ErrNotFound, "school")

type Repo interface {
	GetBySubdomain(ctx context.Context, subdomain string) (*School, error)
	GetByID(ctx context.Context, schoolID string) (*School, error)
}
