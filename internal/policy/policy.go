// Package policy decides whether a user may modify a catalog record.
package policy

import (
	"context"
	"fmt"
	"slices"

	domainerrors "github.com/icgdb/icgdb-server/internal/errors"
)

// SuperuserReader lists the current superusers. Implementations must read
// from the backing store on every call.
type SuperuserReader interface {
	ListSuperuserEmails(ctx context.Context) ([]string, error)
}

// CanMutate reports whether actingEmail may update or delete a record
// created by creatorEmail. Creators may always change their own records and
// superusers may change any record. Records with no creator (the "Other"
// rows) are reachable only by superusers.
func CanMutate(ctx context.Context, r SuperuserReader, actingEmail, creatorEmail string) (bool, error) {
	if actingEmail == "" {
		return false, nil
	}
	if creatorEmail != "" && actingEmail == creatorEmail {
		return true, nil
	}

	superusers, err := r.ListSuperuserEmails(ctx)
	if err != nil {
		return false, fmt.Errorf("list superusers: %w", err)
	}
	return slices.Contains(superusers, actingEmail), nil
}

// Require is CanMutate returning domain errors: Unauthorized when the check
// fails, Internal when the superuser list cannot be read.
func Require(ctx context.Context, r SuperuserReader, actingEmail, creatorEmail string) error {
	ok, err := CanMutate(ctx, r, actingEmail, creatorEmail)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "could not check permissions")
	}
	if !ok {
		return domainerrors.Unauthorized("You are not authorized to change this record.")
	}
	return nil
}
