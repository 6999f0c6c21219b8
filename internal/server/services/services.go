// Package services contains server-side business logic: account
// registration and authentication, rabbits, photos and images.
//
// Services take a *sql.DB plus a repomanager.RepositoryManager so that
// multi-statement operations can rebind repositories to a transaction via
// dbx.WithTx.
package services

import (
	"context"

	"github.com/wonderfulrabbits/rabbitsapi/internal/logging"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/blobstore"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/wonderfulrabbits/rabbitsapi/internal/server/services")

// removeBlobs deletes blobs orphaned by a committed cascade. Failures are
// logged and otherwise ignored.
func removeBlobs(ctx context.Context, store blobstore.Store, log logging.Logger, keys []string) {
	for _, k := range keys {
		if err := store.Delete(ctx, k); err != nil {
			log.Warn(ctx, "orphaned blob not removed", "key", k, "error", err)
		}
	}
}
