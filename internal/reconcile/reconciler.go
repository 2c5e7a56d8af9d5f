package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"receiptiq/internal/logging"
	"receiptiq/internal/model"
	"receiptiq/internal/record"
	"receiptiq/internal/repository"
)

// Reconciler narrows records and stores the resulting receipts.
type Reconciler struct {
	repo   repository.ReceiptRepository
	logger zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewReconciler(repo repository.ReceiptRepository, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		repo:   repo,
		logger: logging.Component(logger, "reconciler"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

// Reconcile narrows rec and persists the receipt, its items and the file's
// processed flag as one unit.
func (r *Reconciler) Reconcile(ctx context.Context, rec record.Record, fileID string) (*model.Receipt, error) {
	rc := Narrow(rec, fileID, r.logger.With().Str("file_id", fileID).Logger())
	rc.ID = r.newID()
	rc.CreatedAt = r.now()
	for i := range rc.Items {
		rc.Items[i].ID = r.newID()
		rc.Items[i].ReceiptID = rc.ID
	}

	out, err := r.repo.CreateForFile(ctx, rc)
	if err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}
	r.logger.Info().
		Str("event", "receipt_created").
		Str("file_id", fileID).
		Str("receipt_id", out.ID).
		Int("items", len(out.Items)).
		Msg("receipt reconciled")
	return out, nil
}
