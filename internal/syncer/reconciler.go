package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/readstash/internal/config"
	"github.com/akolanti/readstash/internal/domain/docModel"
	"github.com/akolanti/readstash/internal/domain/jobModel"
	"github.com/akolanti/readstash/internal/ingest"
	"github.com/akolanti/readstash/internal/metrics"
	"github.com/akolanti/readstash/internal/vectorDB"
	"github.com/akolanti/readstash/pkg/logger_i"
)

// Reconciler repairs drift between the structured store and the vector
// index. The structured store is the source of truth: stuck or failed
// enrichment gets re-enqueued, and chunks whose document is gone get
// removed. A run on a consistent system changes nothing.
type Reconciler struct {
	store       docModel.Store
	vectorIndex vectorDB.Index
	pipeline    *ingest.Pipeline
	logger      *logger_i.Logger
}

type Report struct {
	RequeuedSummary       int `json:"requeued_summary"`
	RequeuedEmbedding     int `json:"requeued_embedding"`
	OrphanedChunksRemoved int `json:"orphaned_chunks_removed"`
}

func NewReconciler(store docModel.Store, index vectorDB.Index, pipeline *ingest.Pipeline) *Reconciler {
	return &Reconciler{
		store:       store,
		vectorIndex: index,
		pipeline:    pipeline,
		logger:      logger_i.NewLogger("Reconciler"),
	}
}

func (r *Reconciler) Reconcile(ctx context.Context) (Report, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	var report Report

	cutoff := time.Now().UTC().Add(-config.EnrichmentStaleAfter)
	stale, err := r.store.ListStaleEnrichment(ctx, cutoff, config.ReconcileScanPageSize)
	if err != nil {
		return report, err
	}

	for _, item := range stale {
		requeued, err := r.requeue(ctx, item)
		if err != nil {
			log.Error("Failed to requeue stale enrichment", "documentId", item.DocumentId, "axis", item.Axis, "error", err)
			continue
		}
		if !requeued {
			continue
		}
		if item.Axis == "summary" {
			report.RequeuedSummary++
		} else {
			report.RequeuedEmbedding++
		}
	}

	removed, err := r.removeOrphanedChunks(ctx)
	if err != nil {
		// Orphans are harmless to the read path until the next pass.
		log.Warn("Orphan sweep incomplete", "error", err)
	}
	report.OrphanedChunksRemoved = removed

	metrics.CountReconcileRepair("requeued_summary", report.RequeuedSummary)
	metrics.CountReconcileRepair("requeued_embedding", report.RequeuedEmbedding)
	metrics.CountReconcileRepair("orphaned_chunks", report.OrphanedChunksRemoved)

	log.Info("Reconcile pass finished",
		"requeuedSummary", report.RequeuedSummary,
		"requeuedEmbedding", report.RequeuedEmbedding,
		"orphanedChunksRemoved", report.OrphanedChunksRemoved)
	return report, nil
}

// requeue resets one stale axis to pending and enqueues a fresh job with
// the attempt counter back at 1. Runs under the document lock so it cannot
// race an in-flight worker write.
func (r *Reconciler) requeue(ctx context.Context, item docModel.StaleEnrichment) (bool, error) {
	unlock := r.pipeline.Locks().Lock(item.DocumentId)
	defer unlock()

	if _, err := r.store.GetDocument(ctx, item.DocumentId); err != nil {
		if errors.Is(err, docModel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if item.Axis == "summary" {
		if err := r.store.SetSummary(ctx, item.DocumentId, config.SummaryPlaceholder, docModel.SummaryPending); err != nil {
			return false, err
		}
		r.pipeline.EnqueueEnrichment(ctx, item.DocumentId, jobModel.JobKindSummary, 1)
		return true, nil
	}

	if err := r.store.SetEmbeddingStatus(ctx, item.DocumentId, docModel.EmbeddingPending); err != nil {
		return false, err
	}
	r.pipeline.EnqueueEnrichment(ctx, item.DocumentId, jobModel.JobKindEmbedding, 1)
	return true, nil
}

func (r *Reconciler) removeOrphanedChunks(ctx context.Context) (int, error) {
	if r.vectorIndex == nil {
		return 0, nil
	}

	vectorIDs, err := r.vectorIndex.ListDocumentIDs(ctx)
	if err != nil {
		return 0, err
	}
	storeIDs, err := r.store.ListDocumentIDs(ctx)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(storeIDs))
	for _, id := range storeIDs {
		known[id] = true
	}

	removed := 0
	for _, id := range vectorIDs {
		if known[id] {
			continue
		}
		unlock := r.pipeline.Locks().Lock(id)
		// Re-check inside the lock: the document may have been created
		// between the two listings.
		if _, err := r.store.GetDocument(ctx, id); err == nil {
			unlock()
			continue
		} else if !errors.Is(err, docModel.ErrNotFound) {
			unlock()
			return removed, err
		}
		err := r.vectorIndex.DeleteDocumentChunks(ctx, id)
		unlock()
		if err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// RunPeriodic triggers a reconcile pass on a fixed interval until the stop
// channel closes. Used alongside the on-demand sync endpoint.
func (r *Reconciler) RunPeriodic(stopChan chan bool) {
	ticker := time.NewTicker(config.ReconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			r.logger.Info("Stopping periodic reconciliation")
			return
		case <-ticker.C:
			if _, err := r.Reconcile(context.Background()); err != nil {
				r.logger.Error("Periodic reconcile failed", "error", err)
			}
		}
	}
}
