package core

import (
	"context"
	"fmt"
	"time"
)

const (
	defaultInstallPendingTTL = 24 * time.Hour
	defaultExpirySweepLimit  = 100

	expiryFailureReason = "authorization window expired"
)

type ExpirySweepOptions struct {
	PendingTTL time.Duration
	Limit      int
	Now        time.Time
}

// RunExpirySweep marks installations stuck before token exchange as failed
// once they outlive the pending TTL. Each batch is bounded; hosts schedule the
// sweep through the job adapter and call it repeatedly.
func (s *Service) RunExpirySweep(ctx context.Context, opts ExpirySweepOptions) (result ExpirySweepResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["scanned"] = result.Scanned
		fields["expired"] = result.Expired
		s.observeOperation(ctx, startedAt, "expiry_sweep", err, fields)
	}()

	if s.installationStore == nil {
		err = s.mapError(fmt.Errorf("core: installation store is required"))
		return ExpirySweepResult{}, err
	}

	ttl := opts.PendingTTL
	if ttl <= 0 {
		ttl = s.config.Install.PendingTTL
	}
	if ttl <= 0 {
		ttl = defaultInstallPendingTTL
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultExpirySweepLimit
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	cutoff := now.Add(-ttl)

	stale, err := s.installationStore.ListStale(ctx, []InstallationStatus{
		InstallationStatusPendingAuth,
		InstallationStatusAuthRedirected,
	}, cutoff, limit)
	if err != nil {
		err = s.mapError(err)
		return ExpirySweepResult{}, err
	}

	result.Scanned = len(stale)
	for _, installation := range stale {
		if updateErr := s.installationStore.UpdateStatus(
			ctx,
			installation.ID,
			InstallationStatusFailed,
			expiryFailureReason,
		); updateErr != nil {
			s.logError(ctx, "expire installation", map[string]any{
				"installation_id": installation.ID,
				"error":           updateErr.Error(),
			})
			continue
		}
		result.Expired++
	}

	return result, nil
}
