package service

import (
	"fmt"
	"log"
	"time"

	"staybook/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// CompletePastCheckouts moves confirmed reservations whose checkout day has
// passed to completed.
func (s *JobService) CompletePastCheckouts() error {
	log.Println("Cron Job: Checking for reservations to mark as 'completed'...")

	ids, err := s.Repo.GetConfirmedIDsPastCheckout()
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed reservations past checkout: %w", err)
	}

	if len(ids) == 0 {
		log.Println("Cron Job: No confirmed reservations found past their checkout.")
		return nil
	}

	log.Printf("Cron Job: Found %d reservations to mark as 'completed'. IDs: %v", len(ids), ids)

	if err := s.Repo.UpdateReservationStatuses(ids, "completed"); err != nil {
		return fmt.Errorf("cron job: failed to update reservation statuses: %w", err)
	}

	log.Printf("Cron Job: Successfully updated %d reservations to 'completed'.", len(ids))
	return nil
}

// CancelStalePending cancels pending reservations whose payment never
// arrived within the grace window, releasing their blocked nights.
func (s *JobService) CancelStalePending(grace time.Duration) (int64, error) {
	return s.Repo.CancelUnpaidPendingOlderThan(time.Now().UTC().Add(-grace))
}
