package service

import (
	"context"
	"log"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// BillingService sweeps driver subscription fees. Billing runs only on
// weekdays; weekend sweeps are no-ops.
type BillingService struct {
	driverRepo repository.DriverRepository
	gateway    PaymentGateway
	notifier   Notifier
}

// NewBillingService creates a new BillingService.
func NewBillingService(driverRepo repository.DriverRepository, gateway PaymentGateway, notifier Notifier) *BillingService {
	return &BillingService{driverRepo: driverRepo, gateway: gateway, notifier: notifier}
}

// billingSweepInterval is how often the due-driver query runs. Drivers
// are only charged when actually due, so a short interval is safe.
const billingSweepInterval = 1 * time.Hour

// Run sweeps due drivers on a fixed interval until the context is
// cancelled.
func (s *BillingService) Run(ctx context.Context) {
	ticker := time.NewTicker(billingSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.RunDailyBilling(ctx, time.Now()); err != nil {
				log.Printf("billing sweep failed: %v", err)
			}
		}
	}
}

// BillingOutcome records the result of one driver's billing attempt.
type BillingOutcome struct {
	DriverID string
	Amount   int64
	Err      error
}

// RunDailyBilling charges every driver due for billing as of now. One
// driver's failure never aborts the sweep; each outcome is reported.
func (s *BillingService) RunDailyBilling(ctx context.Context, now time.Time) ([]BillingOutcome, error) {
	switch now.Weekday() {
	case time.Saturday, time.Sunday:
		return nil, nil
	}

	// Drivers billed within the last day are not due; Run ticks far more
	// often than once a day, so the cutoff keeps charges daily.
	due, err := s.driverRepo.ListDueForBilling(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}

	outcomes := make([]BillingOutcome, 0, len(due))
	for _, driver := range due {
		outcome := BillingOutcome{DriverID: driver.ID, Amount: driver.SubscriptionFee}
		outcome.Err = s.billDriver(ctx, driver, now)
		if outcome.Err != nil {
			log.Printf("billing failed for driver %s: %v", driver.ID, outcome.Err)
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (s *BillingService) billDriver(ctx context.Context, driver *domain.Driver, now time.Time) error {
	intent, err := s.gateway.CreateIntent(ctx, CreateIntentRequest{
		AmountCents:     driver.SubscriptionFee,
		Currency:        "eur",
		CustomerID:      driver.StripeCustomerID,
		PaymentMethodID: driver.DefaultPaymentMethod,
		OffSession:      true,
		IdempotencyKey:  "subscription:" + driver.ID + ":" + now.Format("2006-01-02"),
	})
	if err == nil && intent.Status != IntentStatusSucceeded {
		err = ErrChargeDeclined
	}
	if err != nil {
		if subErr := s.driverRepo.UpdateSubscription(ctx, driver.ID, domain.SubscriptionExpired); subErr != nil {
			log.Printf("subscription demotion failed for driver %s: %v", driver.ID, subErr)
		}
		if s.notifier != nil {
			_ = s.notifier.Notify(ctx, driver.ID, "Subscription Payment Failed",
				"Your subscription payment could not be processed. Trip acceptance is suspended.")
		}
		return err
	}

	if err := s.driverRepo.MarkBilled(ctx, driver.ID, now); err != nil {
		return err
	}
	if driver.Subscription != domain.SubscriptionActive {
		if err := s.driverRepo.UpdateSubscription(ctx, driver.ID, domain.SubscriptionActive); err != nil {
			log.Printf("subscription activation failed for driver %s: %v", driver.ID, err)
		}
	}
	return nil
}
