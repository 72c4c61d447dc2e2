package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"

	"github.com/quietbay/innkeep/internal/app"
)

// Schedule configures when the daily passes run, in the guesthouse's
// timezone.
type Schedule struct {
	ReminderHour int
	CheckoutHour int
	Location     *time.Location
}

// Scheduler exposes the periodic workers so the service they drive can be
// bound after the full graph is built. The client needs its workers at
// construction time, but the stay service needs the publisher (and thus the
// client) first; Bind breaks that cycle. It must be called before
// client.Start().
type Scheduler struct {
	reminder *ReminderWorker
	checkout *CheckoutWorker
}

// Bind attaches the stay service the periodic passes operate on.
func (s *Scheduler) Bind(stays *app.StayService) {
	s.reminder.stays = stays
	s.checkout.stays = stays
}

// Setup creates a River client with the notification and scheduler workers
// registered and runs River's internal migrations. The caller must Bind the
// returned scheduler, then call client.Start() to begin processing jobs and
// client.Stop() for graceful shutdown.
func Setup(ctx context.Context, db *sql.DB, schedule Schedule) (*Client, *Scheduler, error) {
	driver := riversqlite.New(db)

	// Run River's own migrations (creates river_job, river_leader, etc.).
	// These are separate from the app's goose migrations.
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return nil, nil, fmt.Errorf("running river migrations: %w", err)
	}

	scheduler := &Scheduler{
		reminder: &ReminderWorker{},
		checkout: &CheckoutWorker{},
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, &NotificationWorker{})
	river.AddWorker(workers, scheduler.reminder)
	river.AddWorker(workers, scheduler.checkout)

	loc := schedule.Location
	if loc == nil {
		loc = time.UTC
	}

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				dailyAt{hour: schedule.ReminderHour, loc: loc},
				func() (river.JobArgs, *river.InsertOpts) { return ReminderJobArgs{}, nil },
				nil,
			),
			river.NewPeriodicJob(
				dailyAt{hour: schedule.CheckoutHour, loc: loc},
				func() (river.JobArgs, *river.InsertOpts) { return CheckoutJobArgs{}, nil },
				nil,
			),
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, scheduler, nil
}

// dailyAt fires once a day at the configured hour in the configured
// timezone. It implements river.PeriodicSchedule.
type dailyAt struct {
	hour int
	loc  *time.Location
}

func (s dailyAt) Next(t time.Time) time.Time {
	local := t.In(s.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), s.hour, 0, 0, 0, s.loc)
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
