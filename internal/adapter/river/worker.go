package river

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/quietbay/innkeep/internal/app"
	"github.com/quietbay/innkeep/internal/domain"
)

// schedulerActor attributes automatic mutations to the job scheduler rather
// than a user.
var schedulerActor = domain.Actor{ID: "scheduler", Display: "Checkout scheduler"}

// NotificationWorker processes notification jobs from the River queue.
// For now it logs the notification; future versions will dispatch to a
// messaging channel for the front desk.
type NotificationWorker struct {
	river.WorkerDefaults[NotificationJobArgs]
}

// Work processes a single notification job.
func (w *NotificationWorker) Work(ctx context.Context, job *river.Job[NotificationJobArgs]) error {
	slog.InfoContext(ctx, "dispatching notification",
		"event", job.Args.Event,
		"entity_id", job.Args.EntityID,
		"code", job.Args.Code,
		"room", job.Args.RoomNumber,
		"guest", job.Args.GuestName,
		"detail", job.Args.Detail,
		"job_id", job.ID,
		"attempt", job.Attempt,
	)
	return nil
}

// ReminderJobArgs is the periodic job that announces stays due to check out
// today. It carries no payload; the pass queries current state itself.
type ReminderJobArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (ReminderJobArgs) Kind() string { return "stay.reminder_pass" }

// ReminderWorker runs the daily checkout reminder pass.
type ReminderWorker struct {
	river.WorkerDefaults[ReminderJobArgs]

	stays *app.StayService
}

// Work runs one reminder pass.
func (w *ReminderWorker) Work(ctx context.Context, job *river.Job[ReminderJobArgs]) error {
	reminded := w.stays.ReminderPass(ctx)
	slog.InfoContext(ctx, "checkout reminder pass finished",
		"reminded", reminded, "job_id", job.ID)
	return nil
}

// CheckoutJobArgs is the periodic job that finalizes stays whose exit date
// is today.
type CheckoutJobArgs struct{}

// Kind returns the unique job type identifier used by River's job routing.
func (CheckoutJobArgs) Kind() string { return "stay.checkout_pass" }

// CheckoutWorker runs the daily automatic checkout pass.
type CheckoutWorker struct {
	river.WorkerDefaults[CheckoutJobArgs]

	stays *app.StayService
}

// Work runs one automatic checkout pass.
func (w *CheckoutWorker) Work(ctx context.Context, job *river.Job[CheckoutJobArgs]) error {
	processed := w.stays.CheckoutPass(ctx, schedulerActor)
	slog.InfoContext(ctx, "automatic checkout pass finished",
		"processed", processed, "job_id", job.ID)
	return nil
}
