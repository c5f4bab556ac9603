package telegram

import (
	"fmt"

	"kavita_notification_bot/internal/infra/scheduler"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers the admin chat commands. Only the
// configured admin may trigger a manual cycle or ask for scheduler status.
func RegisterAdminHandlers(b *telebot.Bot, sched *scheduler.CycleScheduler, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/checknow", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/checknow",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		if sched.State() != scheduler.StateRunning {
			handlerLogger.Warn("Manual check requested while scheduler not running")
			return c.Send(fmt.Sprintf("Scheduler is %s; manual check not possible.", sched.State()))
		}

		if err := c.Send("Running a manual library check..."); err != nil {
			handlerLogger.WithError(err).Warn("Failed to acknowledge manual check")
		}
		// Overlap with an in-flight cycle is a silent no-op by design.
		sched.CheckNow()
		handlerLogger.Info("Manual check finished")
		return c.Send("Manual library check finished.")
	})

	b.Handle("/status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/status",
			"sender_id": c.Sender().ID,
		})
		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}
		return c.Send(fmt.Sprintf("Scheduler state: %s", sched.State()))
	})
}
