package moderate

import (
	"context"

	"github.com/eientei/eagle/internal/audit"
	"github.com/eientei/eagle/internal/scheduler"
	"github.com/sirupsen/logrus"
)

type restoreRecord struct {
	scheduler.Job
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

func (restoreRecord) Scope() string {
	return scope
}

func (restoreRecord) Name() string {
	return journalName
}

func newRestoreRecord(job scheduler.Job) *restoreRecord {
	record := &restoreRecord{
		Job:   job,
		State: job.State.String(),
	}

	if job.Err != nil {
		record.Error = job.Err.Error()
	}

	return record
}

func (mod *module) observeLog(job scheduler.Job) {
	entry := mod.config.Log.WithFields(logrus.Fields{
		"job":    job.ID,
		"member": job.MemberID,
		"name":   job.MemberName,
	})

	if job.State == scheduler.Abandoned {
		entry.WithError(job.Err).Warn("Role restoration abandoned")
		return
	}

	entry.Info("Roles restored")
}

func (mod *module) observeJournal(job scheduler.Job) {
	if mod.config.Journal == nil {
		return
	}

	err := mod.config.Journal.JournalAppend(newRestoreRecord(job))
	if err != nil {
		mod.config.Log.WithError(err).WithField("job", job.ID).Error("Journaling restoration")
	}
}

func (mod *module) observeAudit(job scheduler.Job) {
	detail := job.State.String()
	if job.Err != nil {
		detail += ": " + job.Err.Error()
	}

	err := mod.config.Audit.Record(context.Background(), &audit.Entry{
		Action:     audit.ActionRestore,
		GuildID:    job.GuildID,
		TargetID:   job.MemberID,
		TargetName: job.MemberName,
		Detail:     detail,
		Actor:      "scheduler",
	})
	if err != nil {
		mod.config.Log.WithError(err).WithField("job", job.ID).Error("Recording restoration")
	}
}
