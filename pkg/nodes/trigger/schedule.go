package trigger

import (
	"fmt"
	"time"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule is a cron-driven trigger found in a workflow.
type Schedule struct {
	WorkflowID string
	NodeID     string
	Spec       string
	Location   *time.Location
	Schedule   cron.Schedule
}

// ParseSchedule parses the cron settings of a trigger node. It returns
// (nil, nil) when the trigger has no cron expression.
func ParseSchedule(data models.TriggerData) (cron.Schedule, *time.Location, error) {
	if data.CronExpression == "" {
		return nil, nil, nil
	}

	location := time.UTC

	if data.Timezone != "" {
		loc, err := time.LoadLocation(data.Timezone)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid timezone %q: %w", data.Timezone, err)
		}

		location = loc
	}

	schedule, err := cronParser.Parse("CRON_TZ=" + location.String() + " " + data.CronExpression)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid cron expression %q: %w", data.CronExpression, err)
	}

	return schedule, location, nil
}

// Schedules returns every cron-driven trigger of the given workflows.
// Triggers with invalid settings are reported through the returned error
// slice and skipped.
func Schedules(workflows []*models.Workflow) ([]Schedule, []error) {
	var (
		schedules []Schedule
		errs      []error
	)

	for _, wf := range workflows {
		for _, node := range wf.Nodes {
			if !node.Type.IsTrigger() {
				continue
			}

			data, ok := node.Data.(models.TriggerData)
			if !ok {
				continue
			}

			schedule, location, err := ParseSchedule(data)
			if err != nil {
				errs = append(errs, fmt.Errorf("workflow %s node %s: %w", wf.ID, node.ID, err))

				continue
			}

			if schedule == nil {
				continue
			}

			schedules = append(schedules, Schedule{
				WorkflowID: wf.ID,
				NodeID:     node.ID,
				Spec:       data.CronExpression,
				Location:   location,
				Schedule:   schedule,
			})
		}
	}

	return schedules, errs
}

// ScheduleSeed is the initial data of a run started by the scheduler.
func ScheduleSeed(s Schedule, firedAt time.Time) map[string]any {
	return map[string]any{
		"schedule": map[string]any{
			"nodeId":         s.NodeID,
			"cronExpression": s.Spec,
			"firedAt":        firedAt.In(s.Location).Format(time.RFC3339),
		},
	}
}
