package jobs

import (
	"context"

	"plinth/app/posts"
	"plinth/core/logger"
	"plinth/core/scheduler"
)

// SetupScheduler registers all recurring jobs with the cron scheduler.
func SetupScheduler(postService *posts.PostService, log logger.Logger) (*scheduler.CronScheduler, error) {
	cronScheduler := scheduler.NewCronScheduler(log)

	publishTask := &scheduler.CronTask{
		Name:        "publish_scheduled_posts",
		Description: "Publish scheduled posts whose publish time has passed",
		CronExpr:    "*/5 * * * *",
		Handler: func(ctx context.Context) error {
			return postService.PublishDue(ctx)
		},
		Enabled: true,
	}

	if err := cronScheduler.RegisterTask(publishTask); err != nil {
		return nil, err
	}

	return cronScheduler, nil
}
