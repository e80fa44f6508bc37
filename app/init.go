package app

import (
	"plinth/app/activities"
	"plinth/app/media"
	"plinth/app/notifications"
	"plinth/app/posts"
	"plinth/app/realtime"
	"plinth/app/search"
	"plinth/app/users"
	"plinth/core/kernel"
)

// Modules constructs every application module. Registration order is
// irrelevant; the kernel resolves the actual boot order from the manifests.
func Modules(deps kernel.Dependencies) map[string]kernel.Module {
	return map[string]kernel.Module{
		"users":         users.New(deps),
		"posts":         posts.New(deps),
		"activities":    activities.New(deps),
		"notifications": notifications.New(deps),
		"search":        search.New(deps),
		"media":         media.New(deps),
		"realtime":      realtime.New(deps),
	}
}
