package handlers

import (
	"context"

	"trustie-admin/application/queries"
	"trustie-admin/application/queries/bus"
)

// Set groups the query handlers served by the bus
type Set struct {
	Users      *UserQueryHandler
	Events     *EventQueryHandler
	Resources  *ResourceQueryHandler
	ImageURL   *ImageURLHandler
	UsageStats *UsageStatsHandler
}

// Register binds every handler in s to its query type
func (s Set) Register(b *bus.QueryBus) error {
	routes := []struct {
		query   bus.Query
		handler bus.QueryHandlerFunc
	}{
		{queries.GetProfileSectionQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.Users.HandleProfileSection(ctx, q.(queries.GetProfileSectionQuery))
		}},
		{queries.GetUserAccountsQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.Users.HandleAccounts(ctx, q.(queries.GetUserAccountsQuery))
		}},
		{queries.SearchUsersQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.Users.HandleSearch(ctx, q.(queries.SearchUsersQuery))
		}},
		{queries.GetEventQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.Events.HandleGet(ctx, q.(queries.GetEventQuery))
		}},
		{queries.SearchEventsQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.Events.HandleSearch(ctx, q.(queries.SearchEventsQuery))
		}},
		{queries.ListResourcesQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.Resources.Handle(ctx, q.(queries.ListResourcesQuery))
		}},
		{queries.GetImageURLQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.ImageURL.Handle(ctx, q.(queries.GetImageURLQuery))
		}},
		{queries.GetUsageStatsQuery{}, func(ctx context.Context, q bus.Query) (interface{}, error) {
			return s.UsageStats.Handle(ctx, q.(queries.GetUsageStatsQuery))
		}},
	}
	for _, r := range routes {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}
