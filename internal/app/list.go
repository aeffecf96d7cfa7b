package app

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"strings"

	geektime_client "github.com/oshokin/geektime-grabber/internal/client/geektime"
	"github.com/oshokin/geektime-grabber/internal/config"
	"github.com/oshokin/geektime-grabber/internal/logger"
	"github.com/oshokin/geektime-grabber/internal/utils"
)

// ExecuteListCommand executes the list command.
// It fetches the course list of the account and prints it grouped by
// product type, optionally followed by the known daily lesson collections.
func ExecuteListCommand(ctx context.Context, cfg *config.Config, includeVideos bool) {
	gtClient, err := geektime_client.NewClient(ctx, cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize GeekTime client: %v", err)
	}

	groups, err := gtClient.GetCourseList(ctx)
	if err != nil {
		logger.Fatalf(ctx, "Failed to fetch course list: %v", err)
	}

	printCourseGroups(ctx, groups)

	if includeVideos {
		printVideoCollections(ctx, gtClient.GetVideoCollectionList())
	}
}

// printCourseGroups prints the course list grouped by product type.
// Groups are printed in key order so repeated runs give identical output.
func printCourseGroups(ctx context.Context, groups map[string]*geektime_client.CourseGroup) {
	if len(groups) == 0 {
		logger.Info(ctx, "No courses are visible to this account.")
		return
	}

	for _, key := range slices.Sorted(maps.Keys(groups)) {
		group := groups[key]
		if group == nil || len(group.List) == 0 {
			continue
		}

		groupName := key
		if group.Nav != nil && group.Nav.Name != "" {
			groupName = group.Nav.Name
		}

		logger.Infof(ctx, "%s:", groupName)

		for _, course := range group.List {
			marker := ""
			if course.HadSub {
				marker = " [purchased]"
			}

			logger.Infof(ctx, "  %d - %s - %s%s", course.ID, course.Title, course.AuthorName, marker)
		}

		logger.Info(ctx, "")
	}
}

// printVideoCollections prints the identifiers of the known daily lesson collections.
func printVideoCollections(ctx context.Context, refs []*geektime_client.VideoCollectionRef) {
	ids := utils.Map(refs, func(ref *geektime_client.VideoCollectionRef) string {
		return strconv.FormatInt(ref.CollectionID, 10)
	})

	logger.Infof(ctx, "Known daily lesson collections (%d):", len(ids))
	logger.Info(ctx, strings.Join(ids, ", "))
}
