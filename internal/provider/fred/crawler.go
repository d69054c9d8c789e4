package fred

import (
	"context"
	"log/slog"
	"strconv"
)

// crawl walks the category tree rooted at rootID and returns every series
// found anywhere in it as {series_id: title}. The traversal is an explicit
// worklist with a visited set, so a cycle in the provider's tree terminates
// instead of recursing forever. A failed call at a node contributes nothing
// further from that node; the crawl itself never fails.
func (s *Source) crawl(ctx context.Context, rootID int) map[string]string {
	found := make(map[string]string)
	visited := make(map[int]bool)
	stack := []int{rootID}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return found
		}

		categoryID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[categoryID] {
			s.logger.Debug("category already visited, skipping",
				slog.Int("category_id", categoryID))
			continue
		}
		visited[categoryID] = true

		s.collectSeries(ctx, categoryID, found)
		if err := s.seriesPacer.Pace(ctx); err != nil {
			return found
		}

		stack = append(stack, s.childCategories(ctx, categoryID)...)
		if err := s.childrenPacer.Pace(ctx); err != nil {
			return found
		}
	}

	return found
}

// collectSeries records the series directly attached to a category.
// Duplicate IDs across branches are expected; last write wins.
func (s *Source) collectSeries(ctx context.Context, categoryID int, found map[string]string) {
	var payload struct {
		Seriess []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"seriess"`
	}

	params := s.categoryParams(categoryID)
	params.Set("limit", strconv.Itoa(seriesPageLimit))
	if err := s.client.GetJSON(ctx, s.baseURL+"/category/series", params, &payload); err != nil {
		s.logger.Warn("could not fetch series for category",
			slog.Int("category_id", categoryID),
			slog.String("error", err.Error()))
		return
	}

	for _, series := range payload.Seriess {
		if series.ID == "" {
			continue
		}
		title := series.Title
		if title == "" {
			title = series.ID
		}
		found[series.ID] = title
	}
}

// childCategories returns the IDs of a category's children, or nothing if
// the call fails.
func (s *Source) childCategories(ctx context.Context, categoryID int) []int {
	var payload struct {
		Categories []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	}

	if err := s.client.GetJSON(ctx, s.baseURL+"/category/children", s.categoryParams(categoryID), &payload); err != nil {
		s.logger.Warn("could not fetch child categories",
			slog.Int("category_id", categoryID),
			slog.String("error", err.Error()))
		return nil
	}

	children := make([]int, 0, len(payload.Categories))
	for _, child := range payload.Categories {
		s.logger.Debug("descending into subcategory",
			slog.Int("category_id", child.ID),
			slog.String("name", child.Name))
		children = append(children, child.ID)
	}
	return children
}
