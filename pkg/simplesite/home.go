package simplesite

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// LoadHome fetches content and featured projects concurrently and resolves
// the home page. Each fetch is best-effort, so LoadHome never fails.
func (s *service) LoadHome(ctx context.Context) *HomePage {
	var (
		content  map[string]string
		projects []*Project
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		content = s.GetAllContent(gctx)
		return nil
	})
	g.Go(func() error {
		list, err := s.repository.ListProjects(gctx, ProjectQuery{Featured: boolPtr(true), PublishedOnly: true})
		if err != nil {
			slog.Error("Failed to load featured projects", "err", err)
			return nil
		}
		projects = list
		return nil
	})
	_ = g.Wait()

	return ResolveHome(content, projects)
}

func boolPtr(b bool) *bool {
	return &b
}
