package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/inovacc/ghsync/internal/gh"
	"golang.org/x/sync/errgroup"
)

// listConcurrency bounds how many owners are listed at the same time.
const listConcurrency = 4

// Source enumerates repositories for the authenticated user. The default
// implementation shells out to the gh CLI; an API-backed one exists for
// environments where spawning gh per listing is too slow.
type Source interface {
	Username(ctx context.Context) (string, error)
	Organizations(ctx context.Context) ([]string, error)
	ListRepos(ctx context.Context, owner string) ([]gh.Repository, error)
}

// Scope restricts which owners are scanned for repositories.
type Scope struct {
	Orgs         []string // explicit org selection, case-insensitive
	OrgsOnly     bool
	PersonalOnly bool
}

// Filters narrows the discovered repository set.
type Filters struct {
	NoForks      bool
	ForksOnly    bool
	NoArchived   bool
	ArchivedOnly bool
	Visibility   string   // public, private or internal; empty means all
	Match        []string // glob patterns against the repo name
	Exclude      []string
}

type owner struct {
	login string
	kind  gh.OwnerKind
}

// ResolveOwners builds the list of owners to scan from the scope flags.
// Explicitly selected orgs must be ones the user belongs to.
func ResolveOwners(username string, orgs []string, scope Scope) ([]string, error) {
	resolved, err := resolveOwners(username, orgs, scope)
	if err != nil {
		return nil, err
	}

	logins := make([]string, len(resolved))
	for i, o := range resolved {
		logins[i] = o.login
	}

	return logins, nil
}

func resolveOwners(username string, orgs []string, scope Scope) ([]owner, error) {
	switch {
	case len(scope.Orgs) > 0:
		var invalid []string

		for _, want := range scope.Orgs {
			if !slices.ContainsFunc(orgs, func(o string) bool {
				return strings.EqualFold(o, want)
			}) {
				invalid = append(invalid, want)
			}
		}

		if len(invalid) > 0 {
			return nil, fmt.Errorf("not a member of org(s): %s\nYour orgs: %s",
				strings.Join(invalid, ", "), strings.Join(orgs, ", "))
		}

		var selected []owner

		for _, o := range orgs {
			if slices.ContainsFunc(scope.Orgs, func(want string) bool {
				return strings.EqualFold(o, want)
			}) {
				selected = append(selected, owner{login: o, kind: gh.OwnerOrganization})
			}
		}

		return selected, nil

	case scope.OrgsOnly:
		owners := make([]owner, len(orgs))
		for i, o := range orgs {
			owners[i] = owner{login: o, kind: gh.OwnerOrganization}
		}

		return owners, nil

	case scope.PersonalOnly:
		return []owner{{login: username, kind: gh.OwnerPersonal}}, nil

	default:
		owners := []owner{{login: username, kind: gh.OwnerPersonal}}
		for _, o := range orgs {
			owners = append(owners, owner{login: o, kind: gh.OwnerOrganization})
		}

		return owners, nil
	}
}

// Discover enumerates all repositories visible through the given source,
// deduplicated by canonical identifier and narrowed by the filters.
// Owners are listed concurrently; the first listing failure aborts.
func Discover(ctx context.Context, src Source, username string, orgs []string, scope Scope, filters Filters, logger *slog.Logger) ([]gh.Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}

	owners, err := resolveOwners(username, orgs, scope)
	if err != nil {
		return nil, err
	}

	logger.Info("scanning owners", slog.Int("count", len(owners)))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)

	listings := make([][]gh.Repository, len(owners))

	for i, o := range owners {
		g.Go(func() error {
			repos, err := src.ListRepos(gctx, o.login)
			if err != nil {
				return err
			}

			for j := range repos {
				repos[j].OwnerKind = o.kind
			}

			logger.Debug("listed owner",
				slog.String("owner", o.login),
				slog.Int("repos", len(repos)),
			)

			listings[i] = repos

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Deduplicate across owners in deterministic owner order. A repo can
	// surface twice when the personal listing includes org repos the user
	// collaborates on.
	seen := make(map[string]struct{})

	var repos []gh.Repository

	for _, listing := range listings {
		for _, repo := range listing {
			key := strings.ToLower(repo.NameWithOwner)
			if _, ok := seen[key]; ok {
				continue
			}

			seen[key] = struct{}{}

			repos = append(repos, repo)
		}
	}

	before := len(repos)
	repos = applyFilters(repos, filters, logger)

	logger.Info("discovery complete",
		slog.Int("discovered", before),
		slog.Int("after_filters", len(repos)),
	)

	slices.SortFunc(repos, func(a, b gh.Repository) int {
		return strings.Compare(strings.ToLower(a.NameWithOwner), strings.ToLower(b.NameWithOwner))
	})

	return repos, nil
}

// applyFilters narrows the repository set per the user-specified filters.
func applyFilters(repos []gh.Repository, f Filters, logger *slog.Logger) []gh.Repository {
	keep := func(pred func(gh.Repository) bool, reason string) {
		before := len(repos)
		repos = slices.DeleteFunc(repos, func(r gh.Repository) bool { return !pred(r) })

		if excluded := before - len(repos); excluded > 0 {
			logger.Debug("filtered repositories",
				slog.String("filter", reason),
				slog.Int("excluded", excluded),
			)
		}
	}

	if f.NoForks {
		keep(func(r gh.Repository) bool { return !r.IsFork }, "no-forks")
	}

	if f.ForksOnly {
		keep(func(r gh.Repository) bool { return r.IsFork }, "forks-only")
	}

	if f.NoArchived {
		keep(func(r gh.Repository) bool { return !r.IsArchived }, "no-archived")
	}

	if f.ArchivedOnly {
		keep(func(r gh.Repository) bool { return r.IsArchived }, "archived-only")
	}

	if f.Visibility != "" {
		keep(func(r gh.Repository) bool {
			return strings.EqualFold(r.Visibility, f.Visibility)
		}, "visibility")
	}

	if len(f.Match) > 0 {
		keep(func(r gh.Repository) bool {
			return slices.ContainsFunc(f.Match, func(p string) bool {
				return globMatch(p, r.Name())
			})
		}, "match")
	}

	if len(f.Exclude) > 0 {
		keep(func(r gh.Repository) bool {
			return !slices.ContainsFunc(f.Exclude, func(p string) bool {
				return globMatch(p, r.Name())
			})
		}, "exclude")
	}

	return repos
}
