package moderation

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/eientei/eagle/internal/directory"
)

// Resolve finds guild member by numeric id, falling back to case-insensitive name match
func Resolve(ctx context.Context, dir directory.Directory, identifier string) (*directory.Member, error) {
	if id, err := snowflake.ParseString(identifier); err == nil {
		member, err := dir.Member(ctx, id.String())

		switch {
		case err == nil:
			return member, nil
		case !errors.Is(err, directory.ErrNotFound):
			return nil, err
		}
	}

	members, err := dir.Members(ctx)
	if err != nil {
		return nil, err
	}

	for _, m := range members {
		if matches(m, identifier) {
			return m, nil
		}
	}

	return nil, ErrUserNotFound
}

func matches(m *directory.Member, identifier string) bool {
	for _, name := range []string{m.Username, m.DisplayName, m.Tag()} {
		if name != "" && strings.EqualFold(name, identifier) {
			return true
		}
	}

	return false
}

// lookupID finds member by numeric id only
func lookupID(ctx context.Context, dir directory.Directory, userID string) (*directory.Member, error) {
	id, err := snowflake.ParseString(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	member, err := dir.Member(ctx, id.String())
	if errors.Is(err, directory.ErrNotFound) {
		return nil, ErrUserNotFound
	}

	return member, err
}
