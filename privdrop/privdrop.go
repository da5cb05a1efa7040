// Package privdrop drops the process from root to an unprivileged account
// before fuzzing begins, unless explicitly told to retain privileges.
package privdrop

import (
	"os/user"
	"strconv"
	"syscall"

	fuzzerr "sysfuzz/errors"
	"sysfuzz/linux"
)

const defaultUnprivilegedUser = "nobody"

// setUid sets the real, effective, and saved user ID.
func setUid(uid int) error {
	return syscall.Setuid(uid)
}

// setGid sets the real, effective, and saved group ID.
func setGid(gid int) error {
	return syscall.Setgid(gid)
}

// setGroups sets the calling process's supplementary group IDs.
func setGroups(gids []int) error {
	return syscall.Setgroups(gids)
}

// Drop switches the process to the named unprivileged account, setting
// supplementary groups before the primary group and the primary group
// before the user ID, matching the only safe order (once the UID is
// dropped, the process can no longer change its groups or GID). Retain
// skips this entirely.
func Drop(retain bool, username string) error {
	if retain {
		return nil
	}
	if username == "" {
		username = defaultUnprivilegedUser
	}

	u, err := user.Lookup(username)
	if err != nil {
		return fuzzerr.WrapWithDetail(err, fuzzerr.ErrUnknownUser.Kind, "privdrop.Drop", fuzzerr.ErrUnknownUser.Detail)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return fuzzerr.WrapWithDetail(err, fuzzerr.ErrInvalidConfig, "privdrop.Drop", "malformed uid for "+username)
	}
	gid, err := strconv.Atoi(u.Gid)
	if err != nil {
		return fuzzerr.WrapWithDetail(err, fuzzerr.ErrInvalidConfig, "privdrop.Drop", "malformed gid for "+username)
	}

	groupIDs, err := u.GroupIds()
	if err != nil {
		return fuzzerr.Wrap(err, fuzzerr.ErrInvalidConfig, "privdrop.Drop")
	}
	gids := make([]int, 0, len(groupIDs))
	for _, g := range groupIDs {
		n, err := strconv.Atoi(g)
		if err != nil {
			continue
		}
		gids = append(gids, n)
	}
	if err := setGroups(gids); err != nil {
		return fuzzerr.WrapWithDetail(err, fuzzerr.ErrPrivDrop.Kind, "privdrop.Drop", fuzzerr.ErrPrivDrop.Detail)
	}

	if err := setGid(gid); err != nil {
		return fuzzerr.WrapWithDetail(err, fuzzerr.ErrPrivDrop.Kind, "privdrop.Drop", fuzzerr.ErrPrivDrop.Detail)
	}
	if err := setUid(uid); err != nil {
		return fuzzerr.WrapWithDetail(err, fuzzerr.ErrPrivDrop.Kind, "privdrop.Drop", fuzzerr.ErrPrivDrop.Detail)
	}

	if err := linux.DropBoundingSet(); err != nil {
		return fuzzerr.WrapWithDetail(err, fuzzerr.ErrPrivDrop.Kind, "privdrop.Drop", "failed to drop capability bounding set")
	}

	return nil
}
