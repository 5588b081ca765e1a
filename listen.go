// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/rs/zerolog/log"

	"codeberg.org/antigravity/frontend/config"
)

var (
	errChmodSocket = errors.New("failed to change unix socket permissions")
	errChownSocket = errors.New("failed to change unix socket ownership")
)

// listen opens the configured unix socket, or the TCP address when none is
// set.
func listen(ctx context.Context) (net.Listener, error) {
	basic := config.Global.Basic

	var lc net.ListenConfig

	if basic.UnixSocket != "" {
		listener, err := lc.Listen(ctx, "unix", basic.UnixSocket)
		if err != nil {
			return nil, fmt.Errorf("failed to listen on unix socket %s: %w", basic.UnixSocket, err)
		}

		if err := prepareSocket(basic.UnixSocket, basic.UnixSocketUser, basic.UnixSocketGroup, basic.UnixSocketPermissions); err != nil {
			_ = listener.Close()

			return nil, err
		}

		log.Info().Str("address", basic.UnixSocket).Msg("Listening on unix socket")

		return listener, nil
	}

	listener, err := lc.Listen(ctx, "tcp", net.JoinHostPort(basic.Host, basic.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", net.JoinHostPort(basic.Host, basic.Port), err)
	}

	addr := listener.Addr().(*net.TCPAddr)

	log.Info().
		Str("address", addr.String()).
		Str("url", fmt.Sprintf("http://localhost:%d/", addr.Port)).
		Msg("Listening on address")

	return listener, nil
}

// prepareSocket applies the configured owner, group and mode to the socket
// file. An empty owner or group is left unchanged.
func prepareSocket(path, owner, group string, mode os.FileMode) error {
	uid, err := lookupID(owner, func(name string) (string, error) {
		u, err := user.Lookup(name)
		if err != nil {
			return "", err
		}

		return u.Uid, nil
	})
	if err != nil {
		return fmt.Errorf("%w: user %q: %w", errChownSocket, owner, err)
	}

	gid, err := lookupID(group, func(name string) (string, error) {
		g, err := user.LookupGroup(name)
		if err != nil {
			return "", err
		}

		return g.Gid, nil
	})
	if err != nil {
		return fmt.Errorf("%w: group %q: %w", errChownSocket, group, err)
	}

	if uid != -1 || gid != -1 {
		if err := os.Chown(path, uid, gid); err != nil {
			return fmt.Errorf("%w: %w", errChownSocket, err)
		}
	}

	if err := os.Chmod(path, mode); err != nil {
		return fmt.Errorf("%w: %w", errChmodSocket, err)
	}

	return nil
}

// lookupID resolves a numeric ID or a name to an ID. An empty value gives
// -1, which os.Chown reads as "keep".
func lookupID(value string, byName func(string) (string, error)) (int, error) {
	if value == "" {
		return -1, nil
	}

	if id, err := strconv.Atoi(value); err == nil {
		return id, nil
	}

	raw, err := byName(value)
	if err != nil {
		return -1, err
	}

	return strconv.Atoi(raw)
}
