// Copyright 2026 The Kestrel Authors
// SPDX-License-Identifier: Apache-2.0

// Package emuconfig holds the configuration of the host emulator.
//
// [FromArgs] parses the command line with pflag and loads the optional
// config file. The file is JSON with comments and trailing commas
// allowed, or YAML when its name ends in .yaml or .yml. The only key
// is socket_path_base, the prefix of the runtime directory that holds
// the kernel's syscall sockets:
//
//	{
//	  // ${HOME} and ${VAR:-default} are expanded
//	  "socket_path_base": "/tmp/he_",
//	}
//
// The configuration is set once per process. A [Holder] is created by
// main and passed to whatever needs it; a second Set panics.
package emuconfig
