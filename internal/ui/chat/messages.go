// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/LAGkitty/ollama-GUI/internal/config"
)

// modelsMsg delivers the registry listing requested at startup.
type modelsMsg struct {
	models []string
	err    error
}

// ConfigReloadedMsg is sent by the config watcher after the file changed.
// Err is set when the new file could not be loaded; the running settings
// are kept in that case.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// clearNoticeMsg expires a transient status notice.
type clearNoticeMsg struct {
	id int
}

const noticeTTL = 4 * time.Second
