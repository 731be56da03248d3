// Package autoload registers all built-in channel factories through
// their init functions. Import it for side effects only.
package autoload

import (
	_ "modelhub/pkg/channels/telegram"
	_ "modelhub/pkg/channels/web"
)
