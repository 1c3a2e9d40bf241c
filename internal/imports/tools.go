package imports

import (
	// Tools register themselves with the registry via init()
	_ "github.com/sammcj/mcp-pdf-tools/internal/tools/pdf"
	_ "github.com/sammcj/mcp-pdf-tools/internal/tools/toolhelp"
)
