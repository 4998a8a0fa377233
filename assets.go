package dynform

import (
	"io/fs"

	"github.com/goliatone/go-dynform/pkg/renderers/vanilla"
)

// EmbeddedTemplates exposes the built-in vanilla renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// RuntimeAssetsFS exposes the stylesheet and progressive-enhancement script
// referenced by the vanilla templates.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(dynform.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
