package fatimg

import (
	"github.com/spf13/afero"
)

// NewIOFS exposes the volume as io/fs.FS through afero.
// afero.IOFS rejects paths which are not fs.ValidPath, everything else is served by Fs.
// Like in io/fs a backslash is part of a name and never separates components.
func NewIOFS(v *Volume) afero.IOFS {
	return afero.NewIOFS(NewFs(v))
}
