package assemble

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/alnah/go-jupyterlite/internal/resolver"
)

// pipliteIndex is the packages/all.json format read by the pyodide kernel's
// piplite installer: project name -> releases.
type pipliteIndex map[string]pipliteProject

type pipliteProject struct {
	Name     string                   `json:"name"`
	Releases map[string][]pipliteFile `json:"releases"`
}

type pipliteFile struct {
	Digests        map[string]string `json:"digests"`
	Filename       string            `json:"filename"`
	PackageType    string            `json:"packagetype"`
	PythonVersion  string            `json:"python_version"`
	RequiresPython *string           `json:"requires_python"`
	Size           int               `json:"size"`
	URL            string            `json:"url"`
	Yanked         bool              `json:"yanked"`
}

// buildPiplite lists each unique package once. URLs are relative to all.json.
func buildPiplite(pkgs []*resolver.Package) ([]byte, error) {
	index := pipliteIndex{}
	for _, p := range pkgs {
		key := p.Key()
		proj, ok := index[key]
		if !ok {
			proj = pipliteProject{Name: key, Releases: map[string][]pipliteFile{}}
		}
		sum := sha256.Sum256(p.Data)
		proj.Releases[p.Version] = append(proj.Releases[p.Version], pipliteFile{
			Digests:       map[string]string{"sha256": hex.EncodeToString(sum[:])},
			Filename:      p.Filename,
			PackageType:   "bdist_wheel",
			PythonVersion: "py3",
			Size:          len(p.Data),
			URL:           "./" + p.Filename,
		})
		index[key] = proj
	}
	return marshalJSON(index)
}
