package runtime

import "encoding/json"

// NpmInfo is the subset of `npm info --json` output used to find the latest version.
type NpmInfo struct {
	DistTags NpmInfoDistTags `json:"dist-tags"`
	Versions []string        `json:"versions"`
}

// NpmInfoDistTags holds the distribution tags of a package.
type NpmInfoDistTags struct {
	Latest string `json:"latest,omitempty"`
}

// ParseNpmInfo decodes `npm info --json` output.
func ParseNpmInfo(data []byte) (*NpmInfo, error) {
	var info NpmInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Latest returns the "latest" dist-tag, falling back to the last listed
// version. ok is false when neither is present.
func (i *NpmInfo) Latest() (version string, ok bool) {
	if i.DistTags.Latest != "" {
		return i.DistTags.Latest, true
	}
	if n := len(i.Versions); n > 0 {
		return i.Versions[n-1], true
	}
	return "", false
}
